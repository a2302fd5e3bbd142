package memory

import (
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	project        *projectRepository
	controlAccount *controlAccountRepository
	evmRecord      *evmRecordRepository
	risk           *riskRepository
	riskResponse   *riskResponseRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	riskRepo := newRiskRepository()

	return &Memory{
		project:        newProjectRepository(),
		controlAccount: newControlAccountRepository(),
		evmRecord:      newEVMRecordRepository(),
		risk:           riskRepo,
		riskResponse:   newRiskResponseRepository(riskRepo),
	}
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) ControlAccount() interfaces.ControlAccountRepository {
	return m.controlAccount
}

func (m *Memory) EVMRecord() interfaces.EVMRecordRepository {
	return m.evmRecord
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) RiskResponse() interfaces.RiskResponseRepository {
	return m.riskResponse
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error {
	return nil
}
