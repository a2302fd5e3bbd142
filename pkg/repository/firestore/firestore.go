package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
)

type Firestore struct {
	client         *firestore.Client
	project        *projectRepository
	controlAccount *controlAccountRepository
	evmRecord      *evmRecordRepository
	risk           *riskRepository
	riskResponse   *riskResponseRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends prefix and an underscore to every collection
// name, so several environments can share one database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.project.collectionPrefix = prefix
		f.controlAccount.collectionPrefix = prefix
		f.evmRecord.collectionPrefix = prefix
		f.risk.collectionPrefix = prefix
		f.riskResponse.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:         client,
		project:        newProjectRepository(client),
		controlAccount: newControlAccountRepository(client),
		evmRecord:      newEVMRecordRepository(client),
		risk:           newRiskRepository(client),
		riskResponse:   newRiskResponseRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Project() interfaces.ProjectRepository {
	return f.project
}

func (f *Firestore) ControlAccount() interfaces.ControlAccountRepository {
	return f.controlAccount
}

func (f *Firestore) EVMRecord() interfaces.EVMRecordRepository {
	return f.evmRecord
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) RiskResponse() interfaces.RiskResponseRepository {
	return f.riskResponse
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// Collection names before the optional prefix
const (
	CollectionProjects        = "projects"
	CollectionControlAccounts = "control_accounts"
	CollectionEVMRecords      = "evm_records"
	CollectionRisks           = "risks"
	CollectionRiskResponses   = "risk_responses"
	CollectionCounters        = "counters"
)

// CollectionName returns name with the collection prefix applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
