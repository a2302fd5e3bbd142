package usecase

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/exposure"
	"github.com/secmon-lab/argus/pkg/service/report"
)

type ReportUseCase struct {
	repo     interfaces.Repository
	evm      *EVMUseCase
	risk     *RiskUseCase
	renderer *report.Service
}

func NewReportUseCase(repo interfaces.Repository, evmUC *EVMUseCase, riskUC *RiskUseCase) *ReportUseCase {
	return &ReportUseCase{
		repo:     repo,
		evm:      evmUC,
		risk:     riskUC,
		renderer: report.New(),
	}
}

// ReportInput selects the data date of the EVM section. A nil Simulation
// leaves the Monte Carlo section out.
type ReportInput struct {
	At         time.Time
	Simulation *SimulateInput
}

// BuildReport assembles the EVM roll-up and risk register of a project
func (uc *ReportUseCase) BuildReport(ctx context.Context, projectID types.ProjectID, in ReportInput) (*model.ProjectReport, error) {
	project, err := uc.repo.Project().Get(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}

	projectEVM, err := uc.evm.ProjectEVM(ctx, projectID, in.At)
	if err != nil {
		return nil, err
	}

	risks, err := uc.risk.ListRisks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := &model.ProjectReport{
		Project:     project,
		GeneratedAt: time.Now().UTC(),
		EVM:         projectEVM,
		Risks:       risks,
		Exposure:    exposure.Deterministic(risks),
		Matrix:      exposure.Matrix(risks, true),
	}

	if in.Simulation != nil {
		opts := in.Simulation.Options(uc.risk.config.Simulation)
		sim, err := exposure.Simulate(ctx, risks, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to simulate exposure", goerr.V("project_id", projectID))
		}
		result.Simulation = sim
	}

	return result, nil
}

// Renderer returns the renderer of a format, for callers that need its
// content type before writing
func (uc *ReportUseCase) Renderer(format types.ReportFormat) (report.Renderer, error) {
	return uc.renderer.Renderer(format)
}

// Export builds the report and writes it to w
func (uc *ReportUseCase) Export(ctx context.Context, projectID types.ProjectID, format types.ReportFormat, in ReportInput, w io.Writer) error {
	if _, err := uc.renderer.Renderer(format); err != nil {
		return err
	}

	built, err := uc.BuildReport(ctx, projectID, in)
	if err != nil {
		return err
	}

	return uc.renderer.Render(w, format, built)
}
