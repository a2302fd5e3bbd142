package usecase

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/exposure"
	"github.com/secmon-lab/argus/pkg/service/slack"
	"github.com/shopspring/decimal"
	slackapi "github.com/slack-go/slack"
)

type RiskUseCase struct {
	repo     interfaces.Repository
	config   *config.Config
	notifier *notifier
}

func NewRiskUseCase(repo interfaces.Repository, cfg *config.Config, n *notifier) *RiskUseCase {
	return &RiskUseCase{
		repo:     repo,
		config:   cfg,
		notifier: n,
	}
}

// CreateRiskInput holds the fields of a newly identified risk. A risk created
// with an inherent assessment starts as ASSESSED.
type CreateRiskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Owner       string            `json:"owner"`
	CostImpact  decimal.Decimal   `json:"cost_impact"`
	CostRange   *model.CostRange  `json:"cost_range,omitempty"`
	Inherent    *model.Assessment `json:"inherent,omitempty"`
}

func validateCost(cost decimal.Decimal, costRange *model.CostRange) error {
	if cost.IsNegative() {
		return goerr.Wrap(types.ErrInvalidArgument, "cost impact must not be negative",
			goerr.V(types.FieldKey, "cost_impact"), goerr.V(types.ValueKey, cost.String()))
	}
	if costRange == nil {
		return nil
	}
	if costRange.Optimistic.IsNegative() || costRange.Optimistic.GreaterThan(cost) || cost.GreaterThan(costRange.Pessimistic) {
		return goerr.Wrap(types.ErrInvalidArgument, "cost range must satisfy 0 <= optimistic <= cost impact <= pessimistic",
			goerr.V(types.FieldKey, "cost_range"),
			goerr.V("optimistic", costRange.Optimistic.String()),
			goerr.V("cost_impact", cost.String()),
			goerr.V("pessimistic", costRange.Pessimistic.String()))
	}
	return nil
}

func (uc *RiskUseCase) CreateRisk(ctx context.Context, projectID types.ProjectID, in CreateRiskInput) (*model.Risk, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "risk title is required", goerr.V(types.FieldKey, "title"))
	}
	if err := validateCost(in.CostImpact, in.CostRange); err != nil {
		return nil, err
	}
	status := types.RiskStatusIdentified
	if in.Inherent != nil {
		if err := in.Inherent.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid inherent assessment", goerr.V(types.FieldKey, "inherent"))
		}
		status = types.RiskStatusAssessed
	}

	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}

	created, err := uc.repo.Risk().Create(ctx, &model.Risk{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Owner:       in.Owner,
		Status:      status,
		Inherent:    in.Inherent,
		CostImpact:  in.CostImpact,
		CostRange:   in.CostRange,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("project_id", projectID))
	}
	return created, nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", id))
	}
	return risk, nil
}

func (uc *RiskUseCase) ListRisks(ctx context.Context, projectID types.ProjectID) ([]*model.Risk, error) {
	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}
	risks, err := uc.repo.Risk().List(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V("project_id", projectID))
	}
	return risks, nil
}

func (uc *RiskUseCase) ListResponses(ctx context.Context, riskID int64) ([]*model.RiskResponse, error) {
	responses, err := uc.repo.RiskResponse().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses", goerr.V("risk_id", riskID))
	}
	return responses, nil
}

func (uc *RiskUseCase) activeRisk(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", id))
	}
	if !risk.IsActive() {
		return nil, goerr.Wrap(types.ErrInvalidTransition, "risk is closed", goerr.V("risk_id", id))
	}
	return risk, nil
}

// AssessRisk sets the inherent assessment. An IDENTIFIED risk advances to
// ASSESSED; later states keep their status.
func (uc *RiskUseCase) AssessRisk(ctx context.Context, id int64, assessment model.Assessment) (*model.Risk, error) {
	if err := assessment.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid assessment", goerr.V("risk_id", id))
	}
	risk, err := uc.activeRisk(ctx, id)
	if err != nil {
		return nil, err
	}

	from := risk.Status.Normalize()
	risk.Inherent = &assessment
	if from == types.RiskStatusIdentified {
		risk.Status = types.RiskStatusAssessed
	}

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("risk_id", id))
	}
	if updated.Status != from {
		uc.notifyTransition(ctx, updated, from)
	}
	return updated, nil
}

// AddResponseInput holds the fields of a planned response
type AddResponseInput struct {
	Strategy            types.ResponseStrategy `json:"strategy"`
	Description         string                 `json:"description"`
	ExpectedProbability types.Score            `json:"expected_probability"`
	ExpectedImpact      types.Score            `json:"expected_impact"`
	Cost                decimal.Decimal        `json:"cost"`
	Owner               string                 `json:"owner"`
	DueDate             time.Time              `json:"due_date,omitzero"`
}

func (in AddResponseInput) validate() error {
	if !in.Strategy.IsValid() {
		return goerr.Wrap(types.ErrInvalidArgument, "invalid response strategy",
			goerr.V(types.FieldKey, "strategy"), goerr.V(types.ValueKey, in.Strategy))
	}
	expected := model.Assessment{Probability: in.ExpectedProbability, Impact: in.ExpectedImpact}
	if err := expected.Validate(); err != nil {
		return goerr.Wrap(err, "invalid expected assessment", goerr.V(types.FieldKey, "expected"))
	}
	if in.Cost.IsNegative() {
		return goerr.Wrap(types.ErrInvalidArgument, "response cost must not be negative",
			goerr.V(types.FieldKey, "cost"), goerr.V(types.ValueKey, in.Cost.String()))
	}
	return nil
}

// AddResponse attaches a planned response to an active risk
func (uc *RiskUseCase) AddResponse(ctx context.Context, riskID int64, in AddResponseInput) (*model.RiskResponse, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := uc.activeRisk(ctx, riskID); err != nil {
		return nil, err
	}

	created, err := uc.repo.RiskResponse().Create(ctx, &model.RiskResponse{
		ID:                  model.NewResponseID(),
		RiskID:              riskID,
		Strategy:            in.Strategy,
		Description:         in.Description,
		ExpectedProbability: in.ExpectedProbability,
		ExpectedImpact:      in.ExpectedImpact,
		Cost:                in.Cost,
		Owner:               in.Owner,
		DueDate:             in.DueDate,
		Status:              types.ResponseStatusPlanned,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create response", goerr.V("risk_id", riskID))
	}
	return created, nil
}

// ImplementResponse marks a planned response implemented and replaces the
// risk's residual assessment with the response's expected scores. Both are
// stored in one repository write.
func (uc *RiskUseCase) ImplementResponse(ctx context.Context, riskID int64, responseID types.ResponseID) (*model.RiskResponse, *model.Risk, error) {
	risk, err := uc.activeRisk(ctx, riskID)
	if err != nil {
		return nil, nil, err
	}

	resp, err := uc.repo.RiskResponse().Get(ctx, responseID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to get response", goerr.V("response_id", responseID))
	}
	if resp.RiskID != riskID {
		return nil, nil, goerr.Wrap(types.ErrNotFound, "response does not belong to risk",
			goerr.V("risk_id", riskID), goerr.V("response_id", responseID))
	}
	if resp.IsImplemented() {
		return nil, nil, goerr.Wrap(types.ErrInvalidTransition, "response is already implemented",
			goerr.V("response_id", responseID))
	}

	now := time.Now().UTC()
	resp.Status = types.ResponseStatusImplemented
	resp.ImplementedAt = &now
	residual := resp.Expected()
	risk.Residual = &residual

	updatedResp, updatedRisk, err := uc.repo.RiskResponse().Implement(ctx, resp, risk)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to implement response",
			goerr.V("risk_id", riskID), goerr.V("response_id", responseID))
	}

	return updatedResp, updatedRisk, nil
}

// TransitionRisk moves a risk to the next status. Forward moves advance one
// step and need the fields of the target status. CLOSED is reachable from any
// active status and needs a reason.
func (uc *RiskUseCase) TransitionRisk(ctx context.Context, id int64, to types.RiskStatus, reason string) (*model.Risk, error) {
	if !to.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "invalid risk status",
			goerr.V(types.FieldKey, "status"), goerr.V(types.ValueKey, to))
	}

	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", id))
	}
	from := risk.Status.Normalize()
	if !from.CanTransitionTo(to) {
		return nil, goerr.Wrap(types.ErrInvalidTransition, "risk status transition is not allowed",
			goerr.V("risk_id", id), goerr.V("from", from), goerr.V("to", to))
	}

	if err := uc.checkPreconditions(ctx, risk, to, reason); err != nil {
		return nil, err
	}

	risk.Status = to
	if to == types.RiskStatusClosed {
		risk.ClosureReason = strings.TrimSpace(reason)
	}

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("risk_id", id))
	}

	uc.notifyTransition(ctx, updated, from)
	return updated, nil
}

func (uc *RiskUseCase) checkPreconditions(ctx context.Context, risk *model.Risk, to types.RiskStatus, reason string) error {
	switch to {
	case types.RiskStatusAssessed:
		if risk.Inherent == nil {
			return goerr.Wrap(types.ErrInvalidTransition, "risk needs an inherent assessment",
				goerr.V("risk_id", risk.ID), goerr.V(types.StatusKey, to))
		}

	case types.RiskStatusResponsePlanned, types.RiskStatusMonitored:
		responses, err := uc.repo.RiskResponse().ListByRisk(ctx, risk.ID)
		if err != nil {
			return goerr.Wrap(err, "failed to list responses", goerr.V("risk_id", risk.ID))
		}
		if len(responses) == 0 {
			return goerr.Wrap(types.ErrInvalidTransition, "risk needs at least one response",
				goerr.V("risk_id", risk.ID), goerr.V(types.StatusKey, to))
		}
		if to == types.RiskStatusMonitored && !anyImplemented(responses) {
			return goerr.Wrap(types.ErrInvalidTransition, "risk needs an implemented response",
				goerr.V("risk_id", risk.ID), goerr.V(types.StatusKey, to))
		}

	case types.RiskStatusClosed:
		if strings.TrimSpace(reason) == "" {
			return goerr.Wrap(types.ErrInvalidArgument, "closure reason is required",
				goerr.V("risk_id", risk.ID), goerr.V(types.FieldKey, "reason"))
		}
	}
	return nil
}

func anyImplemented(responses []*model.RiskResponse) bool {
	for _, r := range responses {
		if r.IsImplemented() {
			return true
		}
	}
	return false
}

func (uc *RiskUseCase) notifyTransition(ctx context.Context, risk *model.Risk, from types.RiskStatus) {
	snapshot := risk.Copy()
	uc.notifier.post(ctx, risk.ProjectID, func(p *model.Project) ([]slackapi.Block, string) {
		return slack.RiskTransitionMessage(p, snapshot, from)
	})
}

// Matrix places the project's active risks on the probability-impact grid
func (uc *RiskUseCase) Matrix(ctx context.Context, projectID types.ProjectID, residual bool) (*model.RiskMatrix, error) {
	risks, err := uc.ListRisks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return exposure.Matrix(risks, residual), nil
}

// Exposure returns the deterministic exposure of the project with its ranking
func (uc *RiskUseCase) Exposure(ctx context.Context, projectID types.ProjectID) (*model.Exposure, error) {
	risks, err := uc.ListRisks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return exposure.Deterministic(risks), nil
}

// SimulateInput overrides the configured simulation defaults. A nil Seed
// draws a random one, which is returned in the result.
type SimulateInput struct {
	Iterations  *int      `json:"iterations,omitempty"`
	Seed        *uint64   `json:"seed,omitempty"`
	Percentiles []float64 `json:"percentiles,omitempty"`
}

// Options resolves the input against the simulation defaults
func (in SimulateInput) Options(defaults config.SimulationConfig) exposure.Options {
	opts := exposure.Options{
		Iterations:    defaults.Iterations,
		MaxIterations: defaults.MaxIterations,
		Percentiles:   defaults.Percentiles,
	}
	if opts.Iterations == 0 {
		opts.Iterations = config.DefaultIterations
	}
	if in.Iterations != nil {
		opts.Iterations = *in.Iterations
	}
	if in.Seed != nil {
		opts.Seed = *in.Seed
	} else {
		opts.Seed = rand.Uint64()
	}
	if len(in.Percentiles) > 0 {
		opts.Percentiles = in.Percentiles
	}
	return opts
}

// Simulate runs the Monte Carlo estimate over the project's active risks
func (uc *RiskUseCase) Simulate(ctx context.Context, projectID types.ProjectID, in SimulateInput) (*model.SimulationResult, error) {
	opts := in.Options(uc.config.Simulation)
	if err := opts.WithDefaults().Validate(); err != nil {
		return nil, err
	}

	risks, err := uc.ListRisks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result, err := exposure.Simulate(ctx, risks, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to simulate exposure", goerr.V("project_id", projectID))
	}
	return result, nil
}

// CheckExposure simulates every project that has a Slack channel and posts an
// alert when the P90 exceeds the configured limit. It returns the number of
// alerts sent. A zero limit disables the check.
func (uc *RiskUseCase) CheckExposure(ctx context.Context) (int, error) {
	limit := uc.config.Alert.ExposureP90
	if limit <= 0 || !uc.notifier.enabled() {
		return 0, nil
	}

	projects, err := uc.repo.Project().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list projects")
	}

	var alerts int
	for _, project := range projects {
		if project.SlackChannelID == "" {
			continue
		}

		result, err := uc.Simulate(ctx, project.ID, SimulateInput{Percentiles: []float64{50, 90}})
		if err != nil {
			return alerts, err
		}
		p90, ok := result.Percentile(90)
		if !ok || p90 <= limit {
			continue
		}

		if err := uc.notifier.send(ctx, project.ID, func(p *model.Project) ([]slackapi.Block, string) {
			return slack.ExposureAlertMessage(p, result, limit)
		}); err != nil {
			return alerts, err
		}
		alerts++
	}

	return alerts, nil
}
