package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/evm"
	"github.com/secmon-lab/argus/pkg/service/slack"
	"github.com/secmon-lab/argus/pkg/utils/logging"
	"github.com/shopspring/decimal"
	slackapi "github.com/slack-go/slack"
	"golang.org/x/sync/errgroup"
)

type EVMUseCase struct {
	repo        interfaces.Repository
	config      *config.Config
	notifier    *notifier
	concurrency int
}

func NewEVMUseCase(repo interfaces.Repository, cfg *config.Config, n *notifier, concurrency int) *EVMUseCase {
	return &EVMUseCase{
		repo:        repo,
		config:      cfg,
		notifier:    n,
		concurrency: concurrency,
	}
}

// AppendRecordInput holds one reporting period. A nil BAC takes the control
// account's budget.
type AppendRecordInput struct {
	DataDate   time.Time        `json:"data_date"`
	PeriodType types.PeriodType `json:"period_type"`
	PV         decimal.Decimal  `json:"pv"`
	EV         decimal.Decimal  `json:"ev"`
	AC         decimal.Decimal  `json:"ac"`
	BAC        *decimal.Decimal `json:"bac,omitempty"`
}

// AppendRecord stores the next period of a control account. When the new
// cumulative status is worse than on track and differs from the previous
// period's, the project channel is notified.
func (uc *EVMUseCase) AppendRecord(ctx context.Context, accountID types.ControlAccountID, in AppendRecordInput) (*model.EVMRecord, error) {
	account, err := uc.repo.ControlAccount().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get control account", goerr.V("control_account_id", accountID))
	}

	if in.DataDate.IsZero() {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "data date is required", goerr.V(types.FieldKey, "data_date"))
	}
	periodType := in.PeriodType.Normalize()
	if !periodType.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "invalid period type",
			goerr.V(types.FieldKey, "period_type"), goerr.V(types.ValueKey, in.PeriodType))
	}

	bac := account.BAC
	if in.BAC != nil {
		bac = *in.BAC
	}
	amounts := evm.Input{PV: in.PV, EV: in.EV, AC: in.AC, BAC: bac}
	if err := amounts.Validate(); err != nil {
		return nil, err
	}

	previous, err := uc.repo.EVMRecord().List(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list EVM records", goerr.V("control_account_id", accountID))
	}

	created, err := uc.repo.EVMRecord().Append(ctx, &model.EVMRecord{
		ID:               model.NewRecordID(),
		ControlAccountID: accountID,
		DataDate:         in.DataDate.UTC(),
		PeriodType:       periodType,
		PV:               in.PV,
		EV:               in.EV,
		AC:               in.AC,
		BAC:              bac,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append EVM record", goerr.V("control_account_id", accountID))
	}

	uc.checkPerformance(ctx, account, previous, created)
	return created, nil
}

func (uc *EVMUseCase) checkPerformance(ctx context.Context, account *model.ControlAccount, previous []*model.EVMRecord, created *model.EVMRecord) {
	records := append(slices.Clone(previous), created)
	current, err := evm.Cumulative(records, created.DataDate)
	if err != nil {
		logging.From(ctx).Warn("failed to compute metrics for alert", "error", err, "control_account_id", account.ID)
		return
	}
	status := evm.Classify(&current.Metrics, uc.config.Alert)
	if status == model.PerformanceOnTrack {
		return
	}

	if len(previous) > 0 {
		before, err := evm.Cumulative(previous, previous[len(previous)-1].DataDate)
		if err == nil && evm.Classify(&before.Metrics, uc.config.Alert) == status {
			return
		}
	}

	am := &model.AccountMetrics{ControlAccount: account, Cumulative: current, Status: status}
	uc.notifier.post(ctx, account.ProjectID, func(p *model.Project) ([]slackapi.Block, string) {
		return slack.PerformanceAlertMessage(p, am)
	})
}

func (uc *EVMUseCase) ListRecords(ctx context.Context, accountID types.ControlAccountID) ([]*model.EVMRecord, error) {
	if _, err := uc.repo.ControlAccount().Get(ctx, accountID); err != nil {
		return nil, goerr.Wrap(err, "failed to get control account", goerr.V("control_account_id", accountID))
	}
	records, err := uc.repo.EVMRecord().List(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list EVM records", goerr.V("control_account_id", accountID))
	}
	return records, nil
}

// Metrics returns the cumulative metrics of an account as of at. A zero at
// means the latest period.
func (uc *EVMUseCase) Metrics(ctx context.Context, accountID types.ControlAccountID, at time.Time) (*model.AccountMetrics, error) {
	account, err := uc.repo.ControlAccount().Get(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get control account", goerr.V("control_account_id", accountID))
	}
	return uc.accountMetrics(ctx, account, at)
}

func (uc *EVMUseCase) accountMetrics(ctx context.Context, account *model.ControlAccount, at time.Time) (*model.AccountMetrics, error) {
	records, err := uc.repo.EVMRecord().List(ctx, account.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list EVM records", goerr.V("control_account_id", account.ID))
	}

	if at.IsZero() {
		at = latestDate(records)
	}

	cumulative, err := evm.Cumulative(records, at)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute cumulative metrics", goerr.V("control_account_id", account.ID))
	}
	cumulative.ControlAccountID = account.ID
	if cumulative.Periods == 0 {
		// nothing reported yet; the budget still counts toward the roll-up
		m, err := evm.Compute(evm.Input{BAC: account.BAC})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compute metrics", goerr.V("control_account_id", account.ID))
		}
		cumulative.Metrics = *m
	}

	return &model.AccountMetrics{
		ControlAccount: account,
		Cumulative:     cumulative,
		Status:         evm.Classify(&cumulative.Metrics, uc.config.Alert),
	}, nil
}

func latestDate(records []*model.EVMRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.DataDate.After(latest) {
			latest = r.DataDate
		}
	}
	if latest.IsZero() {
		return time.Now().UTC()
	}
	return latest
}

// Trend returns the S-curve points of an account between from and to,
// inclusive. Zero bounds are open.
func (uc *EVMUseCase) Trend(ctx context.Context, accountID types.ControlAccountID, from, to time.Time) ([]model.TrendPoint, error) {
	records, err := uc.ListRecords(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = latestDate(records)
		if from.After(to) {
			to = from
		}
	}

	seq, err := evm.Trend(records, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build trend", goerr.V("control_account_id", accountID))
	}

	points := slices.Collect(seq)
	if points == nil {
		points = []model.TrendPoint{}
	}
	return points, nil
}

// ProjectEVM rolls every control account of a project up to project totals
// as of at. A zero at means now.
func (uc *EVMUseCase) ProjectEVM(ctx context.Context, projectID types.ProjectID, at time.Time) (*model.ProjectEVM, error) {
	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}
	accounts, err := uc.repo.ControlAccount().ListByProject(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list control accounts", goerr.V("project_id", projectID))
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	results := make([]*model.AccountMetrics, len(accounts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)
	for i, account := range accounts {
		eg.Go(func() error {
			am, err := uc.accountMetrics(egCtx, account, at)
			if err != nil {
				return err
			}
			results[i] = am
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to compute project roll-up", goerr.V("project_id", projectID))
	}

	cumulatives := make([]*model.CumulativeMetrics, 0, len(results))
	for _, am := range results {
		cumulatives = append(cumulatives, am.Cumulative)
	}
	total, err := evm.Rollup(cumulatives)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to roll up metrics", goerr.V("project_id", projectID))
	}

	return &model.ProjectEVM{
		ProjectID: projectID,
		DataDate:  at,
		Total:     total,
		Status:    evm.Classify(total, uc.config.Alert),
		Accounts:  results,
	}, nil
}
