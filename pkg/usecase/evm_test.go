package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/repository/memory"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func TestEVMUseCase_Scenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	rec := f.appendRecord(t, day(time.January, 31), 100, 80, 100)
	gt.Value(t, rec.BAC.String()).Equal("1000")
	gt.Value(t, rec.CumulativeEV.String()).Equal("80")

	am, err := f.uc.EVM.Metrics(ctx, f.account.ID, time.Time{})
	gt.NoError(t, err).Required()
	m := am.Cumulative
	gt.Value(t, m.Periods).Equal(1)
	gt.Bool(t, m.CV.Equal(d(-20))).True()
	gt.Bool(t, m.SV.Equal(d(-20))).True()
	gt.Value(t, *m.CPI).Equal(0.8)
	gt.Value(t, *m.SPI).Equal(0.8)
	gt.Bool(t, m.EAC.Equal(d(1250))).True()
	gt.Bool(t, m.VAC.Equal(d(-250))).True()
	gt.Value(t, am.Status).Equal(model.PerformanceCritical)
}

func TestEVMUseCase_AppendRecord(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.appendRecord(t, day(time.February, 28), 100, 100, 100)

	t.Run("out of order", func(t *testing.T) {
		_, err := f.uc.EVM.AppendRecord(ctx, f.account.ID, period(day(time.February, 28), 1, 1, 1))
		gt.Error(t, err).Is(types.ErrOutOfOrder)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := f.uc.EVM.AppendRecord(ctx, f.account.ID, period(day(time.March, 31), 1, -1, 1))
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := f.uc.EVM.AppendRecord(ctx, f.account.ID, period(time.Time{}, 1, 1, 1))
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("invalid period type", func(t *testing.T) {
		in := period(day(time.March, 31), 1, 1, 1)
		in.PeriodType = "DAILY"
		_, err := f.uc.EVM.AppendRecord(ctx, f.account.ID, in)
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.uc.EVM.AppendRecord(ctx, "missing", period(day(time.March, 31), 1, 1, 1))
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("BAC override", func(t *testing.T) {
		bac := d(1200)
		in := period(day(time.March, 31), 100, 100, 100)
		in.BAC = &bac
		rec, err := f.uc.EVM.AppendRecord(ctx, f.account.ID, in)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.BAC.String()).Equal("1200")
		gt.Value(t, rec.CumulativePV.String()).Equal("200")
	})
}

func TestEVMUseCase_CumulativeRatioOfSums(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	// period CPIs 2.0 and 0.5; the cumulative CPI is 150/150
	f.appendRecord(t, day(time.January, 31), 100, 100, 50)
	f.appendRecord(t, day(time.February, 28), 50, 50, 100)

	am, err := f.uc.EVM.Metrics(ctx, f.account.ID, time.Time{})
	gt.NoError(t, err).Required()
	gt.Value(t, *am.Cumulative.CPI).Equal(1.0)
	gt.Value(t, am.Cumulative.Periods).Equal(2)

	first, err := f.uc.EVM.Metrics(ctx, f.account.ID, day(time.February, 1))
	gt.NoError(t, err).Required()
	gt.Value(t, *first.Cumulative.CPI).Equal(2.0)
	gt.Value(t, first.Cumulative.Periods).Equal(1)
}

func TestEVMUseCase_PerformanceAlert(t *testing.T) {
	f := setup(t)

	f.appendRecord(t, day(time.January, 31), 100, 80, 100)
	msg := f.slack.wait(t)
	gt.Value(t, msg.ChannelID).Equal("C-PROJECT")
	gt.String(t, msg.Text).Contains("CRITICAL")

	// still critical: no repeat
	f.appendRecord(t, day(time.February, 28), 100, 80, 100)
	f.slack.expectNone(t)

	// recovered: on track is never announced
	f.appendRecord(t, day(time.March, 31), 100, 300, 100)
	f.slack.expectNone(t)
}

func TestEVMUseCase_NoSlackService(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	project, err := uc.Project.CreateProject(ctx, usecase.CreateProjectInput{
		ID:             "quiet",
		Name:           "Quiet",
		SlackChannelID: "C-QUIET",
	})
	gt.NoError(t, err).Required()
	account, err := uc.ControlAccount.CreateControlAccount(ctx, project.ID, usecase.CreateControlAccountInput{
		WBSCode: "1",
		Name:    "All",
		BAC:     d(100),
	})
	gt.NoError(t, err).Required()

	_, err = uc.EVM.AppendRecord(ctx, account.ID, period(day(time.January, 31), 100, 10, 100))
	gt.NoError(t, err)
}

func TestEVMUseCase_Trend(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.appendRecord(t, day(time.January, 31), 100, 100, 50)
	f.appendRecord(t, day(time.February, 28), 100, 50, 100)
	f.appendRecord(t, day(time.March, 31), 100, 150, 150)

	points, err := f.uc.EVM.Trend(ctx, f.account.ID, day(time.February, 1), time.Time{})
	gt.NoError(t, err).Required()
	gt.Array(t, points).Length(2).Required()
	gt.Value(t, points[0].DataDate).Equal(day(time.February, 28))
	gt.Value(t, points[0].CumulativeEV.String()).Equal("150")
	gt.Value(t, *points[0].CPI).Equal(0.5)
	gt.Value(t, *points[1].CumulativeCPI).Equal(1.0)

	_, err = f.uc.EVM.Trend(ctx, f.account.ID, day(time.March, 1), day(time.February, 1))
	gt.Error(t, err).Is(types.ErrInvalidArgument)
}

func TestEVMUseCase_ProjectEVM(t *testing.T) {
	ctx := context.Background()
	f := setup(t, usecase.WithRollupConcurrency(2))

	second, err := f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
		WBSCode: "1.2",
		Name:    "Mechanical",
		BAC:     d(500),
	})
	gt.NoError(t, err).Required()
	// an account with no records still adds its budget
	_, err = f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
		WBSCode: "1.3",
		Name:    "Electrical",
		BAC:     d(250),
	})
	gt.NoError(t, err).Required()

	f.appendRecord(t, day(time.January, 31), 100, 80, 100)
	_, err = f.uc.EVM.AppendRecord(ctx, second.ID, period(day(time.January, 31), 50, 50, 25))
	gt.NoError(t, err).Required()

	rollup, err := f.uc.EVM.ProjectEVM(ctx, f.project.ID, day(time.January, 31))
	gt.NoError(t, err).Required()
	gt.Array(t, rollup.Accounts).Length(3).Required()
	gt.Value(t, rollup.Accounts[0].ControlAccount.WBSCode).Equal(types.WBSCode("1.1"))
	gt.Value(t, rollup.Total.EV.String()).Equal("130")
	gt.Value(t, rollup.Total.AC.String()).Equal("125")
	gt.Value(t, rollup.Total.BAC.String()).Equal("1750")
	gt.Bool(t, math.Abs(*rollup.Total.CPI-1.04) < 1e-9).True()
	gt.Value(t, rollup.Accounts[2].Cumulative.Periods).Equal(0)

	_, err = f.uc.EVM.ProjectEVM(ctx, "unknown", time.Time{})
	gt.Error(t, err).Is(types.ErrNotFound)
}
