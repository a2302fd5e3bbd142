package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func TestReportUseCase_BuildReport(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.appendRecord(t, day(time.January, 31), 100, 80, 100)
	f.createRisk(t, "Late steel", 3, 4, 500)

	seed := uint64(1)
	report, err := f.uc.Report.BuildReport(ctx, f.project.ID, usecase.ReportInput{
		Simulation: &usecase.SimulateInput{Seed: &seed},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, report.Project.ID).Equal(f.project.ID)
	gt.Array(t, report.EVM.Accounts).Length(1)
	gt.Array(t, report.Risks).Length(1)
	gt.Bool(t, report.Exposure.Total.Equal(d(240))).True()
	gt.Value(t, report.Matrix.Cell(3, 4).Count).Equal(1)
	gt.Value(t, report.Simulation).NotNil()
	gt.Value(t, report.Simulation.Seed).Equal(seed)

	withoutSim, err := f.uc.Report.BuildReport(ctx, f.project.ID, usecase.ReportInput{})
	gt.NoError(t, err).Required()
	gt.Value(t, withoutSim.Simulation).Nil()
}

func TestReportUseCase_Export(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.appendRecord(t, day(time.January, 31), 100, 80, 100)
	f.createRisk(t, "Late steel", 3, 4, 500)

	var buf bytes.Buffer
	gt.NoError(t, f.uc.Report.Export(ctx, f.project.ID, types.ReportFormatCSV, usecase.ReportInput{}, &buf)).Required()

	rows, err := csv.NewReader(&buf).ReadAll()
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(4)
	gt.Value(t, rows[1][1]).Equal("gas-plant")

	t.Run("unsupported format", func(t *testing.T) {
		var buf bytes.Buffer
		err := f.uc.Report.Export(ctx, f.project.ID, "xlsx", usecase.ReportInput{}, &buf)
		gt.Error(t, err).Is(types.ErrInvalidArgument)
		gt.Value(t, buf.Len()).Equal(0)
	})

	t.Run("unknown project", func(t *testing.T) {
		var buf bytes.Buffer
		err := f.uc.Report.Export(ctx, "unknown", types.ReportFormatJSON, usecase.ReportInput{}, &buf)
		gt.Error(t, err).Is(types.ErrNotFound)
	})
}
