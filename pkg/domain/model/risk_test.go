package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

func TestRisk_Effective(t *testing.T) {
	inherent := &model.Assessment{Probability: 4, Impact: 5}
	residual := &model.Assessment{Probability: 2, Impact: 3}

	r := &model.Risk{}
	gt.Value(t, r.Effective()).Nil()
	gt.Value(t, r.Score()).Equal(0)

	r.Inherent = inherent
	gt.Value(t, r.Effective()).Equal(inherent)
	gt.Value(t, r.Score()).Equal(20)

	r.Residual = residual
	gt.Value(t, r.Effective()).Equal(residual)
	gt.Value(t, r.Score()).Equal(6)
}

func TestRisk_IsActive(t *testing.T) {
	gt.Bool(t, (&model.Risk{}).IsActive()).True()
	gt.Bool(t, (&model.Risk{Status: types.RiskStatusMonitored}).IsActive()).True()
	gt.Bool(t, (&model.Risk{Status: types.RiskStatusClosed}).IsActive()).False()
}

func TestRisk_ExpectedCost(t *testing.T) {
	r := &model.Risk{CostImpact: decimal.NewFromInt(300)}
	gt.Bool(t, r.ExpectedCost().Equal(decimal.NewFromInt(300))).True()

	r.CostRange = &model.CostRange{
		Optimistic:  decimal.NewFromInt(150),
		Pessimistic: decimal.NewFromInt(600),
	}
	// (150 + 300 + 600) / 3
	gt.Bool(t, r.ExpectedCost().Equal(decimal.NewFromInt(350))).True()
}

func TestRisk_Copy(t *testing.T) {
	r := &model.Risk{
		Title:     "Heat exchanger tube failure",
		Inherent:  &model.Assessment{Probability: 3, Impact: 4},
		CostRange: &model.CostRange{Optimistic: decimal.NewFromInt(1), Pessimistic: decimal.NewFromInt(9)},
	}
	c := r.Copy()
	c.Inherent.Probability = 1
	c.CostRange.Pessimistic = decimal.NewFromInt(99)

	gt.Value(t, r.Inherent.Probability).Equal(types.Score(3))
	gt.Bool(t, r.CostRange.Pessimistic.Equal(decimal.NewFromInt(9))).True()
	gt.Value(t, c.Residual).Nil()
}

func TestAssessment_Validate(t *testing.T) {
	gt.NoError(t, model.Assessment{Probability: 1, Impact: 5}.Validate())
	gt.Error(t, model.Assessment{Probability: 0, Impact: 5}.Validate()).Is(types.ErrInvalidArgument)
	gt.Error(t, model.Assessment{Probability: 3, Impact: 6}.Validate()).Is(types.ErrInvalidArgument)
}

func TestRiskResponse(t *testing.T) {
	resp := &model.RiskResponse{ExpectedProbability: 2, ExpectedImpact: 3, Status: types.ResponseStatusPlanned}
	gt.Value(t, resp.Expected()).Equal(model.Assessment{Probability: 2, Impact: 3})
	gt.Bool(t, resp.IsImplemented()).False()

	resp.Status = types.ResponseStatusImplemented
	gt.Bool(t, resp.IsImplemented()).True()
}

func TestSimulationResult_Percentile(t *testing.T) {
	r := &model.SimulationResult{Percentiles: []model.PercentileValue{{Percentile: 50, Value: 10}, {Percentile: 90, Value: 42}}}

	v, ok := r.Percentile(90)
	gt.Bool(t, ok).True()
	gt.Value(t, v).Equal(42.0)

	_, ok = r.Percentile(95)
	gt.Bool(t, ok).False()
}

func TestRiskMatrix_Cell(t *testing.T) {
	var m model.RiskMatrix
	m.Cells[2][3] = &model.MatrixCell{Probability: 3, Impact: 4, Score: 12, Count: 1}
	gt.Value(t, m.Cell(3, 4).Score).Equal(12)
}
