package model

import (
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// ExposureItem is one active risk's contribution to deterministic exposure
type ExposureItem struct {
	RiskID       int64           `json:"risk_id"`
	Title        string          `json:"title"`
	Probability  types.Score     `json:"probability"`
	Impact       types.Score     `json:"impact"`
	Score        int             `json:"score"`
	ExpectedCost decimal.Decimal `json:"expected_cost"`
	Exposure     decimal.Decimal `json:"exposure"`
}

// Exposure is the deterministic exposure of a register. Items are ranked by
// score, then by exposure, both descending.
type Exposure struct {
	Total       decimal.Decimal `json:"total"`
	ActiveRisks int             `json:"active_risks"`
	Items       []*ExposureItem `json:"items"`
}

// PercentileValue is one percentile band of a simulated distribution
type PercentileValue struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}

// SimulationResult summarizes the per-iteration totals of a Monte Carlo run
type SimulationResult struct {
	Iterations    int               `json:"iterations"`
	Seed          uint64            `json:"seed"`
	Risks         int               `json:"risks"`
	Mean          float64           `json:"mean"`
	StdDev        float64           `json:"std_dev"`
	Min           float64           `json:"min"`
	Max           float64           `json:"max"`
	Percentiles   []PercentileValue `json:"percentiles"`
	Deterministic float64           `json:"deterministic"`
}

// Percentile returns the value of band p, and false if the band was not computed
func (s *SimulationResult) Percentile(p float64) (float64, bool) {
	for _, pv := range s.Percentiles {
		if pv.Percentile == p {
			return pv.Value, true
		}
	}
	return 0, false
}

// MatrixCell counts the risks at one probability and impact pair
type MatrixCell struct {
	Probability types.Score `json:"probability"`
	Impact      types.Score `json:"impact"`
	Score       int         `json:"score"`
	Count       int         `json:"count"`
	RiskIDs     []int64     `json:"risk_ids"`
}

// RiskMatrix is a 5x5 probability-impact grid. Cells[p-1][i-1] holds
// probability p and impact i.
type RiskMatrix struct {
	Residual   bool              `json:"residual"`
	Cells      [5][5]*MatrixCell `json:"cells"`
	Unassessed []int64           `json:"unassessed"`
}

// Cell returns the cell for a probability and impact pair
func (m *RiskMatrix) Cell(probability, impact types.Score) *MatrixCell {
	return m.Cells[probability-1][impact-1]
}
