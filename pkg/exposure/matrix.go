package exposure

import (
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Matrix places active risks on the 5x5 probability-impact grid. With
// residual set, risks that have a residual assessment use it and the others
// fall back to the inherent one. Active risks with no assessment are listed
// in Unassessed.
func Matrix(risks []*model.Risk, residual bool) *model.RiskMatrix {
	m := &model.RiskMatrix{
		Residual:   residual,
		Unassessed: []int64{},
	}
	for p := types.MinScore; p <= types.MaxScore; p++ {
		for i := types.MinScore; i <= types.MaxScore; i++ {
			m.Cells[p-1][i-1] = &model.MatrixCell{
				Probability: p,
				Impact:      i,
				Score:       p.Int() * i.Int(),
				RiskIDs:     []int64{},
			}
		}
	}

	for _, r := range risks {
		if r == nil || !r.IsActive() {
			continue
		}
		a := r.Inherent
		if residual {
			a = r.Effective()
		}
		if a == nil || a.Validate() != nil {
			m.Unassessed = append(m.Unassessed, r.ID)
			continue
		}
		cell := m.Cell(a.Probability, a.Impact)
		cell.Count++
		cell.RiskIDs = append(cell.RiskIDs, r.ID)
	}

	return m
}
