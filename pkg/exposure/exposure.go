// Package exposure estimates the cost exposure of a risk register, both as a
// deterministic probability-weighted sum and as a Monte Carlo distribution.
package exposure

import (
	"cmp"
	"slices"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/shopspring/decimal"
)

// scaleSquared is MaxScore^2; probability/5 * impact/5 = p*i/25
var scaleSquared = decimal.NewFromInt(25)

// scored reports whether the risk takes part in exposure: it must be active
// and assessed.
func scored(r *model.Risk) bool {
	return r != nil && r.IsActive() && r.Effective() != nil
}

// Deterministic sums probability/5 x impact/5 x expected cost over the active
// assessed risks, using the residual assessment when one exists. Items are
// ranked by score and then by exposure, both descending.
func Deterministic(risks []*model.Risk) *model.Exposure {
	result := &model.Exposure{
		Total: decimal.Zero,
		Items: []*model.ExposureItem{},
	}

	for _, r := range risks {
		if !scored(r) {
			continue
		}
		a := r.Effective()
		cost := r.ExpectedCost()
		value := cost.Mul(decimal.NewFromInt(int64(a.Score()))).Div(scaleSquared)

		result.Items = append(result.Items, &model.ExposureItem{
			RiskID:       r.ID,
			Title:        r.Title,
			Probability:  a.Probability,
			Impact:       a.Impact,
			Score:        a.Score(),
			ExpectedCost: cost,
			Exposure:     value,
		})
		result.Total = result.Total.Add(value)
		result.ActiveRisks++
	}

	slices.SortStableFunc(result.Items, func(a, b *model.ExposureItem) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.Exposure.Cmp(a.Exposure); c != 0 {
			return c
		}
		return cmp.Compare(a.RiskID, b.RiskID)
	})

	return result
}
