// Package evm computes earned value management metrics. Every function is
// pure: inputs are passed explicitly and nothing is cached between calls.
package evm

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input is the (PV, EV, AC, BAC) tuple of a period or of cumulative sums
type Input struct {
	PV  decimal.Decimal
	EV  decimal.Decimal
	AC  decimal.Decimal
	BAC decimal.Decimal
}

// Validate rejects negative amounts
func (in Input) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"pv", in.PV},
		{"ev", in.EV},
		{"ac", in.AC},
		{"bac", in.BAC},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return goerr.Wrap(types.ErrInvalidArgument, "amount must not be negative",
				goerr.V(types.FieldKey, f.name), goerr.V(types.ValueKey, f.value.String()))
		}
	}
	return nil
}

// Compute derives the earned value metrics of one tuple. A zero denominator
// leaves the corresponding index nil and is not an error.
func Compute(in Input) (*model.Metrics, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := &model.Metrics{
		PV:  in.PV,
		EV:  in.EV,
		AC:  in.AC,
		BAC: in.BAC,
		CV:  in.EV.Sub(in.AC),
		SV:  in.EV.Sub(in.PV),
		CPI: ratio(in.EV, in.AC),
		SPI: ratio(in.EV, in.PV),
	}

	// BAC / CPI is BAC * AC / EV; dividing once keeps money exact
	if m.CPI == nil || in.EV.IsZero() {
		m.EAC = in.AC.Add(in.BAC.Sub(in.EV))
		m.EACMethod = model.EACByRemainingBudget
	} else {
		m.EAC = in.BAC.Mul(in.AC).Div(in.EV)
		m.EACMethod = model.EACByCPI
	}
	m.ETC = m.EAC.Sub(in.AC)
	m.VAC = in.BAC.Sub(m.EAC)
	m.TCPI = ratio(in.BAC.Sub(in.EV), in.BAC.Sub(in.AC))

	if !in.BAC.IsZero() {
		raw := in.EV.Div(in.BAC).Mul(hundred).InexactFloat64()
		clamped := min(max(raw, 0), 100)
		m.PercentCompleteRaw = &raw
		m.PercentComplete = &clamped
	}

	return m, nil
}

func ratio(num, den decimal.Decimal) *float64 {
	if den.IsZero() {
		return nil
	}
	v := num.Div(den).InexactFloat64()
	return &v
}
