package evm

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// sorted returns a copy of records ordered by DataDate ascending, and fails
// when records of different control accounts are mixed
func sorted(records []*model.EVMRecord) ([]*model.EVMRecord, error) {
	out := slices.Clone(records)
	for _, r := range out {
		if r.ControlAccountID != out[0].ControlAccountID {
			return nil, goerr.Wrap(types.ErrInvalidArgument, "records belong to different control accounts",
				goerr.V("first", out[0].ControlAccountID), goerr.V("other", r.ControlAccountID))
		}
	}
	slices.SortStableFunc(out, func(a, b *model.EVMRecord) int {
		return a.DataDate.Compare(b.DataDate)
	})
	return out, nil
}

// Cumulative sums PV, EV and AC of every record with DataDate not after at,
// takes BAC from the latest of them, and recomputes all ratios from the sums.
func Cumulative(records []*model.EVMRecord, at time.Time) (*model.CumulativeMetrics, error) {
	ordered, err := sorted(records)
	if err != nil {
		return nil, err
	}

	var in Input
	result := &model.CumulativeMetrics{DataDate: at}
	for _, r := range ordered {
		if r.DataDate.After(at) {
			break
		}
		in.PV = in.PV.Add(r.PV)
		in.EV = in.EV.Add(r.EV)
		in.AC = in.AC.Add(r.AC)
		in.BAC = r.BAC
		result.ControlAccountID = r.ControlAccountID
		result.Periods++
	}

	m, err := Compute(in)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute cumulative metrics", goerr.V("data_date", at))
	}
	result.Metrics = *m
	return result, nil
}

// Rollup aggregates the cumulative sums of several control accounts into
// project totals. Ratios come from the summed amounts.
func Rollup(accounts []*model.CumulativeMetrics) (*model.Metrics, error) {
	in := Input{
		PV:  decimal.Zero,
		EV:  decimal.Zero,
		AC:  decimal.Zero,
		BAC: decimal.Zero,
	}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		in.PV = in.PV.Add(a.PV)
		in.EV = in.EV.Add(a.EV)
		in.AC = in.AC.Add(a.AC)
		in.BAC = in.BAC.Add(a.BAC)
	}
	return Compute(in)
}

// Accumulate fills the cumulative fields of next from the latest existing
// record. It fails when next is not strictly later than every existing record.
func Accumulate(existing []*model.EVMRecord, next *model.EVMRecord) error {
	var last *model.EVMRecord
	for _, r := range existing {
		if last == nil || r.DataDate.After(last.DataDate) {
			last = r
		}
	}

	if last == nil {
		next.CumulativePV = next.PV
		next.CumulativeEV = next.EV
		next.CumulativeAC = next.AC
		return nil
	}

	if !next.DataDate.After(last.DataDate) {
		return goerr.Wrap(types.ErrOutOfOrder, "data date must be after the latest record",
			goerr.V("data_date", next.DataDate), goerr.V("latest", last.DataDate))
	}

	next.CumulativePV = last.CumulativePV.Add(next.PV)
	next.CumulativeEV = last.CumulativeEV.Add(next.EV)
	next.CumulativeAC = last.CumulativeAC.Add(next.AC)
	return nil
}
