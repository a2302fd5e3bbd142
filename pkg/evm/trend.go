package evm

import (
	"iter"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Trend returns the periods with DataDate in [start, end] ordered by DataDate.
// The sequence is computed lazily on each range and can be ranged over again.
// Missing periods are not filled in.
func Trend(records []*model.EVMRecord, start, end time.Time) (iter.Seq[model.TrendPoint], error) {
	if start.After(end) {
		return nil, goerr.Wrap(types.ErrInvalidArgument, "trend start must not be after end",
			goerr.V("start", start), goerr.V("end", end))
	}

	ordered, err := sorted(records)
	if err != nil {
		return nil, err
	}

	return func(yield func(model.TrendPoint) bool) {
		cumPV, cumEV, cumAC := decimal.Zero, decimal.Zero, decimal.Zero
		for _, r := range ordered {
			if r.DataDate.After(end) {
				return
			}
			// sums run from the first period so cumulative indices stay correct
			cumPV = cumPV.Add(r.PV)
			cumEV = cumEV.Add(r.EV)
			cumAC = cumAC.Add(r.AC)
			if r.DataDate.Before(start) {
				continue
			}

			point := model.TrendPoint{
				DataDate:      r.DataDate,
				PeriodType:    r.PeriodType,
				PV:            r.PV,
				EV:            r.EV,
				AC:            r.AC,
				CPI:           ratio(r.EV, r.AC),
				SPI:           ratio(r.EV, r.PV),
				CumulativePV:  cumPV,
				CumulativeEV:  cumEV,
				CumulativeAC:  cumAC,
				CumulativeCPI: ratio(cumEV, cumAC),
				CumulativeSPI: ratio(cumEV, cumPV),
			}
			if !yield(point) {
				return
			}
		}
	}, nil
}
