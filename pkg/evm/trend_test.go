package evm_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/evm"
)

func TestTrend(t *testing.T) {
	records := []*model.EVMRecord{
		record(4, 100, 100, 100, 1000),
		record(1, 100, 200, 100, 1000),
		record(2, 100, 100, 200, 1000),
		// no record for month 3
		record(5, 100, 50, 100, 1000),
	}

	seq, err := evm.Trend(records, date(2), date(4))
	gt.NoError(t, err).Required()

	var points []model.TrendPoint
	for p := range seq {
		points = append(points, p)
	}

	gt.Array(t, points).Length(2)
	gt.Value(t, points[0].DataDate).Equal(date(2))
	gt.Value(t, points[1].DataDate).Equal(date(4))

	// period index of month 2 only
	gt.Value(t, *points[0].CPI).Equal(0.5)
	// cumulative sums include month 1 even though it is before the window
	gt.Bool(t, points[0].CumulativeEV.Equal(d(300))).True()
	gt.Value(t, *points[0].CumulativeCPI).Equal(1.0)
	gt.Bool(t, points[1].CumulativeAC.Equal(d(400))).True()

	t.Run("sequence is restartable", func(t *testing.T) {
		var again []model.TrendPoint
		for p := range seq {
			again = append(again, p)
		}
		gt.Array(t, again).Length(len(points))
		gt.Value(t, again[1].DataDate).Equal(points[1].DataDate)
	})

	t.Run("early break stops the sequence", func(t *testing.T) {
		count := 0
		for range seq {
			count++
			break
		}
		gt.Value(t, count).Equal(1)
	})
}

func TestTrend_EmptyWindow(t *testing.T) {
	seq, err := evm.Trend([]*model.EVMRecord{record(1, 1, 1, 1, 1)}, date(6), date(7))
	gt.NoError(t, err).Required()
	for range seq {
		t.Error("expected no points")
	}
}

func TestTrend_InvalidRange(t *testing.T) {
	_, err := evm.Trend(nil, date(5), date(1))
	gt.Error(t, err).Is(types.ErrInvalidArgument)
}
