package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func newRecord(accountID types.ControlAccountID, at time.Time, pv, ev, ac int64) *model.EVMRecord {
	return &model.EVMRecord{
		ID:               model.NewRecordID(),
		ControlAccountID: accountID,
		DataDate:         at,
		PeriodType:       types.PeriodMonthly,
		PV:               d(pv),
		EV:               d(ev),
		AC:               d(ac),
		BAC:              d(1000),
	}
}

func runEVMRecordRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append fills cumulative sums", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		accountID := model.NewControlAccountID()

		first, err := repo.EVMRecord().Append(ctx, newRecord(accountID, day(1, 31), 100, 80, 100))
		gt.NoError(t, err).Required()
		gt.Bool(t, first.CumulativePV.Equal(d(100))).True()
		gt.Bool(t, first.CreatedAt.IsZero()).False()

		second, err := repo.EVMRecord().Append(ctx, newRecord(accountID, day(2, 28), 150, 160, 140))
		gt.NoError(t, err).Required()
		gt.Bool(t, second.CumulativePV.Equal(d(250))).True()
		gt.Bool(t, second.CumulativeEV.Equal(d(240))).True()
		gt.Bool(t, second.CumulativeAC.Equal(d(240))).True()
	})

	t.Run("Append rejects non-increasing data date", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		accountID := model.NewControlAccountID()

		_, err := repo.EVMRecord().Append(ctx, newRecord(accountID, day(3, 31), 100, 100, 100))
		gt.NoError(t, err).Required()

		_, err = repo.EVMRecord().Append(ctx, newRecord(accountID, day(3, 31), 100, 100, 100))
		gt.Error(t, err).Is(types.ErrOutOfOrder)

		_, err = repo.EVMRecord().Append(ctx, newRecord(accountID, day(2, 28), 100, 100, 100))
		gt.Error(t, err).Is(types.ErrOutOfOrder)

		records, err := repo.EVMRecord().List(ctx, accountID)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(1)
	})

	t.Run("List is ordered and scoped to the account", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		accountID := model.NewControlAccountID()
		otherID := model.NewControlAccountID()

		for _, m := range []time.Month{1, 2, 3} {
			_, err := repo.EVMRecord().Append(ctx, newRecord(accountID, day(m, 1), 10, 10, 10))
			gt.NoError(t, err).Required()
		}
		_, err := repo.EVMRecord().Append(ctx, newRecord(otherID, day(1, 1), 10, 10, 10))
		gt.NoError(t, err).Required()

		records, err := repo.EVMRecord().List(ctx, accountID)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(3)
		for i, r := range records {
			gt.Value(t, r.DataDate.Month()).Equal(time.Month(i + 1))
			gt.Bool(t, r.CumulativePV.Equal(d(int64(10*(i+1))))).True()
		}

		empty, err := repo.EVMRecord().List(ctx, model.NewControlAccountID())
		gt.NoError(t, err).Required()
		gt.Array(t, empty).Length(0)
	})
}
