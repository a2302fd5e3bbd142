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

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns increasing IDs and identified status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Risk().Create(ctx, &model.Risk{
			ProjectID:  "p1",
			Title:      "Late delivery of compressor",
			CostImpact: d(250000),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, first.ID).NotEqual(int64(0))
		gt.Value(t, first.Status).Equal(types.RiskStatusIdentified)
		gt.Bool(t, first.CreatedAt.IsZero()).False()

		second, err := repo.Risk().Create(ctx, &model.Risk{ProjectID: "p1", Title: "Weather"})
		gt.NoError(t, err).Required()
		gt.Bool(t, second.ID > first.ID).True()
	})

	t.Run("Get round trips assessments and cost range", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			ProjectID:  "p1",
			Title:      "Soil conditions",
			Owner:      "civil lead",
			Inherent:   &model.Assessment{Probability: 3, Impact: 4},
			CostImpact: d(1000),
			CostRange:  &model.CostRange{Optimistic: d(500), Pessimistic: d(4000)},
		})
		gt.NoError(t, err).Required()

		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Soil conditions")
		gt.Value(t, got.Owner).Equal("civil lead")
		gt.Value(t, got.Inherent).NotNil()
		gt.Value(t, *got.Inherent).Equal(model.Assessment{Probability: 3, Impact: 4})
		gt.Value(t, got.Residual).Nil()
		gt.Bool(t, got.CostImpact.Equal(d(1000))).True()
		gt.Value(t, got.CostRange).NotNil()
		gt.Bool(t, got.CostRange.Pessimistic.Equal(d(4000))).True()
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Get(context.Background(), 99999)
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("Returned risk is a copy", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{
			ProjectID: "p1",
			Title:     "Scope creep",
			Inherent:  &model.Assessment{Probability: 2, Impact: 2},
		})
		gt.NoError(t, err).Required()

		created.Inherent.Probability = 5
		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Inherent.Probability).Equal(types.Score(2))
	})

	t.Run("List is scoped to the project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, pid := range []types.ProjectID{"p1", "p1", "p2"} {
			_, err := repo.Risk().Create(ctx, &model.Risk{ProjectID: pid, Title: "risk"})
			gt.NoError(t, err).Required()
		}

		risks, err := repo.Risk().List(ctx, "p1")
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)
		gt.Bool(t, risks[0].ID < risks[1].ID).True()
	})

	t.Run("Update replaces mutable fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, &model.Risk{ProjectID: "p1", Title: "Original"})
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)

		changed := created.Copy()
		changed.Title = "Renamed"
		changed.Status = types.RiskStatusAssessed
		changed.Inherent = &model.Assessment{Probability: 4, Impact: 5}
		changed.ProjectID = "elsewhere"

		updated, err := repo.Risk().Update(ctx, changed)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("Renamed")
		gt.Value(t, updated.Status).Equal(types.RiskStatusAssessed)
		gt.Value(t, updated.ProjectID).Equal(types.ProjectID("p1"))
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()
		gt.Bool(t, updated.UpdatedAt.After(created.UpdatedAt)).True()

		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Inherent.Score()).Equal(20)
	})

	t.Run("Update returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Update(context.Background(), &model.Risk{ID: 99999, Title: "ghost"})
		gt.Error(t, err).Is(types.ErrNotFound)
	})
}
