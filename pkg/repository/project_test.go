package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, &model.Project{
			ID:       "lng-train-2",
			Name:     "LNG Train 2",
			Currency: "USD",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(types.ProjectID("lng-train-2"))
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Project().Get(ctx, "lng-train-2")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("LNG Train 2")
		gt.Value(t, got.Currency).Equal("USD")
		gt.Bool(t, got.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Project().Create(ctx, &model.Project{ID: "dup", Name: "first"})
		gt.NoError(t, err).Required()

		_, err = repo.Project().Create(ctx, &model.Project{ID: "dup", Name: "second"})
		gt.Error(t, err).Is(types.ErrAlreadyExists)
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Project().Get(context.Background(), "missing")
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("List is ordered by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		projects, err := repo.Project().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, projects).Length(0)

		for _, id := range []types.ProjectID{"refinery", "cracker", "pipeline"} {
			_, err := repo.Project().Create(ctx, &model.Project{ID: id, Name: id.String()})
			gt.NoError(t, err).Required()
		}

		projects, err = repo.Project().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, projects).Length(3)
		gt.Value(t, projects[0].ID).Equal(types.ProjectID("cracker"))
		gt.Value(t, projects[2].ID).Equal(types.ProjectID("refinery"))
	})
}
