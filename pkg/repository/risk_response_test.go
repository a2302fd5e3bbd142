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

func newResponse(riskID int64) *model.RiskResponse {
	return &model.RiskResponse{
		ID:                  model.NewResponseID(),
		RiskID:              riskID,
		Strategy:            types.StrategyMitigate,
		Description:         "pre-order long lead items",
		ExpectedProbability: 2,
		ExpectedImpact:      3,
		Cost:                d(5000),
		Status:              types.ResponseStatusPlanned,
	}
}

func runRiskResponseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	createRisk := func(t *testing.T, repo interfaces.Repository) *model.Risk {
		risk, err := repo.Risk().Create(context.Background(), &model.Risk{ProjectID: "p1", Title: "risk"})
		gt.NoError(t, err).Required()
		return risk
	}

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		risk := createRisk(t, repo)

		created, err := repo.RiskResponse().Create(ctx, newResponse(risk.ID))
		gt.NoError(t, err).Required()
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.RiskResponse().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RiskID).Equal(risk.ID)
		gt.Value(t, got.Strategy).Equal(types.StrategyMitigate)
		gt.Value(t, got.Expected()).Equal(model.Assessment{Probability: 2, Impact: 3})
		gt.Bool(t, got.Cost.Equal(d(5000))).True()
		gt.Value(t, got.ImplementedAt).Nil()
	})

	t.Run("Create requires an existing risk", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.RiskResponse().Create(context.Background(), newResponse(99999))
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.RiskResponse().Get(context.Background(), model.NewResponseID())
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("ListByRisk and ListByRisks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		r1 := createRisk(t, repo)
		r2 := createRisk(t, repo)
		r3 := createRisk(t, repo)

		for _, riskID := range []int64{r1.ID, r1.ID, r2.ID} {
			_, err := repo.RiskResponse().Create(ctx, newResponse(riskID))
			gt.NoError(t, err).Required()
		}

		list, err := repo.RiskResponse().ListByRisk(ctx, r1.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)

		none, err := repo.RiskResponse().ListByRisk(ctx, r3.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)

		byRisk, err := repo.RiskResponse().ListByRisks(ctx, []int64{r1.ID, r2.ID})
		gt.NoError(t, err).Required()
		gt.Array(t, byRisk[r1.ID]).Length(2)
		gt.Array(t, byRisk[r2.ID]).Length(1)
	})

	t.Run("Update marks implemented", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		risk := createRisk(t, repo)

		created, err := repo.RiskResponse().Create(ctx, newResponse(risk.ID))
		gt.NoError(t, err).Required()

		now := time.Now().UTC().Truncate(time.Millisecond)
		created.Status = types.ResponseStatusImplemented
		created.ImplementedAt = &now
		created.RiskID = 424242

		updated, err := repo.RiskResponse().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Bool(t, updated.IsImplemented()).True()
		gt.Value(t, updated.RiskID).Equal(risk.ID)

		got, err := repo.RiskResponse().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.IsImplemented()).True()
		gt.Value(t, got.ImplementedAt).NotNil()
		gt.Bool(t, got.ImplementedAt.Equal(now)).True()
	})

	t.Run("Implement writes response and residual together", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		risk := createRisk(t, repo)

		created, err := repo.RiskResponse().Create(ctx, newResponse(risk.ID))
		gt.NoError(t, err).Required()

		now := time.Now().UTC().Truncate(time.Millisecond)
		created.Status = types.ResponseStatusImplemented
		created.ImplementedAt = &now
		residual := created.Expected()
		risk.Residual = &residual

		resp, updated, err := repo.RiskResponse().Implement(ctx, created, risk)
		gt.NoError(t, err).Required()
		gt.Bool(t, resp.IsImplemented()).True()
		gt.Value(t, updated.Residual).NotNil()
		gt.Value(t, updated.ProjectID).Equal(types.ProjectID("p1"))

		got, err := repo.Risk().Get(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Residual).NotNil()
		gt.Value(t, *got.Residual).Equal(model.Assessment{Probability: 2, Impact: 3})

		_, _, err = repo.RiskResponse().Implement(ctx, created, risk)
		gt.Error(t, err).Is(types.ErrInvalidTransition)
	})

	t.Run("Implement leaves response untouched when the risk is missing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		risk := createRisk(t, repo)

		created, err := repo.RiskResponse().Create(ctx, newResponse(risk.ID))
		gt.NoError(t, err).Required()

		now := time.Now().UTC()
		created.Status = types.ResponseStatusImplemented
		created.ImplementedAt = &now

		_, _, err = repo.RiskResponse().Implement(ctx, created, &model.Risk{ID: risk.ID + 1000, ProjectID: "p1"})
		gt.Error(t, err).Is(types.ErrNotFound)

		got, err := repo.RiskResponse().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.IsImplemented()).False()
		gt.Value(t, got.ImplementedAt).Nil()
	})
}
