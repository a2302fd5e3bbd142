package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func newAccount(projectID types.ProjectID, code types.WBSCode, bac int64) *model.ControlAccount {
	return &model.ControlAccount{
		ID:        model.NewControlAccountID(),
		ProjectID: projectID,
		WBSCode:   code,
		Name:      "account " + code.String(),
		BAC:       d(bac),
	}
}

func runControlAccountRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get keep BAC exact", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		account := newAccount("p1", "1.2", 0)
		account.BAC = d(123456789).Shift(-2)
		created, err := repo.ControlAccount().Create(ctx, account)
		gt.NoError(t, err).Required()

		got, err := repo.ControlAccount().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.WBSCode).Equal(types.WBSCode("1.2"))
		gt.Value(t, got.BAC.String()).Equal("1234567.89")
	})

	t.Run("Create rejects duplicate WBS code in project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.ControlAccount().Create(ctx, newAccount("p1", "1.1", 100))
		gt.NoError(t, err).Required()

		_, err = repo.ControlAccount().Create(ctx, newAccount("p1", "1.1", 200))
		gt.Error(t, err).Is(types.ErrAlreadyExists)

		// same code in another project is fine
		_, err = repo.ControlAccount().Create(ctx, newAccount("p2", "1.1", 200))
		gt.NoError(t, err)
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.ControlAccount().Get(context.Background(), model.NewControlAccountID())
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("ListByProject orders by WBS code", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, code := range []types.WBSCode{"1.10", "1.2", "1", "2"} {
			_, err := repo.ControlAccount().Create(ctx, newAccount("p1", code, 100))
			gt.NoError(t, err).Required()
		}
		_, err := repo.ControlAccount().Create(ctx, newAccount("other", "1", 100))
		gt.NoError(t, err).Required()

		accounts, err := repo.ControlAccount().ListByProject(ctx, "p1")
		gt.NoError(t, err).Required()
		gt.Array(t, accounts).Length(4)

		codes := make([]types.WBSCode, 0, len(accounts))
		for _, a := range accounts {
			codes = append(codes, a.WBSCode)
		}
		gt.Value(t, codes).Equal([]types.WBSCode{"1", "1.2", "1.10", "2"})
	})
}
