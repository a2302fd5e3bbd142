package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/repository/memory"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func TestProjectUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	t.Run("create and get", func(t *testing.T) {
		created, err := uc.Project.CreateProject(ctx, usecase.CreateProjectInput{
			ID:       "refinery",
			Name:     "  Refinery revamp ",
			Currency: "EUR",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Name).Equal("Refinery revamp")

		got, err := uc.Project.GetProject(ctx, "refinery")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Currency).Equal("EUR")
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := uc.Project.CreateProject(ctx, usecase.CreateProjectInput{ID: "refinery", Name: "Other"})
		gt.Error(t, err).Is(types.ErrAlreadyExists)
	})

	t.Run("validation", func(t *testing.T) {
		testCases := []struct {
			name  string
			input usecase.CreateProjectInput
		}{
			{"empty id", usecase.CreateProjectInput{Name: "x"}},
			{"uppercase id", usecase.CreateProjectInput{ID: "Plant", Name: "x"}},
			{"empty name", usecase.CreateProjectInput{ID: "plant", Name: " "}},
			{"bad currency", usecase.CreateProjectInput{ID: "plant", Name: "x", Currency: "usd"}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := uc.Project.CreateProject(ctx, tc.input)
				gt.Error(t, err).Is(types.ErrInvalidArgument)
			})
		}
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := uc.Project.GetProject(ctx, "nope")
		gt.Error(t, err).Is(types.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		projects, err := uc.Project.ListProjects(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, projects).Length(1)
	})
}

func TestControlAccountUseCase(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	t.Run("list in WBS order", func(t *testing.T) {
		for _, code := range []types.WBSCode{"1.10", "1.2"} {
			_, err := f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
				WBSCode: code,
				Name:    "Account " + code.String(),
				BAC:     d(100),
			})
			gt.NoError(t, err).Required()
		}

		accounts, err := f.uc.ControlAccount.ListControlAccounts(ctx, f.project.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, accounts).Length(3).Required()
		gt.Value(t, accounts[0].WBSCode).Equal(types.WBSCode("1.1"))
		gt.Value(t, accounts[1].WBSCode).Equal(types.WBSCode("1.2"))
		gt.Value(t, accounts[2].WBSCode).Equal(types.WBSCode("1.10"))
	})

	t.Run("duplicate WBS code", func(t *testing.T) {
		_, err := f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
			WBSCode: "1.1",
			Name:    "Duplicate",
		})
		gt.Error(t, err).Is(types.ErrAlreadyExists)
	})

	t.Run("invalid WBS code", func(t *testing.T) {
		_, err := f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
			WBSCode: "1..2",
			Name:    "Broken",
		})
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("negative BAC", func(t *testing.T) {
		_, err := f.uc.ControlAccount.CreateControlAccount(ctx, f.project.ID, usecase.CreateControlAccountInput{
			WBSCode: "2",
			Name:    "Negative",
			BAC:     d(-1),
		})
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.uc.ControlAccount.CreateControlAccount(ctx, "unknown", usecase.CreateControlAccountInput{
			WBSCode: "1",
			Name:    "Orphan",
		})
		gt.Error(t, err).Is(types.ErrNotFound)
	})
}
