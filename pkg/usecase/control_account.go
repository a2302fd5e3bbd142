package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

type ControlAccountUseCase struct {
	repo interfaces.Repository
}

func NewControlAccountUseCase(repo interfaces.Repository) *ControlAccountUseCase {
	return &ControlAccountUseCase{repo: repo}
}

// CreateControlAccountInput holds the fields of a new control account
type CreateControlAccountInput struct {
	WBSCode types.WBSCode   `json:"wbs_code"`
	Name    string          `json:"name"`
	Manager string          `json:"manager"`
	BAC     decimal.Decimal `json:"bac"`
}

func (in CreateControlAccountInput) validate() error {
	if err := in.WBSCode.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Name) == "" {
		return goerr.Wrap(types.ErrInvalidArgument, "control account name is required", goerr.V(types.FieldKey, "name"))
	}
	if in.BAC.IsNegative() {
		return goerr.Wrap(types.ErrInvalidArgument, "BAC must not be negative",
			goerr.V(types.FieldKey, "bac"), goerr.V(types.ValueKey, in.BAC.String()))
	}
	return nil
}

func (uc *ControlAccountUseCase) CreateControlAccount(ctx context.Context, projectID types.ProjectID, in CreateControlAccountInput) (*model.ControlAccount, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}

	created, err := uc.repo.ControlAccount().Create(ctx, &model.ControlAccount{
		ID:        model.NewControlAccountID(),
		ProjectID: projectID,
		WBSCode:   in.WBSCode,
		Name:      strings.TrimSpace(in.Name),
		Manager:   in.Manager,
		BAC:       in.BAC,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create control account",
			goerr.V("project_id", projectID), goerr.V("wbs_code", in.WBSCode))
	}
	return created, nil
}

func (uc *ControlAccountUseCase) GetControlAccount(ctx context.Context, id types.ControlAccountID) (*model.ControlAccount, error) {
	account, err := uc.repo.ControlAccount().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get control account", goerr.V("control_account_id", id))
	}
	return account, nil
}

func (uc *ControlAccountUseCase) ListControlAccounts(ctx context.Context, projectID types.ProjectID) ([]*model.ControlAccount, error) {
	if _, err := uc.repo.Project().Get(ctx, projectID); err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", projectID))
	}
	accounts, err := uc.repo.ControlAccount().ListByProject(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list control accounts", goerr.V("project_id", projectID))
	}
	return accounts, nil
}
