package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// ControlAccountRepository defines the interface for ControlAccount data access
type ControlAccountRepository interface {
	// Create stores a new control account. Fails with ErrAlreadyExists if the
	// project already has an account with the same WBS code.
	Create(ctx context.Context, account *model.ControlAccount) (*model.ControlAccount, error)

	// Get retrieves a control account by ID
	Get(ctx context.Context, id types.ControlAccountID) (*model.ControlAccount, error)

	// ListByProject retrieves the accounts of a project ordered by WBS code
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ControlAccount, error)
}
