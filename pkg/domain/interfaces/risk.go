package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// RiskRepository defines the interface for Risk data access. Risks are never
// deleted; closing one is a status update.
type RiskRepository interface {
	// Create creates a new risk with auto-generated ID
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// List retrieves the risks of a project ordered by ID
	List(ctx context.Context, projectID types.ProjectID) ([]*model.Risk, error)

	// Update replaces the mutable fields of an existing risk
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)
}
