package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// ProjectRepository defines the interface for Project data access
type ProjectRepository interface {
	// Create stores a new project. Fails with ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, project *model.Project) (*model.Project, error)

	// Get retrieves a project by ID
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// List retrieves all projects ordered by ID
	List(ctx context.Context) ([]*model.Project, error)
}
