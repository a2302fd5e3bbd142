package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
	}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[project.ID]; exists {
		return nil, goerr.Wrap(types.ErrAlreadyExists, "project already exists", goerr.V("id", project.ID))
	}

	now := time.Now().UTC()
	created := *project
	created.CreatedAt = now
	created.UpdatedAt = now

	r.projects[created.ID] = &created
	result := created
	return &result, nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	copied := *project
	return &copied, nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]*model.Project, 0, len(r.projects))
	for _, project := range r.projects {
		copied := *project
		projects = append(projects, &copied)
	}

	slices.SortFunc(projects, func(a, b *model.Project) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return projects, nil
}
