package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type ProjectUseCase struct {
	repo interfaces.Repository
}

func NewProjectUseCase(repo interfaces.Repository) *ProjectUseCase {
	return &ProjectUseCase{repo: repo}
}

// CreateProjectInput holds the fields of a new project
type CreateProjectInput struct {
	ID             types.ProjectID `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Currency       string          `json:"currency"`
	SlackChannelID string          `json:"slack_channel_id"`
}

func (in CreateProjectInput) validate() error {
	if err := in.ID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Name) == "" {
		return goerr.Wrap(types.ErrInvalidArgument, "project name is required", goerr.V(types.FieldKey, "name"))
	}
	if in.Currency != "" && !currencyPattern.MatchString(in.Currency) {
		return goerr.Wrap(types.ErrInvalidArgument, "currency must be an ISO 4217 code",
			goerr.V(types.FieldKey, "currency"), goerr.V(types.ValueKey, in.Currency))
	}
	return nil
}

func (uc *ProjectUseCase) CreateProject(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Project().Create(ctx, &model.Project{
		ID:             in.ID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Currency:       in.Currency,
		SlackChannelID: in.SlackChannelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("project_id", in.ID))
	}
	return created, nil
}

func (uc *ProjectUseCase) GetProject(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	project, err := uc.repo.Project().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("project_id", id))
	}
	return project, nil
}

func (uc *ProjectUseCase) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := uc.repo.Project().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return projects, nil
}
