package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectDocument struct {
	ID             string    `firestore:"id"`
	Name           string    `firestore:"name"`
	Description    string    `firestore:"description"`
	Currency       string    `firestore:"currency"`
	SlackChannelID string    `firestore:"slack_channel_id"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func (d *projectDocument) toModel() *model.Project {
	return &model.Project{
		ID:             types.ProjectID(d.ID),
		Name:           d.Name,
		Description:    d.Description,
		Currency:       d.Currency,
		SlackChannelID: d.SlackChannelID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *projectRepository) projectsCollection() string {
	return CollectionName(r.collectionPrefix, CollectionProjects)
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) (*model.Project, error) {
	now := time.Now().UTC()
	doc := &projectDocument{
		ID:             project.ID.String(),
		Name:           project.Name,
		Description:    project.Description,
		Currency:       project.Currency,
		SlackChannelID: project.SlackChannelID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	docRef := r.client.Collection(r.projectsCollection()).Doc(doc.ID)
	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "project already exists", goerr.V("id", project.ID))
		}
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("id", project.ID))
	}

	return doc.toModel(), nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	doc, err := r.client.Collection(r.projectsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var projectDoc projectDocument
	if err := doc.DataTo(&projectDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("id", id))
	}
	return projectDoc.toModel(), nil
}

func (r *projectRepository) List(ctx context.Context) ([]*model.Project, error) {
	iter := r.client.Collection(r.projectsCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	projects := make([]*model.Project, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate projects")
		}

		var projectDoc projectDocument
		if err := doc.DataTo(&projectDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal project", goerr.V("docID", doc.Ref.ID))
		}
		projects = append(projects, projectDoc.toModel())
	}

	return projects, nil
}
