package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type controlAccountDocument struct {
	ID        string    `firestore:"id"`
	ProjectID string    `firestore:"project_id"`
	WBSCode   string    `firestore:"wbs_code"`
	Name      string    `firestore:"name"`
	Manager   string    `firestore:"manager"`
	BAC       string    `firestore:"bac"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (d *controlAccountDocument) toModel() (*model.ControlAccount, error) {
	bac, err := parseAmount("bac", d.BAC)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode control account", goerr.V("id", d.ID))
	}
	return &model.ControlAccount{
		ID:        types.ControlAccountID(d.ID),
		ProjectID: types.ProjectID(d.ProjectID),
		WBSCode:   types.WBSCode(d.WBSCode),
		Name:      d.Name,
		Manager:   d.Manager,
		BAC:       bac,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type controlAccountRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newControlAccountRepository(client *firestore.Client) *controlAccountRepository {
	return &controlAccountRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *controlAccountRepository) accountsCollection() string {
	return CollectionName(r.collectionPrefix, CollectionControlAccounts)
}

func (r *controlAccountRepository) Create(ctx context.Context, account *model.ControlAccount) (*model.ControlAccount, error) {
	now := time.Now().UTC()
	doc := &controlAccountDocument{
		ID:        account.ID.String(),
		ProjectID: account.ProjectID.String(),
		WBSCode:   account.WBSCode.String(),
		Name:      account.Name,
		Manager:   account.Manager,
		BAC:       account.BAC.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	col := r.client.Collection(r.accountsCollection())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := col.Where("project_id", "==", doc.ProjectID).Where("wbs_code", "==", doc.WBSCode).Limit(1)
		dups, err := tx.Documents(query).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to check WBS code")
		}
		if len(dups) > 0 {
			return goerr.Wrap(types.ErrAlreadyExists, "WBS code already used in project",
				goerr.V("project_id", doc.ProjectID), goerr.V("wbs_code", doc.WBSCode))
		}
		return tx.Create(col.Doc(doc.ID), doc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "control account already exists", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create control account", goerr.V("id", doc.ID))
	}

	return doc.toModel()
}

func (r *controlAccountRepository) Get(ctx context.Context, id types.ControlAccountID) (*model.ControlAccount, error) {
	doc, err := r.client.Collection(r.accountsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "control account not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get control account", goerr.V("id", id))
	}

	var accountDoc controlAccountDocument
	if err := doc.DataTo(&accountDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal control account", goerr.V("id", id))
	}
	return accountDoc.toModel()
}

func (r *controlAccountRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ControlAccount, error) {
	iter := r.client.Collection(r.accountsCollection()).Where("project_id", "==", projectID.String()).Documents(ctx)
	defer iter.Stop()

	accounts := make([]*model.ControlAccount, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate control accounts", goerr.V("project_id", projectID))
		}

		var accountDoc controlAccountDocument
		if err := doc.DataTo(&accountDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control account", goerr.V("docID", doc.Ref.ID))
		}
		account, err := accountDoc.toModel()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	// lexical order from Firestore would put 1.10 before 1.2
	slices.SortFunc(accounts, func(a, b *model.ControlAccount) int {
		return a.WBSCode.Compare(b.WBSCode)
	})
	return accounts, nil
}
