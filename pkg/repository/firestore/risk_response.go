package firestore

import (
	"cmp"
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

type riskResponseDocument struct {
	ID                  string     `firestore:"id"`
	RiskID              int64      `firestore:"risk_id"`
	Strategy            string     `firestore:"strategy"`
	Description         string     `firestore:"description"`
	ExpectedProbability int        `firestore:"expected_probability"`
	ExpectedImpact      int        `firestore:"expected_impact"`
	Cost                string     `firestore:"cost"`
	Owner               string     `firestore:"owner"`
	DueDate             time.Time  `firestore:"due_date"`
	Status              string     `firestore:"status"`
	ImplementedAt       *time.Time `firestore:"implemented_at"`
	CreatedAt           time.Time  `firestore:"created_at"`
	UpdatedAt           time.Time  `firestore:"updated_at"`
}

func newRiskResponseDocument(r *model.RiskResponse) *riskResponseDocument {
	return &riskResponseDocument{
		ID:                  r.ID.String(),
		RiskID:              r.RiskID,
		Strategy:            r.Strategy.String(),
		Description:         r.Description,
		ExpectedProbability: r.ExpectedProbability.Int(),
		ExpectedImpact:      r.ExpectedImpact.Int(),
		Cost:                r.Cost.String(),
		Owner:               r.Owner,
		DueDate:             r.DueDate,
		Status:              r.Status.String(),
		ImplementedAt:       r.ImplementedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func (d *riskResponseDocument) toModel() (*model.RiskResponse, error) {
	cost, err := parseAmount("cost", d.Cost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.V("id", d.ID))
	}
	return &model.RiskResponse{
		ID:                  types.ResponseID(d.ID),
		RiskID:              d.RiskID,
		Strategy:            types.ResponseStrategy(d.Strategy),
		Description:         d.Description,
		ExpectedProbability: types.Score(d.ExpectedProbability),
		ExpectedImpact:      types.Score(d.ExpectedImpact),
		Cost:                cost,
		Owner:               d.Owner,
		DueDate:             d.DueDate,
		Status:              types.ResponseStatus(d.Status),
		ImplementedAt:       d.ImplementedAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}, nil
}

type riskResponseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskResponseRepository(client *firestore.Client) *riskResponseRepository {
	return &riskResponseRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskResponseRepository) riskResponsesCollection() string {
	return CollectionName(r.collectionPrefix, CollectionRiskResponses)
}

func (r *riskResponseRepository) risksCollection() string {
	return CollectionName(r.collectionPrefix, CollectionRisks)
}

func (r *riskResponseRepository) Create(ctx context.Context, response *model.RiskResponse) (*model.RiskResponse, error) {
	now := time.Now().UTC()
	created := *response
	created.CreatedAt = now
	created.UpdatedAt = now

	riskRef := r.client.Collection(r.risksCollection()).Doc(formatRiskID(response.RiskID))
	docRef := r.client.Collection(r.riskResponsesCollection()).Doc(created.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(riskRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("risk_id", response.RiskID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", response.RiskID))
		}
		return tx.Create(docRef, newRiskResponseDocument(&created))
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "response already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create response", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *riskResponseRepository) Get(ctx context.Context, id types.ResponseID) (*model.RiskResponse, error) {
	doc, err := r.client.Collection(r.riskResponsesCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("id", id))
	}

	var respDoc riskResponseDocument
	if err := doc.DataTo(&respDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", id))
	}
	return respDoc.toModel()
}

func (r *riskResponseRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskResponse, error) {
	result, err := r.ListByRisks(ctx, []int64{riskID})
	if err != nil {
		return nil, err
	}
	return result[riskID], nil
}

func (r *riskResponseRepository) ListByRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.RiskResponse, error) {
	result := make(map[int64][]*model.RiskResponse)
	for _, riskID := range riskIDs {
		result[riskID] = make([]*model.RiskResponse, 0)
	}

	// Firestore has a limit of 30 items in an IN query, so we need to batch
	for batch := range slices.Chunk(riskIDs, 30) {
		iter := r.client.Collection(r.riskResponsesCollection()).Where("risk_id", "in", batch).Documents(ctx)

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate responses")
			}

			var respDoc riskResponseDocument
			if err := doc.DataTo(&respDoc); err != nil {
				iter.Stop()
				return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("docID", doc.Ref.ID))
			}
			resp, err := respDoc.toModel()
			if err != nil {
				iter.Stop()
				return nil, err
			}
			result[resp.RiskID] = append(result[resp.RiskID], resp)
		}
		iter.Stop()
	}

	for _, responses := range result {
		slices.SortFunc(responses, func(a, b *model.RiskResponse) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return result, nil
}

func (r *riskResponseRepository) Update(ctx context.Context, response *model.RiskResponse) (*model.RiskResponse, error) {
	docRef := r.client.Collection(r.riskResponsesCollection()).Doc(response.ID.String())
	var updated model.RiskResponse

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", response.ID))
			}
			return goerr.Wrap(err, "failed to get response", goerr.V("id", response.ID))
		}

		var existing riskResponseDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", response.ID))
		}

		updated = *response
		updated.RiskID = existing.RiskID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, newRiskResponseDocument(&updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update response", goerr.V("id", response.ID))
	}

	return &updated, nil
}

func (r *riskResponseRepository) Implement(ctx context.Context, response *model.RiskResponse, risk *model.Risk) (*model.RiskResponse, *model.Risk, error) {
	respRef := r.client.Collection(r.riskResponsesCollection()).Doc(response.ID.String())
	riskRef := r.client.Collection(r.risksCollection()).Doc(formatRiskID(risk.ID))
	var updatedResp model.RiskResponse
	var updatedRisk *model.Risk

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		respSnap, err := tx.Get(respRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", response.ID))
			}
			return goerr.Wrap(err, "failed to get response", goerr.V("id", response.ID))
		}
		riskSnap, err := tx.Get(riskRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("risk_id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", risk.ID))
		}

		var existingResp riskResponseDocument
		if err := respSnap.DataTo(&existingResp); err != nil {
			return goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", response.ID))
		}
		if existingResp.RiskID != risk.ID {
			return goerr.Wrap(types.ErrNotFound, "response does not belong to risk",
				goerr.V("id", response.ID), goerr.V("risk_id", risk.ID))
		}
		if types.ResponseStatus(existingResp.Status) == types.ResponseStatusImplemented {
			return goerr.Wrap(types.ErrInvalidTransition, "response is already implemented", goerr.V("id", response.ID))
		}

		var existingRisk riskDocument
		if err := riskSnap.DataTo(&existingRisk); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk", goerr.V("risk_id", risk.ID))
		}

		now := time.Now().UTC()

		updatedResp = *response
		updatedResp.RiskID = existingResp.RiskID
		updatedResp.CreatedAt = existingResp.CreatedAt
		updatedResp.UpdatedAt = now

		updatedRisk = risk.Copy()
		updatedRisk.ProjectID = types.ProjectID(existingRisk.ProjectID)
		updatedRisk.CreatedAt = existingRisk.CreatedAt
		updatedRisk.UpdatedAt = now

		if err := tx.Set(respRef, newRiskResponseDocument(&updatedResp)); err != nil {
			return goerr.Wrap(err, "failed to set response", goerr.V("id", response.ID))
		}
		return tx.Set(riskRef, newRiskDocument(updatedRisk))
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to implement response", goerr.V("id", response.ID))
	}

	return &updatedResp, updatedRisk, nil
}
