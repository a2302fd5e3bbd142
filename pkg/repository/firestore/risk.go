package firestore

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assessmentDocument struct {
	Probability int `firestore:"probability"`
	Impact      int `firestore:"impact"`
}

func newAssessmentDocument(a *model.Assessment) *assessmentDocument {
	if a == nil {
		return nil
	}
	return &assessmentDocument{Probability: a.Probability.Int(), Impact: a.Impact.Int()}
}

func (d *assessmentDocument) toModel() *model.Assessment {
	if d == nil {
		return nil
	}
	return &model.Assessment{Probability: types.Score(d.Probability), Impact: types.Score(d.Impact)}
}

type riskDocument struct {
	ID              int64               `firestore:"id"`
	ProjectID       string              `firestore:"project_id"`
	Title           string              `firestore:"title"`
	Description     string              `firestore:"description"`
	Owner           string              `firestore:"owner"`
	Status          string              `firestore:"status"`
	Inherent        *assessmentDocument `firestore:"inherent"`
	Residual        *assessmentDocument `firestore:"residual"`
	CostImpact      string              `firestore:"cost_impact"`
	CostOptimistic  string              `firestore:"cost_optimistic"`
	CostPessimistic string              `firestore:"cost_pessimistic"`
	HasCostRange    bool                `firestore:"has_cost_range"`
	ClosureReason   string              `firestore:"closure_reason"`
	CreatedAt       time.Time           `firestore:"created_at"`
	UpdatedAt       time.Time           `firestore:"updated_at"`
}

func newRiskDocument(r *model.Risk) *riskDocument {
	doc := &riskDocument{
		ID:            r.ID,
		ProjectID:     r.ProjectID.String(),
		Title:         r.Title,
		Description:   r.Description,
		Owner:         r.Owner,
		Status:        r.Status.Normalize().String(),
		Inherent:      newAssessmentDocument(r.Inherent),
		Residual:      newAssessmentDocument(r.Residual),
		CostImpact:    r.CostImpact.String(),
		ClosureReason: r.ClosureReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CostRange != nil {
		doc.HasCostRange = true
		doc.CostOptimistic = r.CostRange.Optimistic.String()
		doc.CostPessimistic = r.CostRange.Pessimistic.String()
	}
	return doc
}

func (d *riskDocument) toModel() (*model.Risk, error) {
	cost, err := parseAmount("cost_impact", d.CostImpact)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("id", d.ID))
	}

	risk := &model.Risk{
		ID:            d.ID,
		ProjectID:     types.ProjectID(d.ProjectID),
		Title:         d.Title,
		Description:   d.Description,
		Owner:         d.Owner,
		Status:        types.RiskStatus(d.Status),
		Inherent:      d.Inherent.toModel(),
		Residual:      d.Residual.toModel(),
		CostImpact:    cost,
		ClosureReason: d.ClosureReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}

	if d.HasCostRange {
		low, err := parseAmount("cost_optimistic", d.CostOptimistic)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("id", d.ID))
		}
		high, err := parseAmount("cost_pessimistic", d.CostPessimistic)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("id", d.ID))
		}
		risk.CostRange = &model.CostRange{Optimistic: low, Pessimistic: high}
	}

	return risk, nil
}

func formatRiskID(id int64) string {
	return strconv.FormatInt(id, 10)
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) risksCollection() string {
	return CollectionName(r.collectionPrefix, CollectionRisks)
}

func (r *riskRepository) counterCollection() string {
	return CollectionName(r.collectionPrefix, CollectionCounters)
}

func (r *riskRepository) riskCounterDoc() string {
	return "risk_counter"
}

func (r *riskRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.riskCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]any{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	id, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := risk.Copy()
	created.ID = id
	created.Status = created.Status.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.risksCollection()).Doc(formatRiskID(id))
	if _, err := docRef.Set(ctx, newRiskDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", id))
	}

	return created, nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	doc, err := r.client.Collection(r.risksCollection()).Doc(formatRiskID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}
	return riskDoc.toModel()
}

func (r *riskRepository) List(ctx context.Context, projectID types.ProjectID) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Where("project_id", "==", projectID.String()).Documents(ctx)
	defer iter.Stop()

	risks := make([]*model.Risk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks", goerr.V("project_id", projectID))
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("docID", doc.Ref.ID))
		}
		risk, err := riskDoc.toModel()
		if err != nil {
			return nil, err
		}
		risks = append(risks, risk)
	}

	slices.SortFunc(risks, func(a, b *model.Risk) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(formatRiskID(risk.ID))
	var updated *model.Risk

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", risk.ID))
		}

		var existing riskDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", risk.ID))
		}

		updated = risk.Copy()
		updated.ProjectID = types.ProjectID(existing.ProjectID)
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, newRiskDocument(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}

	return updated, nil
}
