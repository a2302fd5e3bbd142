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

type riskResponseRepository struct {
	mu        sync.RWMutex
	responses map[types.ResponseID]*model.RiskResponse
	// Reference to the risk repository to reject orphan responses
	riskRepo *riskRepository
}

func newRiskResponseRepository(riskRepo *riskRepository) *riskResponseRepository {
	return &riskResponseRepository{
		responses: make(map[types.ResponseID]*model.RiskResponse),
		riskRepo:  riskRepo,
	}
}

func copyResponse(resp *model.RiskResponse) *model.RiskResponse {
	copied := *resp
	if resp.ImplementedAt != nil {
		at := *resp.ImplementedAt
		copied.ImplementedAt = &at
	}
	return &copied
}

func (r *riskResponseRepository) Create(ctx context.Context, response *model.RiskResponse) (*model.RiskResponse, error) {
	if !r.riskRepo.exists(response.RiskID) {
		return nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("risk_id", response.RiskID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.responses[response.ID]; exists {
		return nil, goerr.Wrap(types.ErrAlreadyExists, "response already exists", goerr.V("id", response.ID))
	}

	now := time.Now().UTC()
	created := copyResponse(response)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.responses[created.ID] = created
	return copyResponse(created), nil
}

func (r *riskResponseRepository) Get(ctx context.Context, id types.ResponseID) (*model.RiskResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, exists := r.responses[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", id))
	}
	return copyResponse(resp), nil
}

func (r *riskResponseRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskResponse, error) {
	result, err := r.ListByRisks(ctx, []int64{riskID})
	if err != nil {
		return nil, err
	}
	if responses, ok := result[riskID]; ok {
		return responses, nil
	}
	return []*model.RiskResponse{}, nil
}

func (r *riskResponseRepository) ListByRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.RiskResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[int64][]*model.RiskResponse)
	for _, resp := range r.responses {
		if slices.Contains(riskIDs, resp.RiskID) {
			result[resp.RiskID] = append(result[resp.RiskID], copyResponse(resp))
		}
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
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.responses[response.ID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", response.ID))
	}

	updated := copyResponse(response)
	updated.RiskID = existing.RiskID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.responses[updated.ID] = updated
	return copyResponse(updated), nil
}

func (r *riskResponseRepository) Implement(ctx context.Context, response *model.RiskResponse, risk *model.Risk) (*model.RiskResponse, *model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.riskRepo.mu.Lock()
	defer r.riskRepo.mu.Unlock()

	existingResp, exists := r.responses[response.ID]
	if !exists {
		return nil, nil, goerr.Wrap(types.ErrNotFound, "response not found", goerr.V("id", response.ID))
	}
	if existingResp.RiskID != risk.ID {
		return nil, nil, goerr.Wrap(types.ErrNotFound, "response does not belong to risk",
			goerr.V("id", response.ID), goerr.V("risk_id", risk.ID))
	}
	if existingResp.IsImplemented() {
		return nil, nil, goerr.Wrap(types.ErrInvalidTransition, "response is already implemented", goerr.V("id", response.ID))
	}
	existingRisk, exists := r.riskRepo.risks[risk.ID]
	if !exists {
		return nil, nil, goerr.Wrap(types.ErrNotFound, "risk not found", goerr.V("risk_id", risk.ID))
	}

	now := time.Now().UTC()

	updatedResp := copyResponse(response)
	updatedResp.RiskID = existingResp.RiskID
	updatedResp.CreatedAt = existingResp.CreatedAt
	updatedResp.UpdatedAt = now

	updatedRisk := risk.Copy()
	updatedRisk.ProjectID = existingRisk.ProjectID
	updatedRisk.CreatedAt = existingRisk.CreatedAt
	updatedRisk.UpdatedAt = now

	r.responses[updatedResp.ID] = updatedResp
	r.riskRepo.risks[updatedRisk.ID] = updatedRisk
	return copyResponse(updatedResp), updatedRisk.Copy(), nil
}
