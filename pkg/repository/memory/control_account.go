package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type controlAccountRepository struct {
	mu       sync.RWMutex
	accounts map[types.ControlAccountID]*model.ControlAccount
}

func newControlAccountRepository() *controlAccountRepository {
	return &controlAccountRepository{
		accounts: make(map[types.ControlAccountID]*model.ControlAccount),
	}
}

func (r *controlAccountRepository) Create(ctx context.Context, account *model.ControlAccount) (*model.ControlAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return nil, goerr.Wrap(types.ErrAlreadyExists, "control account already exists", goerr.V("id", account.ID))
	}
	for _, existing := range r.accounts {
		if existing.ProjectID == account.ProjectID && existing.WBSCode == account.WBSCode {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "WBS code already used in project",
				goerr.V("project_id", account.ProjectID), goerr.V("wbs_code", account.WBSCode))
		}
	}

	now := time.Now().UTC()
	created := *account
	created.CreatedAt = now
	created.UpdatedAt = now

	r.accounts[created.ID] = &created
	result := created
	return &result, nil
}

func (r *controlAccountRepository) Get(ctx context.Context, id types.ControlAccountID) (*model.ControlAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "control account not found", goerr.V("id", id))
	}

	copied := *account
	return &copied, nil
}

func (r *controlAccountRepository) ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ControlAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*model.ControlAccount, 0)
	for _, account := range r.accounts {
		if account.ProjectID != projectID {
			continue
		}
		copied := *account
		accounts = append(accounts, &copied)
	}

	slices.SortFunc(accounts, func(a, b *model.ControlAccount) int {
		return a.WBSCode.Compare(b.WBSCode)
	})
	return accounts, nil
}
