package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/evm"
)

type evmRecordRepository struct {
	mu sync.RWMutex
	// records per account, kept in DataDate order by Append
	records map[types.ControlAccountID][]*model.EVMRecord
}

func newEVMRecordRepository() *evmRecordRepository {
	return &evmRecordRepository{
		records: make(map[types.ControlAccountID][]*model.EVMRecord),
	}
}

func (r *evmRecordRepository) Append(ctx context.Context, record *model.EVMRecord) (*model.EVMRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *record
	existing := r.records[created.ControlAccountID]
	if err := evm.Accumulate(existing, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to append EVM record",
			goerr.V("control_account_id", created.ControlAccountID))
	}
	created.CreatedAt = time.Now().UTC()

	r.records[created.ControlAccountID] = append(existing, &created)
	result := created
	return &result, nil
}

func (r *evmRecordRepository) List(ctx context.Context, accountID types.ControlAccountID) ([]*model.EVMRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.records[accountID]
	records := make([]*model.EVMRecord, 0, len(stored))
	for _, record := range stored {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}
