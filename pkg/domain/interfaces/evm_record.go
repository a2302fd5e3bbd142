package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// EVMRecordRepository stores period records. There is no update or delete:
// records are immutable once appended.
type EVMRecordRepository interface {
	// Append stores a record after the latest one of its control account and
	// fills its cumulative fields. Fails with ErrOutOfOrder unless DataDate is
	// strictly after the latest stored DataDate.
	Append(ctx context.Context, record *model.EVMRecord) (*model.EVMRecord, error)

	// List retrieves all records of a control account ordered by DataDate
	List(ctx context.Context, accountID types.ControlAccountID) ([]*model.EVMRecord, error)
}
