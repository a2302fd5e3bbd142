package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// RiskResponseRepository defines the interface for RiskResponse data access
type RiskResponseRepository interface {
	// Create attaches a new response to its risk
	Create(ctx context.Context, response *model.RiskResponse) (*model.RiskResponse, error)

	// Get retrieves a response by ID
	Get(ctx context.Context, id types.ResponseID) (*model.RiskResponse, error)

	// ListByRisk retrieves the responses of a risk ordered by creation time
	ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskResponse, error)

	// ListByRisks retrieves responses for multiple risks.
	// Returns a map of risk ID to list of responses.
	ListByRisks(ctx context.Context, riskIDs []int64) (map[int64][]*model.RiskResponse, error)

	// Update replaces the mutable fields of an existing response
	Update(ctx context.Context, response *model.RiskResponse) (*model.RiskResponse, error)

	// Implement stores an implemented response together with its risk's new
	// residual assessment. Either both writes land or neither does. A response
	// already implemented in the store returns ErrInvalidTransition.
	Implement(ctx context.Context, response *model.RiskResponse, risk *model.Risk) (*model.RiskResponse, *model.Risk, error)
}
