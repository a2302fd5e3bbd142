package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// RiskResponse is a planned treatment of a risk. Implementing it replaces the
// risk's residual assessment with the expected post-response scores.
type RiskResponse struct {
	ID                  types.ResponseID       `json:"id"`
	RiskID              int64                  `json:"risk_id"`
	Strategy            types.ResponseStrategy `json:"strategy"`
	Description         string                 `json:"description,omitempty"`
	ExpectedProbability types.Score            `json:"expected_probability"`
	ExpectedImpact      types.Score            `json:"expected_impact"`
	Cost                decimal.Decimal        `json:"cost"`
	Owner               string                 `json:"owner,omitempty"`
	DueDate             time.Time              `json:"due_date,omitzero"`
	Status              types.ResponseStatus   `json:"status"`
	ImplementedAt       *time.Time             `json:"implemented_at,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewResponseID generates a new response ID
func NewResponseID() types.ResponseID {
	return types.ResponseID(uuid.New().String())
}

// Expected returns the post-response assessment
func (r *RiskResponse) Expected() Assessment {
	return Assessment{Probability: r.ExpectedProbability, Impact: r.ExpectedImpact}
}

// IsImplemented reports whether the response has been carried out
func (r *RiskResponse) IsImplemented() bool {
	return r.Status == types.ResponseStatusImplemented
}
