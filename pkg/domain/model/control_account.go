package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// ControlAccount is the cost and schedule accountability node of a WBS
type ControlAccount struct {
	ID        types.ControlAccountID `json:"id"`
	ProjectID types.ProjectID        `json:"project_id"`
	WBSCode   types.WBSCode          `json:"wbs_code"`
	Name      string                 `json:"name"`
	Manager   string                 `json:"manager,omitempty"`
	BAC       decimal.Decimal        `json:"bac"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewControlAccountID generates a new control account ID
func NewControlAccountID() types.ControlAccountID {
	return types.ControlAccountID(uuid.New().String())
}
