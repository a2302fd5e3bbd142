package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Assessment is a probability and impact rating on the 1-5 scale
type Assessment struct {
	Probability types.Score `json:"probability"`
	Impact      types.Score `json:"impact"`
}

// Validate checks both scores
func (a Assessment) Validate() error {
	if err := a.Probability.Validate(); err != nil {
		return err
	}
	return a.Impact.Validate()
}

// Score is probability x impact, from 1 to 25
func (a Assessment) Score() int {
	return a.Probability.Int() * a.Impact.Int()
}

// CostRange bounds the cost impact estimate for triangular sampling. The
// estimate itself is the mode.
type CostRange struct {
	Optimistic  decimal.Decimal `json:"optimistic"`
	Pessimistic decimal.Decimal `json:"pessimistic"`
}

type Risk struct {
	ID            int64            `json:"id"`
	ProjectID     types.ProjectID  `json:"project_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Owner         string           `json:"owner,omitempty"`
	Status        types.RiskStatus `json:"status"`
	Inherent      *Assessment      `json:"inherent,omitempty"`
	Residual      *Assessment      `json:"residual,omitempty"`
	CostImpact    decimal.Decimal  `json:"cost_impact"`
	CostRange     *CostRange       `json:"cost_range,omitempty"`
	ClosureReason string           `json:"closure_reason,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsActive reports whether the risk still counts toward exposure
func (r *Risk) IsActive() bool {
	return !r.Status.Normalize().IsClosed()
}

// Effective returns the residual assessment when one exists, otherwise the
// inherent one. Nil means the risk has not been assessed.
func (r *Risk) Effective() *Assessment {
	if r.Residual != nil {
		return r.Residual
	}
	return r.Inherent
}

// Score returns the effective probability x impact, or 0 when unassessed
func (r *Risk) Score() int {
	if a := r.Effective(); a != nil {
		return a.Score()
	}
	return 0
}

// ExpectedCost is the estimate, or the triangular mean when a range is set
func (r *Risk) ExpectedCost() decimal.Decimal {
	if r.CostRange == nil {
		return r.CostImpact
	}
	return r.CostRange.Optimistic.Add(r.CostImpact).Add(r.CostRange.Pessimistic).Div(decimal.NewFromInt(3))
}

// Copy returns a deep copy of the risk
func (r *Risk) Copy() *Risk {
	copied := *r
	if r.Inherent != nil {
		a := *r.Inherent
		copied.Inherent = &a
	}
	if r.Residual != nil {
		a := *r.Residual
		copied.Residual = &a
	}
	if r.CostRange != nil {
		cr := *r.CostRange
		copied.CostRange = &cr
	}
	return &copied
}
