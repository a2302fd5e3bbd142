package types

import "github.com/m-mizutani/goerr/v2"

// PeriodType is the reporting cycle of an EVM record
type PeriodType string

const (
	PeriodWeekly    PeriodType = "WEEKLY"
	PeriodMonthly   PeriodType = "MONTHLY"
	PeriodQuarterly PeriodType = "QUARTERLY"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly:
		return true
	default:
		return false
	}
}

// Normalize returns the period type, treating empty as PeriodMonthly
func (p PeriodType) Normalize() PeriodType {
	if p == "" {
		return PeriodMonthly
	}
	return p
}

// String returns the string representation of the period type
func (p PeriodType) String() string {
	return string(p)
}

// ParsePeriodType parses a string into a PeriodType. Empty means monthly.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(s).Normalize()
	if !p.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "invalid period type", goerr.V(ValueKey, s))
	}
	return p, nil
}
