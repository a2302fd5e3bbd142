package types

import "github.com/m-mizutani/goerr/v2"

// RiskStatus represents the lifecycle status of a risk
type RiskStatus string

const (
	RiskStatusIdentified      RiskStatus = "IDENTIFIED"
	RiskStatusAssessed        RiskStatus = "ASSESSED"
	RiskStatusResponsePlanned RiskStatus = "RESPONSE_PLANNED"
	RiskStatusMonitored       RiskStatus = "MONITORED"
	RiskStatusClosed          RiskStatus = "CLOSED"
)

// AllRiskStatuses returns all valid risk statuses in lifecycle order
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusIdentified,
		RiskStatusAssessed,
		RiskStatusResponsePlanned,
		RiskStatusMonitored,
		RiskStatusClosed,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusIdentified,
		RiskStatusAssessed,
		RiskStatusResponsePlanned,
		RiskStatusMonitored,
		RiskStatusClosed:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as RiskStatusIdentified
func (s RiskStatus) Normalize() RiskStatus {
	if s == "" {
		return RiskStatusIdentified
	}
	return s
}

// IsClosed reports whether the status is terminal
func (s RiskStatus) IsClosed() bool {
	return s == RiskStatusClosed
}

// next is the single forward step allowed from each active status
var next = map[RiskStatus]RiskStatus{
	RiskStatusIdentified:      RiskStatusAssessed,
	RiskStatusAssessed:        RiskStatusResponsePlanned,
	RiskStatusResponsePlanned: RiskStatusMonitored,
	RiskStatusMonitored:       RiskStatusClosed,
}

// CanTransitionTo reports whether the lifecycle allows moving from s to to.
// Any active status may be closed. Closed is terminal.
func (s RiskStatus) CanTransitionTo(to RiskStatus) bool {
	from := s.Normalize()
	if from.IsClosed() || !to.IsValid() {
		return false
	}
	if to == RiskStatusClosed {
		return true
	}
	return next[from] == to
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "invalid risk status", goerr.V(StatusKey, s))
	}
	return status, nil
}
