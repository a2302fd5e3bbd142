package types

import "github.com/m-mizutani/goerr/v2"

// ResponseStatus represents the status of a response to a risk
type ResponseStatus string

const (
	ResponseStatusPlanned     ResponseStatus = "PLANNED"
	ResponseStatusImplemented ResponseStatus = "IMPLEMENTED"
)

// AllResponseStatuses returns all valid response statuses
func AllResponseStatuses() []ResponseStatus {
	return []ResponseStatus{
		ResponseStatusPlanned,
		ResponseStatusImplemented,
	}
}

// IsValid checks if the response status is valid
func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseStatusPlanned,
		ResponseStatusImplemented:
		return true
	default:
		return false
	}
}

// String returns the string representation of the response status
func (s ResponseStatus) String() string {
	return string(s)
}

// ParseResponseStatus parses a string into a ResponseStatus
func ParseResponseStatus(s string) (ResponseStatus, error) {
	status := ResponseStatus(s)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "invalid response status", goerr.V(StatusKey, s))
	}
	return status, nil
}
