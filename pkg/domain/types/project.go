package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ProjectID represents a unique identifier for a project
type ProjectID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the ProjectID is valid
func (p ProjectID) Validate() error {
	if p == "" {
		return goerr.Wrap(ErrInvalidArgument, "project ID cannot be empty")
	}
	if !idPattern.MatchString(string(p)) {
		return goerr.Wrap(ErrInvalidArgument, "project ID must be lowercase alphanumeric with hyphens", goerr.V("id", p))
	}
	return nil
}

// String returns the string representation of ProjectID
func (p ProjectID) String() string {
	return string(p)
}

// ControlAccountID identifies a control account. It is a UUID string.
type ControlAccountID string

func (c ControlAccountID) String() string {
	return string(c)
}

// ResponseID identifies a risk response. It is a UUID string.
type ResponseID string

func (r ResponseID) String() string {
	return string(r)
}

// RecordID identifies an EVM period record. It is a UUID string.
type RecordID string

func (r RecordID) String() string {
	return string(r)
}
