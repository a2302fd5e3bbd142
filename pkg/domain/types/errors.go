package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel error kinds shared by every layer. Wrap them with goerr.Wrap and
// attach the offending field with goerr.V so callers can match with errors.Is.
var (
	ErrInvalidArgument   = goerr.New("invalid argument")
	ErrNotFound          = goerr.New("not found")
	ErrAlreadyExists     = goerr.New("already exists")
	ErrOutOfOrder        = goerr.New("record out of order")
	ErrInvalidTransition = goerr.New("invalid status transition")
)

// Context keys for error values
const (
	FieldKey  = "field"
	ValueKey  = "value"
	StatusKey = "status"
)
