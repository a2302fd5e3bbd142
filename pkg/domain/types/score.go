package types

import "github.com/m-mizutani/goerr/v2"

// Score is an ordinal probability or impact rating between MinScore and MaxScore
type Score int

const (
	MinScore Score = 1
	MaxScore Score = 5
)

// Validate checks if the score is within the ordinal scale
func (s Score) Validate() error {
	if s < MinScore || s > MaxScore {
		return goerr.Wrap(ErrInvalidArgument, "score must be between 1 and 5", goerr.V("score", int(s)))
	}
	return nil
}

// Weight maps the score onto (0, 1] linearly: 1 is 0.2, 5 is 1.0
func (s Score) Weight() float64 {
	return float64(s) / float64(MaxScore)
}

// Int returns the score as int
func (s Score) Int() int {
	return int(s)
}
