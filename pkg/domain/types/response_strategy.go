package types

import "github.com/m-mizutani/goerr/v2"

// ResponseStrategy is the treatment chosen for a risk. Exploit, Share and
// Enhance apply to opportunities.
type ResponseStrategy string

const (
	StrategyAvoid    ResponseStrategy = "AVOID"
	StrategyTransfer ResponseStrategy = "TRANSFER"
	StrategyMitigate ResponseStrategy = "MITIGATE"
	StrategyAccept   ResponseStrategy = "ACCEPT"
	StrategyEscalate ResponseStrategy = "ESCALATE"
	StrategyExploit  ResponseStrategy = "EXPLOIT"
	StrategyShare    ResponseStrategy = "SHARE"
	StrategyEnhance  ResponseStrategy = "ENHANCE"
)

// AllResponseStrategies returns all valid response strategies
func AllResponseStrategies() []ResponseStrategy {
	return []ResponseStrategy{
		StrategyAvoid,
		StrategyTransfer,
		StrategyMitigate,
		StrategyAccept,
		StrategyEscalate,
		StrategyExploit,
		StrategyShare,
		StrategyEnhance,
	}
}

// IsValid checks if the strategy is valid
func (s ResponseStrategy) IsValid() bool {
	for _, v := range AllResponseStrategies() {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of the strategy
func (s ResponseStrategy) String() string {
	return string(s)
}

// ParseResponseStrategy parses a string into a ResponseStrategy
func ParseResponseStrategy(s string) (ResponseStrategy, error) {
	strategy := ResponseStrategy(s)
	if !strategy.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "invalid response strategy", goerr.V(ValueKey, s))
	}
	return strategy, nil
}
