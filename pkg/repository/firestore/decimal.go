package firestore

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

// parseAmount decodes an amount stored as a decimal string. Empty is zero.
func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, goerr.Wrap(err, "invalid stored amount", goerr.V("field", field), goerr.V("value", value))
	}
	return d, nil
}
