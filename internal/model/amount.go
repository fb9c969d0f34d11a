package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"\t", "",
	",", ".",
)

// ParseAmount parses a bank-formatted decimal: spaces are thousands
// separators and a comma is the decimal separator ("-1 234,50").
// The second return value is false when the text is not a number.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = amountCleaner.Replace(strings.Trim(strings.TrimSpace(s), `"`))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
