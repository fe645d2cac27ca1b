// Package numeric implements the single canonical MOPS numeric parser
// (spec.md §4.1, component C1).
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nullTokens are the values MOPS uses in place of a missing number,
// in both half-width and full-width dash form.
var nullTokens = map[string]struct{}{
	"-": {},
	"—": {},
	"–": {},
}

// Parse implements spec.md §4.1: strip whitespace, drop comma
// separators, treat dash variants and the empty string as absent, and
// never panic — any unparseable residue is also absent.
func Parse(input *string) (decimal.Decimal, bool) {
	if input == nil {
		return decimal.Decimal{}, false
	}

	cleaned := strings.TrimSpace(*input)
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	if _, isNull := nullTokens[cleaned]; isNull {
		return decimal.Decimal{}, false
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

// ParseString is a convenience wrapper for callers that already hold
// a non-pointer string (e.g. from an XML attribute).
func ParseString(input string) (decimal.Decimal, bool) {
	return Parse(&input)
}

// Format renders value back into the canonical textual form Parse
// accepts, used only to exercise the round-trip property (spec.md P3)
// in tests — callers in the core never need to re-stringify a decimal
// before storing it.
func Format(value decimal.Decimal) string {
	return value.String()
}
