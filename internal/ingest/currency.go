package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// nullCells are cell values that mean "no amount" rather than a bad cell.
var nullCells = map[string]struct{}{
	"":    {},
	"-":   {},
	"–":   {},
	"—":   {},
	"n/a": {},
	"na":  {},
}

// ParseCurrency converts a raw statement cell into a nullable amount.
//
// Blank cells, dash placeholders and "N/A" parse to null without error.
// Dollar signs and comma grouping are stripped; a parenthesized value is
// negative, accountant style. Anything left that is not a decimal number
// returns null together with an error the caller records as an invalid
// currency cell. The raw cell is never consumed here; callers keep it
// verbatim for audit.
func ParseCurrency(raw string) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(raw)
	if _, ok := nullCells[strings.ToLower(s)]; ok {
		return decimal.NullDecimal{}, nil
	}

	// Strip symbols before the parentheses check so the Excel accounting
	// form "$(1,234.50)" is still recognized as negative.
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return decimal.NullDecimal{}, fmt.Errorf("invalid currency cell %q", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid currency cell %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
