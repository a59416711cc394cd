package schema

import (
	"fmt"
	"strings"

	"propfi/internal/core"
)

// Format classifies a header row's layout.
type Format string

const (
	// FormatWide is the month-column layout: one row per account, one
	// column per calendar period.
	FormatWide Format = "wide"
	// FormatTraditional is anything else (e.g. one transaction per row).
	FormatTraditional Format = "traditional"
)

// minPeriodColumns is the number of period-like headers required before a
// row is classified as wide format.
const minPeriodColumns = 3

// Detect classifies a header row. When at least three headers parse as
// period labels the row is wide format and the matching columns are
// returned in their original order. Fewer matches normally means
// traditional format, except that a misnamed first column is a hard
// schema error rather than a silent fallback.
func Detect(headers []string) (Format, []PeriodColumn, error) {
	if len(headers) == 0 {
		return "", nil, core.NewSchemaError(AccountColumn, "empty header row")
	}

	var cols []PeriodColumn
	for _, h := range headers {
		if p, ok := ParsePeriodLabel(h); ok {
			cols = append(cols, PeriodColumn{Label: strings.TrimSpace(h), Period: p})
		}
	}

	if len(cols) >= minPeriodColumns {
		return FormatWide, cols, nil
	}

	if strings.TrimSpace(headers[0]) != AccountColumn {
		return "", nil, core.NewSchemaError(headers[0], fmt.Sprintf("first column must be named %q", AccountColumn))
	}
	return FormatTraditional, nil, nil
}
