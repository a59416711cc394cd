// Package schema declares the versioned period-column layout of wide
// month-column statements and classifies incoming header rows. The period
// set is data, not logic: changing the covered months means declaring a new
// schema version, not touching the parser.
package schema

import (
	"fmt"
	"strings"
	"time"

	"propfi/internal/core"
)

// AccountColumn is the required literal name of the first header column.
const AccountColumn = "Account Name"

// DefaultVersion identifies the canonical Aug 2024 – Jul 2025 statement layout.
const DefaultVersion = "2024-08"

// PeriodColumn binds a header label to the calendar month it covers.
type PeriodColumn struct {
	Label  string
	Period core.Period
}

// Schema is one versioned set of required period columns, in statement order.
type Schema struct {
	Version string
	Columns []PeriodColumn
}

// Default returns the canonical 12-month schema starting at Aug 2024.
func Default() Schema {
	return ForYearStarting(core.NewPeriod(2024, time.August))
}

// ForYearStarting builds a 12-month schema beginning at the given period,
// with labels in the canonical "<Mon> <YYYY>" form.
func ForYearStarting(start core.Period) Schema {
	s := Schema{Version: start.String()}
	p := start
	for i := 0; i < 12; i++ {
		s.Columns = append(s.Columns, PeriodColumn{Label: Label(p), Period: p})
		p = p.Next()
	}
	return s
}

// FromColumns wraps an already detected column set into an ad-hoc schema.
func FromColumns(cols []PeriodColumn) Schema {
	return Schema{Version: "detected", Columns: cols}
}

// Label renders a period in the canonical header form, e.g. "Aug 2024".
func Label(p core.Period) string {
	return p.FirstOfMonth().Format("Jan 2006")
}

// Labels returns the header labels in statement order.
func (s Schema) Labels() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Label
	}
	return out
}

// Periods returns the covered months in statement order.
func (s Schema) Periods() []core.Period {
	out := make([]core.Period, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Period
	}
	return out
}

var monthsByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParsePeriodLabel recognizes the header variants "<Mon> <YYYY>", "YYYY-MM"
// and "MM-YYYY". Matching is case-insensitive and whitespace-tolerant.
func ParsePeriodLabel(label string) (core.Period, bool) {
	norm := strings.ToLower(strings.TrimSpace(label))

	if fields := strings.Fields(norm); len(fields) == 2 && len(fields[0]) == 3 {
		month, ok := monthsByName[fields[0]]
		if ok {
			var year int
			if _, err := fmt.Sscanf(fields[1], "%4d", &year); err == nil && len(fields[1]) == 4 {
				return core.NewPeriod(year, month), true
			}
		}
	}

	if parts := strings.Split(norm, "-"); len(parts) == 2 {
		var year, month int
		switch {
		case len(parts[0]) == 4 && len(parts[1]) == 2:
			if _, err := fmt.Sscanf(norm, "%4d-%2d", &year, &month); err != nil {
				return core.Period{}, false
			}
		case len(parts[0]) == 2 && len(parts[1]) == 4:
			if _, err := fmt.Sscanf(norm, "%2d-%4d", &month, &year); err != nil {
				return core.Period{}, false
			}
		default:
			return core.Period{}, false
		}
		if month >= 1 && month <= 12 {
			return core.NewPeriod(year, time.Month(month)), true
		}
	}

	return core.Period{}, false
}
