package schema

import (
	"strings"
	"testing"
	"time"

	"propfi/internal/core"
)

func TestParsePeriodLabel(t *testing.T) {
	tests := []struct {
		label string
		want  core.Period
		ok    bool
	}{
		{"Aug 2024", core.NewPeriod(2024, time.August), true},
		{"aug 2024", core.NewPeriod(2024, time.August), true},
		{"  Jul 2025 ", core.NewPeriod(2025, time.July), true},
		{"2024-08", core.NewPeriod(2024, time.August), true},
		{"08-2024", core.NewPeriod(2024, time.August), true},
		{"Foo 2024", core.Period{}, false},
		{"13-2024", core.Period{}, false},
		{"2024-13", core.Period{}, false},
		{"Account Name", core.Period{}, false},
		{"", core.Period{}, false},
		{"August 2024", core.Period{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParsePeriodLabel(tt.label)
			if ok != tt.ok {
				t.Fatalf("ParsePeriodLabel(%q) ok = %v, want %v", tt.label, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePeriodLabel(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	s := Default()

	if s.Version != DefaultVersion {
		t.Errorf("version = %q, want %q", s.Version, DefaultVersion)
	}
	if len(s.Columns) != 12 {
		t.Fatalf("columns = %d, want 12", len(s.Columns))
	}
	if s.Columns[0].Label != "Aug 2024" {
		t.Errorf("first label = %q, want %q", s.Columns[0].Label, "Aug 2024")
	}
	if s.Columns[11].Label != "Jul 2025" {
		t.Errorf("last label = %q, want %q", s.Columns[11].Label, "Jul 2025")
	}
}

func TestDetect_Wide(t *testing.T) {
	headers := append([]string{AccountColumn}, Default().Labels()...)

	format, cols, err := Detect(headers)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if format != FormatWide {
		t.Errorf("format = %q, want %q", format, FormatWide)
	}
	if len(cols) != 12 {
		t.Errorf("period columns = %d, want 12", len(cols))
	}
	// Original order preserved.
	if cols[0].Label != "Aug 2024" || cols[11].Label != "Jul 2025" {
		t.Errorf("column order not preserved: first %q last %q", cols[0].Label, cols[11].Label)
	}
}

func TestDetect_WideAtThreshold(t *testing.T) {
	headers := []string{AccountColumn, "Aug 2024", "Sep 2024", "Oct 2024"}

	format, cols, err := Detect(headers)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if format != FormatWide {
		t.Errorf("format = %q, want %q", format, FormatWide)
	}
	if len(cols) != 3 {
		t.Errorf("period columns = %d, want 3", len(cols))
	}
}

func TestDetect_Traditional(t *testing.T) {
	tests := [][]string{
		{AccountColumn, "Description", "Amount"},
		{AccountColumn, "Aug 2024", "Sep 2024"}, // only two period-like headers
		{AccountColumn},
	}

	for _, headers := range tests {
		t.Run(strings.Join(headers, "|"), func(t *testing.T) {
			format, cols, err := Detect(headers)
			if err != nil {
				t.Fatalf("Detect returned error: %v", err)
			}
			if format != FormatTraditional {
				t.Errorf("format = %q, want %q", format, FormatTraditional)
			}
			if cols != nil {
				t.Errorf("expected no period columns, got %d", len(cols))
			}
		})
	}
}

func TestDetect_SchemaError(t *testing.T) {
	_, _, err := Detect([]string{"Date", "Description", "Amount"})
	if err == nil {
		t.Fatal("expected schema error for misnamed first column")
	}
	if !core.IsSchemaError(err) {
		t.Errorf("expected SchemaError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), AccountColumn) {
		t.Errorf("error should name the required column, got: %v", err)
	}
}

func TestForYearStarting(t *testing.T) {
	s := ForYearStarting(core.NewPeriod(2025, time.January))
	if len(s.Columns) != 12 {
		t.Fatalf("columns = %d, want 12", len(s.Columns))
	}
	if s.Columns[0].Label != "Jan 2025" || s.Columns[11].Label != "Dec 2025" {
		t.Errorf("unexpected labels: first %q last %q", s.Columns[0].Label, s.Columns[11].Label)
	}
	if s.Version != "2025-01" {
		t.Errorf("version = %q, want %q", s.Version, "2025-01")
	}
}
