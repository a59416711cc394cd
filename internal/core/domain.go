package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is the category an account's amounts are routed into.
type Bucket string

const (
	BucketIncome      Bucket = "income"
	BucketUtilities   Bucket = "utilities"
	BucketMaintenance Bucket = "maintenance"
	BucketInsurance   Bucket = "insurance"
	BucketPropertyTax Bucket = "property_tax"
	BucketOther       Bucket = "other"
)

// Buckets lists every valid bucket in routing order.
func Buckets() []Bucket {
	return []Bucket{
		BucketIncome,
		BucketUtilities,
		BucketMaintenance,
		BucketInsurance,
		BucketPropertyTax,
		BucketOther,
	}
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	switch b {
	case BucketIncome, BucketUtilities, BucketMaintenance, BucketInsurance, BucketPropertyTax, BucketOther:
		return true
	}
	return false
}

// ParseBucket converts a string into a Bucket.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("unknown bucket %q", s)
	}
	return b, nil
}

// Period is a calendar month. The canonical textual form is "YYYY-MM".
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a Period for the given year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod parses the canonical "YYYY-MM" form.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the canonical "YYYY-MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FirstOfMonth returns the first day of the period at midnight UTC,
// which is how facts are keyed in storage.
func (p Period) FirstOfMonth() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	t := p.FirstOfMonth().AddDate(0, 1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// NormalizedRecord is one (account, period) cell in long format. Amount is
// null when the source cell was blank, a dash placeholder, or unparseable;
// AmountRaw always carries the source cell verbatim for audit.
type NormalizedRecord struct {
	AccountName string
	Period      Period
	Amount      decimal.NullDecimal
	AmountRaw   string
}

// Account is a ledger line identified by its exact trimmed name within a
// property. Identity is immutable after first sight.
type Account struct {
	ID         int64
	PropertyID string
	Name       string
	Bucket     Bucket
	Confidence float64
	CreatedAt  time.Time
}

// MonthlyFact is one persisted amount, unique on (account, period).
// Re-ingestion overwrites Amount and AmountRaw rather than duplicating.
type MonthlyFact struct {
	ID        int64
	AccountID int64
	Period    Period
	Amount    decimal.NullDecimal
	AmountRaw string
	UpdatedAt time.Time
}

// CategoryAssignment is the categorizer's verdict for one account name.
// Reasoning is for human review only, never for control flow.
type CategoryAssignment struct {
	AccountName string
	Bucket      Bucket
	Confidence  float64
	Reasoning   string
}

// NormalizeStats accumulates counters over one normalization pass.
// AccountNames holds the distinct account names in first-seen order.
type NormalizeStats struct {
	TotalRows            int
	DroppedSectionRows   int
	ParsedRows           int
	InvalidCurrencyCells int
	AccountNames         []string
}

// IngestionResult is the outcome of one persistence run. Errors holds
// row-level soft failures; they never abort the transaction by themselves.
type IngestionResult struct {
	AccountsUpserted    int
	MonthlyDataUpserted int
	Errors              []string
}
