package categorize

import "propfi/internal/core"

// Match confidences. Primary keywords are high-signal exact terms,
// secondary keywords are weaker hints, and anything unmatched falls back
// to the "other" bucket.
const (
	PrimaryConfidence   = 0.95
	SecondaryConfidence = 0.80
	FallbackConfidence  = 0.50
)

// Rule binds a bucket to its keyword sets. Keywords are matched lowercase
// on word boundaries within the account name; primary keywords win over
// secondary ones within a rule.
type Rule struct {
	Bucket    core.Bucket
	Primary   []string
	Secondary []string
}

// DefaultRules returns the rule set in evaluation order. Order is part of
// the contract: income is checked before utilities so that "Utility
// Recovery Income" lands in income, and the first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Bucket:  core.BucketIncome,
			Primary: []string{"rent", "income", "revenue"},
			Secondary: []string{
				"tenant", "resident", "lease", "rental", "receipts",
				"late fee", "application fee", "admin fee", "pet fee",
				"parking", "laundry", "concession", "short term",
				"airbnb", "vrbo", "utility recovery",
			},
		},
		{
			Bucket:  core.BucketUtilities,
			Primary: []string{"utilities", "utility", "water", "sewer", "electric", "gas", "trash"},
			Secondary: []string{
				"garbage", "recycling", "internet", "cable", "telephone", "energy",
			},
		},
		{
			Bucket:  core.BucketMaintenance,
			Primary: []string{"maintenance", "repair"},
			Secondary: []string{
				"cleaning", "landscaping", "pest", "plumbing", "hvac",
				"painting", "janitorial", "snow removal", "supplies", "turnover",
			},
		},
		{
			Bucket:    core.BucketInsurance,
			Primary:   []string{"insurance"},
			Secondary: []string{"premium", "liability"},
		},
		{
			Bucket:    core.BucketPropertyTax,
			Primary:   []string{"property tax"},
			Secondary: []string{"tax", "assessment"},
		},
	}
}
