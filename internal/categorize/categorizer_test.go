package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfi/internal/core"
)

func TestAssign_Rules(t *testing.T) {
	tests := []struct {
		name       string
		account    string
		bucket     core.Bucket
		confidence float64
	}{
		{"rent keyword", "Rent", core.BucketIncome, PrimaryConfidence},
		{"rental income", "Rental Income", core.BucketIncome, PrimaryConfidence},
		{"late fees", "Late Fees", core.BucketIncome, SecondaryConfidence},
		{"water and sewer", "Water & Sewer", core.BucketUtilities, PrimaryConfidence},
		{"electric", "Electric Service", core.BucketUtilities, PrimaryConfidence},
		{"trash", "Trash Removal", core.BucketUtilities, PrimaryConfidence},
		{"internet", "Internet & Cable", core.BucketUtilities, SecondaryConfidence},
		{"maintenance", "Building Maintenance", core.BucketMaintenance, PrimaryConfidence},
		{"repairs", "Repairs - General", core.BucketMaintenance, PrimaryConfidence},
		{"landscaping", "Landscaping Service", core.BucketMaintenance, SecondaryConfidence},
		{"insurance", "Property Insurance", core.BucketInsurance, PrimaryConfidence},
		{"property tax", "Property Taxes", core.BucketPropertyTax, PrimaryConfidence},
		{"plural taxes", "Current Taxes", core.BucketPropertyTax, SecondaryConfidence},
		{"fallback", "Random Misc Fee", core.BucketOther, FallbackConfidence},
		{"empty name", "", core.BucketOther, FallbackConfidence},
	}

	c := New(DefaultRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Assign(tt.account)
			assert.Equal(t, tt.bucket, got.Bucket)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.account, got.AccountName)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestAssign_OrderResolvesAmbiguity(t *testing.T) {
	c := New(DefaultRules())

	// Income is evaluated before utilities, so recovered utility charges
	// billed back to tenants stay income.
	got := c.Assign("Utility Recovery Income")
	assert.Equal(t, core.BucketIncome, got.Bucket)

	// Insurance is evaluated before property tax, so a premium with "tax"
	// in the name still lands in insurance.
	got = c.Assign("Insurance Premium Tax")
	assert.Equal(t, core.BucketInsurance, got.Bucket)
}

func TestMatchesKeyword_WordBoundaries(t *testing.T) {
	tests := []struct {
		s    string
		kw   string
		want bool
	}{
		{"rent", "rent", true},
		{"prepaid rent", "rent", true},
		{"rents", "rent", true},
		{"property taxes", "property tax", true},
		{"current taxes", "rent", false},
		{"rental income", "rent", false},
		{"water & sewer", "water", true},
		{"gasoline", "gas", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesKeyword(tt.s, tt.kw), "%q in %q", tt.kw, tt.s)
	}
}

func TestAssign_Overrides(t *testing.T) {
	c := New(DefaultRules()).WithOverrides(map[string]Override{
		"Weird Line Item": {Bucket: core.BucketMaintenance, Confidence: 0.80},
		"Pool Service":    {Bucket: core.BucketUtilities, Corrected: true},
	})

	learned := c.Assign("Weird Line Item")
	assert.Equal(t, core.BucketMaintenance, learned.Bucket)
	assert.InDelta(t, 0.80, learned.Confidence, 1e-9)
	assert.Equal(t, "learned from previous run", learned.Reasoning)

	corrected := c.Assign("Pool Service")
	assert.Equal(t, core.BucketUtilities, corrected.Bucket)
	assert.InDelta(t, PrimaryConfidence, corrected.Confidence, 1e-9)
	assert.Equal(t, "user-corrected category", corrected.Reasoning)

	// Names without an override still go through the rules.
	plain := c.Assign("Rental Income")
	assert.Equal(t, core.BucketIncome, plain.Bucket)
}

func TestAssignAll_PreservesOrder(t *testing.T) {
	names := []string{"Water & Sewer", "Rental Income", "Mystery"}

	got := New(DefaultRules()).AssignAll(names)
	require.Len(t, got, 3)
	for i, name := range names {
		assert.Equal(t, name, got[i].AccountName)
	}
}
