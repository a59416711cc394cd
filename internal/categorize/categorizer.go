// Package categorize assigns account names to buckets with a fixed,
// ordered keyword rule set. Scoring is deterministic: no fuzzy matching,
// no model calls. Assignments learned from previous runs or corrected by a
// user can be layered on as overrides and take precedence over the rules.
package categorize

import (
	"fmt"
	"strings"

	"propfi/internal/core"
)

// Override replays a prior assignment for an account name. Corrected
// overrides come from a user and always win at high confidence; learned
// ones replay the stored prediction at its stored confidence.
type Override struct {
	Bucket     core.Bucket
	Confidence float64
	Corrected  bool
}

// Categorizer evaluates account names against an ordered rule list.
type Categorizer struct {
	rules     []Rule
	overrides map[string]Override
}

// New creates a Categorizer with the given rules. Pass DefaultRules() for
// the standard property cash-flow set.
func New(rules []Rule) *Categorizer {
	return &Categorizer{rules: rules}
}

// WithOverrides returns a Categorizer that consults the given per-account
// overrides before the rule list. The map is keyed by exact account name.
func (c *Categorizer) WithOverrides(overrides map[string]Override) *Categorizer {
	return &Categorizer{rules: c.rules, overrides: overrides}
}

// Assign produces the assignment for a single account name.
func (c *Categorizer) Assign(name string) core.CategoryAssignment {
	if o, ok := c.overrides[name]; ok && o.Bucket.Valid() {
		if o.Corrected {
			return core.CategoryAssignment{
				AccountName: name,
				Bucket:      o.Bucket,
				Confidence:  PrimaryConfidence,
				Reasoning:   "user-corrected category",
			}
		}
		return core.CategoryAssignment{
			AccountName: name,
			Bucket:      o.Bucket,
			Confidence:  o.Confidence,
			Reasoning:   "learned from previous run",
		}
	}

	lower := strings.ToLower(name)
	for _, rule := range c.rules {
		for _, kw := range rule.Primary {
			if matchesKeyword(lower, kw) {
				return core.CategoryAssignment{
					AccountName: name,
					Bucket:      rule.Bucket,
					Confidence:  PrimaryConfidence,
					Reasoning:   fmt.Sprintf("matched keyword %q", kw),
				}
			}
		}
		for _, kw := range rule.Secondary {
			if matchesKeyword(lower, kw) {
				return core.CategoryAssignment{
					AccountName: name,
					Bucket:      rule.Bucket,
					Confidence:  SecondaryConfidence,
					Reasoning:   fmt.Sprintf("matched secondary keyword %q", kw),
				}
			}
		}
	}

	return core.CategoryAssignment{
		AccountName: name,
		Bucket:      core.BucketOther,
		Confidence:  FallbackConfidence,
		Reasoning:   "no keyword matched",
	}
}

// matchesKeyword reports whether kw occurs in s on word boundaries, so
// "rent" matches "Prepaid Rent" but not "Current". A trailing "s" or "es"
// still counts, covering plural account names like "Property Taxes".
// Both s and kw must already be lowercase.
func matchesKeyword(s, kw string) bool {
	for start := 0; start+len(kw) <= len(s); {
		i := strings.Index(s[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		if isBoundary(s, i-1) && pluralBoundary(s, i+len(kw)) {
			return true
		}
		start = i + 1
	}
	return false
}

func pluralBoundary(s string, i int) bool {
	if isBoundary(s, i) {
		return true
	}
	if s[i] == 's' && isBoundary(s, i+1) {
		return true
	}
	return i+1 < len(s) && s[i] == 'e' && s[i+1] == 's' && isBoundary(s, i+2)
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

// AssignAll produces one assignment per name, preserving input order.
// Names are expected to be the distinct account names of one ingestion
// run in first-seen order.
func (c *Categorizer) AssignAll(names []string) []core.CategoryAssignment {
	out := make([]core.CategoryAssignment, 0, len(names))
	for _, name := range names {
		out = append(out, c.Assign(name))
	}
	return out
}
