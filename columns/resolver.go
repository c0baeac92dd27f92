package columns

import (
	"fmt"
	"strings"
)

// Canonical field names used by the pipeline.
const (
	FieldPrice        = "price"
	FieldLivingArea   = "living_area"
	FieldCondition    = "condition"
	FieldRepairLevel  = "repair_level"
	FieldListingPrice = "listing_price"
	FieldAddress      = "address"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZip          = "zip"
	FieldLOISent      = "loi_sent"
)

// Rule maps one canonical field to an ordered pattern list. Patterns are
// tried in order; the first pattern that matches any column wins, and ties
// among columns matching the same pattern go to the earliest column.
type Rule struct {
	Field    string
	Patterns []string
}

// Resolution maps canonical field name to the source column chosen for one
// dataset. Absent key means the field is unresolved.
type Resolution map[string]string

// Column returns the source column resolved for a field.
func (r Resolution) Column(field string) (string, bool) {
	col, ok := r[field]
	return col, ok
}

// UnresolvedError reports a required field that no column matched, carrying
// the patterns sought and the columns actually present.
type UnresolvedError struct {
	Field    string
	Patterns []string
	Columns  []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("no column matched required field %q (tried patterns: %s; columns present: %s)",
		e.Field, strings.Join(e.Patterns, ", "), strings.Join(e.Columns, ", "))
}

// CompRules resolves the two fields a comps dataset must provide.
func CompRules() []Rule {
	return []Rule{
		{Field: FieldPrice, Patterns: []string{"last sale amount", "sale amount", "sold price", "sale price", "price"}},
		{Field: FieldLivingArea, Patterns: []string{"living square feet", "living area", "square feet", "sq ft", "sqft"}},
	}
}

// PropertyRules resolves the subject-property fields. Only living area is
// required; everything else degrades to empty or a default downstream.
func PropertyRules() []Rule {
	return []Rule{
		{Field: FieldLivingArea, Patterns: []string{"living square feet", "living area", "square feet", "sq ft", "sqft"}},
		{Field: FieldListingPrice, Patterns: []string{"listing price", "list price", "asking price"}},
		{Field: FieldCondition, Patterns: []string{"condition estimate", "condition"}},
		{Field: FieldRepairLevel, Patterns: []string{"repair level", "damage level", "damage", "rehab"}},
		{Field: FieldAddress, Patterns: []string{"property address", "street address", "address"}},
		{Field: FieldCity, Patterns: []string{"city"}},
		{Field: FieldState, Patterns: []string{"state"}},
		{Field: FieldZip, Patterns: []string{"zip code", "zipcode", "zip", "postal code"}},
		{Field: FieldLOISent, Patterns: []string{"loi sent"}},
	}
}

// Resolve maps each rule's field to at most one column. Matching is
// case-insensitive substring containment over trimmed names. Resolution is
// deterministic for a given column set: pattern priority first, then source
// column order.
func Resolve(cols []string, rules []Rule) Resolution {
	normalized := make([]string, len(cols))
	for i, c := range cols {
		normalized[i] = strings.ToLower(strings.TrimSpace(c))
	}

	res := make(Resolution, len(rules))
	for _, rule := range rules {
		for _, pat := range rule.Patterns {
			p := strings.ToLower(strings.TrimSpace(pat))
			found := false
			for i, nc := range normalized {
				if strings.Contains(nc, p) {
					res[rule.Field] = cols[i]
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return res
}

// Require returns an UnresolvedError for the first listed field missing from
// the resolution.
func Require(res Resolution, cols []string, rules []Rule, fields ...string) error {
	for _, f := range fields {
		if _, ok := res[f]; !ok {
			for _, rule := range rules {
				if rule.Field == f {
					return &UnresolvedError{Field: f, Patterns: rule.Patterns, Columns: cols}
				}
			}
			return &UnresolvedError{Field: f, Columns: cols}
		}
	}
	return nil
}
