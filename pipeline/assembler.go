package pipeline

import (
	"strings"

	"dealdesk/columns"
	"dealdesk/model"
	"dealdesk/normalize"
	"dealdesk/valuation"
)

// Output field names handed to the templating and storage collaborators.
const (
	FieldAddress       = "Address"
	FieldCity          = "City"
	FieldState         = "State"
	FieldZip           = "Zip"
	FieldListingPrice  = "Listing Price"
	FieldLivingSqft    = "Living Square Feet"
	FieldCondition     = "Condition Estimate"
	FieldARV           = "ARV"
	FieldOfferPrice    = "Offer Price"
	FieldHighPotential = "High Potential"
	FieldCompsCount    = "Comps Count"
	FieldAvgPPSF       = "Avg Comp $/Sqft"
	FieldLOISent       = "LOI Sent"
	FieldLOIFile       = "LOI File"
)

// DocumentError is the inline marker for a property whose document could
// not be generated.
const DocumentError = "Error"

// Record is one subject property merged with its computed valuation: a flat
// field→value mapping in a fixed field order. Numbers are float64, flags
// are bool, anything unavailable is an empty string. NaN never crosses this
// boundary.
type Record struct {
	Fields []string       `json:"fields"`
	Values map[string]any `json:"values"`
}

// String returns the value of a string-typed field, or "".
func (r Record) String(field string) string {
	if v, ok := r.Values[field].(string); ok {
		return v
	}
	return ""
}

// Number returns the value of a numeric field and whether it was available.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r.Values[field].(float64)
	return v, ok
}

// Bool returns the value of a boolean field.
func (r Record) Bool(field string) bool {
	v, _ := r.Values[field].(bool)
	return v
}

func assemble(row model.RawRecord, srcCols []string, res columns.Resolution, stats model.CompStatistic, pol valuation.Policy) Record {
	in := valuationInput(row, res)
	val := valuation.Evaluate(in, stats, pol)

	rec := Record{Values: make(map[string]any)}
	put := func(field string, v any) {
		rec.Fields = append(rec.Fields, field)
		rec.Values[field] = v
	}
	resolved := func(field string) string {
		if col, ok := res.Column(field); ok {
			return row.Get(col)
		}
		return ""
	}
	put(FieldAddress, resolved(columns.FieldAddress))
	put(FieldCity, resolved(columns.FieldCity))
	put(FieldState, resolved(columns.FieldState))
	put(FieldZip, resolved(columns.FieldZip))
	put(FieldListingPrice, nullableNumber(in.ListingPrice.Float64, in.ListingPrice.Valid))
	put(FieldLivingSqft, nullableNumber(in.LivingArea.Float64, in.LivingArea.Valid))
	put(FieldCondition, string(val.Condition))
	put(FieldARV, nullableNumber(val.ARV.Float64, val.ARV.Valid))
	put(FieldOfferPrice, nullableNumber(val.OfferPrice.Float64, val.OfferPrice.Valid))
	put(FieldHighPotential, val.HighPotential)
	put(FieldCompsCount, float64(stats.SampleCount))
	put(FieldAvgPPSF, stats.AvgPricePerSqft)
	put(FieldLOISent, normalize.Bool(resolved(columns.FieldLOISent)))

	// Agent contact columns ride along untouched under their source names.
	for _, col := range srcCols {
		if strings.Contains(strings.ToLower(col), "agent") {
			put(col, row.Get(col))
		}
	}

	put(FieldLOIFile, "")
	return rec
}

// nullableNumber renders not-available as the explicit empty marker.
func nullableNumber(v float64, ok bool) any {
	if !ok {
		return ""
	}
	return v
}
