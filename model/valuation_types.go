package model

import "database/sql"

// Condition is the five-value condition estimate attached to a subject
// property. Unknown or missing source text maps to ConditionMedium.
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionMedium    Condition = "Medium"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
)

// RepairLevel is the damage classification used by the condition-keyed
// discount table. It is a separate axis from Condition: Condition describes
// the listing, RepairLevel describes the expected rehab.
type RepairLevel string

const (
	RepairLight  RepairLevel = "Light"
	RepairMedium RepairLevel = "Medium"
	RepairHeavy  RepairLevel = "Heavy"
)

// CompRecord is one comparable sale after numeric normalization.
// PricePerSqft is valid only when both Price and LivingArea are valid,
// finite and strictly positive.
type CompRecord struct {
	Price        sql.NullFloat64 `json:"price"`
	LivingArea   sql.NullFloat64 `json:"livingArea"`
	PricePerSqft sql.NullFloat64 `json:"pricePerSqft"`
}

// CompStatistic is the aggregate over the retained comparable sales for one
// run. The zero value (0, 0) is the "insufficient data" signal.
type CompStatistic struct {
	AvgPricePerSqft float64 `json:"avgPricePerSqft" db:"avg_price_per_sqft"`
	SampleCount     int     `json:"sampleCount" db:"comps_count"`
}

// PropertyValuation holds the derived fields for one subject property.
// ARV and OfferPrice are invalid when the living area could not be
// normalized or no comp statistic was available.
type PropertyValuation struct {
	ARV           sql.NullFloat64 `json:"arv"`
	OfferPrice    sql.NullFloat64 `json:"offerPrice"`
	Condition     Condition       `json:"condition"`
	HighPotential bool            `json:"highPotential"`
}
