package valuation

import (
	"database/sql"
	"math"

	"dealdesk/model"
)

// DiscountPolicy selects how the offer discount is derived from ARV.
type DiscountPolicy string

const (
	// DiscountFlat applies FlatRate to every property.
	DiscountFlat DiscountPolicy = "flat"
	// DiscountByRepair keys the rate off the property's repair level.
	DiscountByRepair DiscountPolicy = "condition"
)

// Basis selects what the high-potential threshold compares against.
type Basis string

const (
	BasisARV     Basis = "arv"
	BasisListing Basis = "listing"
)

// Policy is the declared configuration for offer pricing and the
// high-potential classification. Observed acquisition workflows disagree on
// both knobs, so neither is hard-coded.
type Policy struct {
	Discount       DiscountPolicy
	FlatRate       float64
	RepairRates    map[model.RepairLevel]float64
	Potential      Basis
	PotentialRatio float64
}

// DefaultPolicy is a flat 60% discount with high potential measured against
// 55% of ARV.
func DefaultPolicy() Policy {
	return Policy{
		Discount:       DiscountFlat,
		FlatRate:       0.60,
		RepairRates:    DefaultRepairRates(),
		Potential:      BasisARV,
		PotentialRatio: 0.55,
	}
}

// DefaultRepairRates is the condition-keyed discount table.
func DefaultRepairRates() map[model.RepairLevel]float64 {
	return map[model.RepairLevel]float64{
		model.RepairLight:  0.70,
		model.RepairMedium: 0.60,
		model.RepairHeavy:  0.50,
	}
}

// Input is one subject property's normalized fields.
type Input struct {
	LivingArea   sql.NullFloat64
	ListingPrice sql.NullFloat64
	Condition    model.Condition
	RepairLevel  model.RepairLevel
}

// Evaluate derives ARV, offer price and the high-potential flag for one
// property. Missing living area or an empty comp statistic degrades the
// valuation to not-available fields, never an error: the property still
// surfaces in the output with explicit empty markers.
func Evaluate(in Input, stats model.CompStatistic, p Policy) model.PropertyValuation {
	out := model.PropertyValuation{Condition: in.Condition}
	if out.Condition == "" {
		out.Condition = model.ConditionMedium
	}

	if !in.LivingArea.Valid || stats.AvgPricePerSqft <= 0 {
		return out
	}

	arv := round2(in.LivingArea.Float64 * stats.AvgPricePerSqft)
	offer := round2(arv * p.discountRate(in.RepairLevel))
	out.ARV = sql.NullFloat64{Float64: arv, Valid: true}
	out.OfferPrice = sql.NullFloat64{Float64: offer, Valid: true}

	switch p.Potential {
	case BasisListing:
		if in.ListingPrice.Valid {
			out.HighPotential = offer <= p.PotentialRatio*in.ListingPrice.Float64
		}
	default:
		out.HighPotential = offer <= p.PotentialRatio*arv
	}
	return out
}

func (p Policy) discountRate(level model.RepairLevel) float64 {
	if p.Discount == DiscountByRepair {
		if rate, ok := p.RepairRates[level]; ok {
			return rate
		}
	}
	if p.FlatRate > 0 {
		return p.FlatRate
	}
	return 0.60
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
