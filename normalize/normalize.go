package normalize

import (
	"database/sql"
	"strconv"
	"strings"

	"dealdesk/model"
)

var numberStripper = strings.NewReplacer(",", "", "$", "", "%", "", " ", "", " ", "")

// Number coerces a raw cell into a float. Currency symbols, comma thousands
// separators, percent signs and whitespace are stripped before parsing.
// Blank cells and non-numeric residue yield Valid=false, never zero and
// never an error. Sign and finiteness are preserved; positivity filtering
// belongs to the statistics engine.
func Number(raw string) sql.NullFloat64 {
	s := numberStripper.Replace(strings.TrimSpace(raw))
	if s == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// Bool maps free-text flags ("LOI Sent" and the like) to a bool.
// Unrecognized text is false, never an error.
func Bool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1", "y", "t", "on":
		return true
	default:
		return false
	}
}

var conditionTable = map[string]model.Condition{
	"excellent": model.ConditionExcellent,
	"good":      model.ConditionGood,
	"fair":      model.ConditionFair,
	"poor":      model.ConditionPoor,
	"medium":    model.ConditionMedium,
	"average":   model.ConditionMedium,
	"high":      model.ConditionGood,
	"low":       model.ConditionPoor,
}

// Condition maps a free-text condition description to the five-value enum.
// Unmapped or missing text defaults to Medium.
func Condition(raw string) model.Condition {
	if c, ok := conditionTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return model.ConditionMedium
}

var repairTable = map[string]model.RepairLevel{
	"light":  model.RepairLight,
	"medium": model.RepairMedium,
	"heavy":  model.RepairHeavy,
}

// RepairLevel maps free-text damage classes to the discount-table key,
// defaulting to Medium.
func RepairLevel(raw string) model.RepairLevel {
	if r, ok := repairTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return model.RepairMedium
}

// RepairFromCondition derives a repair level when the dataset carries no
// damage column: better-than-medium conditions imply a light rehab, worse
// imply a heavy one.
func RepairFromCondition(c model.Condition) model.RepairLevel {
	switch c {
	case model.ConditionExcellent, model.ConditionGood:
		return model.RepairLight
	case model.ConditionFair, model.ConditionPoor:
		return model.RepairHeavy
	default:
		return model.RepairMedium
	}
}
