package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/model"
)

func TestNumberCurrencyAndCommas(t *testing.T) {
	cases := map[string]float64{
		"$200,000":    200000,
		"1,000":       1000,
		"  $1,234.56 ": 1234.56,
		"85%":         85,
		"-500":        -500,
		"300000":      300000,
	}
	for raw, want := range cases {
		got := Number(raw)
		require.True(t, got.Valid, "input %q", raw)
		assert.InDelta(t, want, got.Float64, 1e-9, "input %q", raw)
	}
}

func TestNumberNotAvailable(t *testing.T) {
	for _, raw := range []string{"", "   ", "N/A", "unknown", "$", "--", "12abc"} {
		got := Number(raw)
		assert.False(t, got.Valid, "input %q must be not-available", raw)
		assert.Zero(t, got.Float64, "input %q", raw)
	}
}

func TestBoolTable(t *testing.T) {
	for _, raw := range []string{"true", "YES", "1", "y", "T", "On"} {
		assert.True(t, Bool(raw), "input %q", raw)
	}
	for _, raw := range []string{"false", "No", "0", "n", "F", "off", "", "maybe", "2"} {
		assert.False(t, Bool(raw), "input %q", raw)
	}
}

func TestConditionTable(t *testing.T) {
	cases := map[string]model.Condition{
		"excellent": model.ConditionExcellent,
		"GOOD":      model.ConditionGood,
		" fair ":    model.ConditionFair,
		"poor":      model.ConditionPoor,
		"medium":    model.ConditionMedium,
		"Average":   model.ConditionMedium,
		"high":      model.ConditionGood,
		"low":       model.ConditionPoor,
		"":          model.ConditionMedium,
		"gutted":    model.ConditionMedium,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Condition(raw), "input %q", raw)
	}
}

func TestRepairLevel(t *testing.T) {
	assert.Equal(t, model.RepairLight, RepairLevel("Light"))
	assert.Equal(t, model.RepairHeavy, RepairLevel("heavy"))
	assert.Equal(t, model.RepairMedium, RepairLevel(""))
	assert.Equal(t, model.RepairMedium, RepairLevel("total gut"))
}

func TestRepairFromCondition(t *testing.T) {
	assert.Equal(t, model.RepairLight, RepairFromCondition(model.ConditionExcellent))
	assert.Equal(t, model.RepairLight, RepairFromCondition(model.ConditionGood))
	assert.Equal(t, model.RepairMedium, RepairFromCondition(model.ConditionMedium))
	assert.Equal(t, model.RepairHeavy, RepairFromCondition(model.ConditionFair))
	assert.Equal(t, model.RepairHeavy, RepairFromCondition(model.ConditionPoor))
}
