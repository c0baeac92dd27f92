package compstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/columns"
	"dealdesk/model"
)

func compsTable(rows ...model.RawRecord) (model.Table, columns.Resolution) {
	t := model.Table{
		Columns: []string{"Last Sale Amount", "Living Square Feet"},
		Rows:    rows,
	}
	return t, columns.Resolve(t.Columns, columns.CompRules())
}

func TestComputeDirtyCurrencyScenario(t *testing.T) {
	table, res := compsTable(
		model.RawRecord{"Last Sale Amount": "$200,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "$300,000", "Living Square Feet": "1,500"},
	)
	stats := Compute(BuildComps(table, res))

	assert.InDelta(t, 200.0, stats.AvgPricePerSqft, 1e-9)
	assert.Equal(t, 2, stats.SampleCount)
}

func TestComputeNoValidRows(t *testing.T) {
	table, res := compsTable(
		model.RawRecord{"Last Sale Amount": "", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "$250,000", "Living Square Feet": "0"},
		model.RawRecord{"Last Sale Amount": "N/A", "Living Square Feet": "N/A"},
		model.RawRecord{"Last Sale Amount": "-100000", "Living Square Feet": "1,200"},
	)
	stats := Compute(BuildComps(table, res))

	assert.Zero(t, stats.AvgPricePerSqft)
	assert.Zero(t, stats.SampleCount)
}

func TestComputeRejectsExtremeOutlier(t *testing.T) {
	table, res := compsTable(
		model.RawRecord{"Last Sale Amount": "140,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "145,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "150,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "155,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "160,000", "Living Square Feet": "1,000"},
		model.RawRecord{"Last Sale Amount": "10,000,000", "Living Square Feet": "1,000"},
	)
	stats := Compute(BuildComps(table, res))

	assert.Equal(t, 5, stats.SampleCount)
	assert.InDelta(t, 150.0, stats.AvgPricePerSqft, 1e-9)
}

func TestComputeSingleExtremeValueKept(t *testing.T) {
	// A lone comp is its own quartile range; it must never be rejected.
	table, res := compsTable(
		model.RawRecord{"Last Sale Amount": "10,000,000", "Living Square Feet": "1,000"},
	)
	stats := Compute(BuildComps(table, res))

	assert.Equal(t, 1, stats.SampleCount)
	assert.InDelta(t, 10000.0, stats.AvgPricePerSqft, 1e-9)
}

func TestFilterOutliersIdempotent(t *testing.T) {
	values := []float64{140, 145, 150, 155, 160, 10000}
	once := FilterOutliers(values)
	twice := FilterOutliers(once)

	require.Equal(t, []float64{140, 145, 150, 155, 160}, once)
	assert.Equal(t, once, twice)
}

func TestFilterOutliersDegenerateQuartiles(t *testing.T) {
	// Removing the extreme value collapses the IQR to zero, which puts a
	// second value outside the fence. The filter must keep going until the
	// fence rejects nothing, so re-filtering the result changes nothing.
	values := []float64{1, 1, 1, 1, 10, 1000}
	once := FilterOutliers(values)
	twice := FilterOutliers(once)

	require.Equal(t, []float64{1, 1, 1, 1}, once)
	assert.Equal(t, once, twice)
}

func TestFilterOutliersEmptyInput(t *testing.T) {
	assert.Empty(t, FilterOutliers(nil))
}

func TestBuildCompsValidityInvariant(t *testing.T) {
	table, res := compsTable(
		model.RawRecord{"Last Sale Amount": "$120,000", "Living Square Feet": ""},
		model.RawRecord{"Last Sale Amount": "$120,000", "Living Square Feet": "800"},
	)
	comps := BuildComps(table, res)
	require.Len(t, comps, 2)

	assert.False(t, comps[0].PricePerSqft.Valid)
	require.True(t, comps[1].PricePerSqft.Valid)
	assert.InDelta(t, 150.0, comps[1].PricePerSqft.Float64, 1e-9)
}
