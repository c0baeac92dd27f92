package compstats

import (
	"database/sql"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"dealdesk/columns"
	"dealdesk/model"
	"dealdesk/normalize"
)

const iqrFence = 1.5

// BuildComps normalizes each comps row against its resolved price and area
// columns. PricePerSqft is computed only when both inputs are valid, finite
// and strictly positive; other rows keep an invalid PricePerSqft and are
// excluded by Compute.
func BuildComps(t model.Table, res columns.Resolution) []model.CompRecord {
	priceCol, _ := res.Column(columns.FieldPrice)
	areaCol, _ := res.Column(columns.FieldLivingArea)

	records := make([]model.CompRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := model.CompRecord{
			Price:      normalize.Number(row.Get(priceCol)),
			LivingArea: normalize.Number(row.Get(areaCol)),
		}
		if usable(rec.Price) && usable(rec.LivingArea) {
			ppsf := rec.Price.Float64 / rec.LivingArea.Float64
			if !math.IsInf(ppsf, 0) && !math.IsNaN(ppsf) {
				rec.PricePerSqft = sql.NullFloat64{Float64: ppsf, Valid: true}
			}
		}
		records = append(records, rec)
	}
	return records
}

func usable(v sql.NullFloat64) bool {
	return v.Valid && v.Float64 > 0 && !math.IsInf(v.Float64, 0) && !math.IsNaN(v.Float64)
}

// Compute aggregates the valid price-per-sqft values into a CompStatistic.
// The zero value signals that no usable comps were found. When IQR filtering
// would reject every row, the full valid set is used instead.
func Compute(comps []model.CompRecord) model.CompStatistic {
	var valid []float64
	for _, c := range comps {
		if c.PricePerSqft.Valid && c.PricePerSqft.Float64 > 0 {
			valid = append(valid, c.PricePerSqft.Float64)
		}
	}
	if len(valid) == 0 {
		return model.CompStatistic{}
	}

	kept := FilterOutliers(valid)
	if len(kept) == 0 {
		kept = valid
	}
	return model.CompStatistic{
		AvgPricePerSqft: stat.Mean(kept, nil),
		SampleCount:     len(kept),
	}
}

// FilterOutliers retains the values inside [Q1-1.5*IQR, Q3+1.5*IQR],
// re-applying the fence until no further values fall outside. Running the
// filter over its own output is therefore a no-op. A single pass never
// empties a non-empty set (the quartiles are sample values), so neither
// does the iteration. Input order is preserved; the input slice is not
// modified.
func FilterOutliers(values []float64) []float64 {
	kept := values
	for {
		next := fencePass(kept)
		if len(next) == len(kept) {
			return next
		}
		kept = next
	}
}

func fencePass(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	lo := q1 - iqrFence*iqr
	hi := q3 + iqrFence*iqr

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v <= hi {
			kept = append(kept, v)
		}
	}
	return kept
}
