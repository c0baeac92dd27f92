package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"dealdesk/columns"
	"dealdesk/compstats"
	"dealdesk/model"
	"dealdesk/normalize"
	"dealdesk/valuation"
)

// Identity is the caller-supplied signature block passed through to every
// generated document.
type Identity struct {
	BusinessName string `json:"businessName"`
	UserName     string `json:"userName"`
	UserEmail    string `json:"userEmail"`
}

// DocumentGenerator is the external collaborator that turns one assembled
// record into a document. Failures are per-property: the pipeline records
// them inline and keeps going.
type DocumentGenerator interface {
	Generate(rec Record, id Identity) (string, error)
}

// Result is one pipeline run: the single read-only comp aggregate plus one
// assembled record per subject property. The pipeline holds no state
// between runs.
type Result struct {
	Stats      model.CompStatistic `json:"stats"`
	Properties []Record            `json:"properties"`
}

// NoValidCompsError is the batch-fatal signal for a comps dataset that
// resolved its columns but yielded zero usable rows.
type NoValidCompsError struct {
	Rows        int
	PriceColumn string
	AreaColumn  string
}

func (e *NoValidCompsError) Error() string {
	return fmt.Sprintf("no valid comps after cleaning: 0 of %d rows had a positive price (%q) and living area (%q)",
		e.Rows, e.PriceColumn, e.AreaColumn)
}

// Run executes the valuation pipeline over two parsed tables. It is a pure
// function of its inputs apart from the per-property document generation,
// which may be nil when no documents are wanted.
//
// Fatal errors (unresolvable comps columns, zero valid comps) abort the run.
// Per-property problems degrade that property's fields instead.
func Run(props, comps model.Table, pol valuation.Policy, id Identity, gen DocumentGenerator) (*Result, error) {
	compRules := columns.CompRules()
	compRes := columns.Resolve(comps.Columns, compRules)
	if err := columns.Require(compRes, comps.Columns, compRules, columns.FieldPrice, columns.FieldLivingArea); err != nil {
		return nil, fmt.Errorf("comps dataset: %w", err)
	}

	stats := compstats.Compute(compstats.BuildComps(comps, compRes))
	if stats.SampleCount == 0 {
		priceCol, _ := compRes.Column(columns.FieldPrice)
		areaCol, _ := compRes.Column(columns.FieldLivingArea)
		return nil, &NoValidCompsError{Rows: len(comps.Rows), PriceColumn: priceCol, AreaColumn: areaCol}
	}
	log.Info().
		Float64("avgPricePerSqft", stats.AvgPricePerSqft).
		Int("sampleCount", stats.SampleCount).
		Msg("comp statistics computed")

	propRes := columns.Resolve(props.Columns, columns.PropertyRules())

	result := &Result{Stats: stats, Properties: make([]Record, 0, len(props.Rows))}
	for i, row := range props.Rows {
		rec := assemble(row, props.Columns, propRes, stats, pol)

		if gen != nil {
			file, err := gen.Generate(rec, id)
			if err != nil {
				log.Warn().Int("property", i+1).Err(err).Msg("document generation failed")
				rec.Values[FieldLOIFile] = DocumentError
			} else {
				rec.Values[FieldLOIFile] = file
			}
		}
		result.Properties = append(result.Properties, rec)
	}
	return result, nil
}

func valuationInput(row model.RawRecord, res columns.Resolution) valuation.Input {
	in := valuation.Input{Condition: model.ConditionMedium, RepairLevel: model.RepairMedium}

	if col, ok := res.Column(columns.FieldLivingArea); ok {
		in.LivingArea = normalize.Number(row.Get(col))
	}
	if col, ok := res.Column(columns.FieldListingPrice); ok {
		in.ListingPrice = normalize.Number(row.Get(col))
	}
	if col, ok := res.Column(columns.FieldCondition); ok {
		in.Condition = normalize.Condition(row.Get(col))
	}
	if col, ok := res.Column(columns.FieldRepairLevel); ok && row.Get(col) != "" {
		in.RepairLevel = normalize.RepairLevel(row.Get(col))
	} else {
		in.RepairLevel = normalize.RepairFromCondition(in.Condition)
	}
	return in
}
