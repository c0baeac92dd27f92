package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"dealdesk/pipeline"
)

// Run is one persisted pipeline execution.
type Run struct {
	RunID           string  `db:"run_id" json:"runId"`
	CreatedAt       string  `db:"created_at" json:"createdAt"`
	BusinessName    string  `db:"business_name" json:"businessName"`
	UserName        string  `db:"user_name" json:"userName"`
	UserEmail       string  `db:"user_email" json:"userEmail"`
	PropertyFile    string  `db:"property_file" json:"propertyFile"`
	CompsFile       string  `db:"comps_file" json:"compsFile"`
	AvgPricePerSqft float64 `db:"avg_price_per_sqft" json:"avgPricePerSqft"`
	CompsCount      int     `db:"comps_count" json:"compsCount"`
	PropertyCount   int     `db:"property_count" json:"propertyCount"`
}

// RunProperty is one subject property's persisted result row. The typed
// columns exist for querying; record_json holds the full assembled record
// as handed to the document generator.
type RunProperty struct {
	RunID             string   `db:"run_id" json:"runId"`
	Seq               int      `db:"seq" json:"seq"`
	Address           string   `db:"address" json:"address"`
	City              string   `db:"city" json:"city"`
	State             string   `db:"state" json:"state"`
	Zip               string   `db:"zip" json:"zip"`
	ListingPrice      *float64 `db:"listing_price" json:"listingPrice"`
	LivingSqft        *float64 `db:"living_sqft" json:"livingSqft"`
	ConditionEstimate string   `db:"condition_estimate" json:"conditionEstimate"`
	ARV               *float64 `db:"arv" json:"arv"`
	OfferPrice        *float64 `db:"offer_price" json:"offerPrice"`
	HighPotential     bool     `db:"high_potential" json:"highPotential"`
	LOIFile           string   `db:"loi_file" json:"loiFile"`
	LOISent           bool     `db:"loi_sent" json:"loiSent"`
	RecordJSON        string   `db:"record_json" json:"-"`
}

// PropertyFromRecord flattens an assembled pipeline record into a storable
// row.
func PropertyFromRecord(runID string, seq int, rec pipeline.Record) (RunProperty, error) {
	raw, err := json.Marshal(rec.Values)
	if err != nil {
		return RunProperty{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	numPtr := func(field string) *float64 {
		if v, ok := rec.Number(field); ok {
			return &v
		}
		return nil
	}

	return RunProperty{
		RunID:             runID,
		Seq:               seq,
		Address:           rec.String(pipeline.FieldAddress),
		City:              rec.String(pipeline.FieldCity),
		State:             rec.String(pipeline.FieldState),
		Zip:               rec.String(pipeline.FieldZip),
		ListingPrice:      numPtr(pipeline.FieldListingPrice),
		LivingSqft:        numPtr(pipeline.FieldLivingSqft),
		ConditionEstimate: rec.String(pipeline.FieldCondition),
		ARV:               numPtr(pipeline.FieldARV),
		OfferPrice:        numPtr(pipeline.FieldOfferPrice),
		HighPotential:     rec.Bool(pipeline.FieldHighPotential),
		LOIFile:           rec.String(pipeline.FieldLOIFile),
		LOISent:           rec.Bool(pipeline.FieldLOISent),
		RecordJSON:        string(raw),
	}, nil
}

// SaveRun stores a run and its property rows in one transaction.
func SaveRun(db *sqlx.DB, run Run, props []RunProperty) error {
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().Format(time.RFC3339)
	}
	run.PropertyCount = len(props)

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`
		INSERT INTO runs (run_id, created_at, business_name, user_name, user_email,
		                  property_file, comps_file, avg_price_per_sqft, comps_count, property_count)
		VALUES (:run_id, :created_at, :business_name, :user_name, :user_email,
		        :property_file, :comps_file, :avg_price_per_sqft, :comps_count, :property_count)`,
		run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, p := range props {
		if _, err := tx.NamedExec(`
			INSERT INTO run_properties (run_id, seq, address, city, state, zip,
			                            listing_price, living_sqft, condition_estimate,
			                            arv, offer_price, high_potential, loi_file, loi_sent, record_json)
			VALUES (:run_id, :seq, :address, :city, :state, :zip,
			        :listing_price, :living_sqft, :condition_estimate,
			        :arv, :offer_price, :high_potential, :loi_file, :loi_sent, :record_json)`,
			p); err != nil {
			return fmt.Errorf("failed to insert property %d: %w", p.Seq, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns all persisted runs, newest first.
func ListRuns(db *sqlx.DB) ([]Run, error) {
	runs := []Run{}
	if err := db.Select(&runs, `SELECT * FROM runs ORDER BY created_at DESC, run_id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches one run, or nil when absent.
func GetRun(db *sqlx.DB, runID string) (*Run, error) {
	var run Run
	err := db.Get(&run, `SELECT * FROM runs WHERE run_id = ?`, runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return &run, nil
}

// GetRunProperties returns a run's property rows in pipeline order.
func GetRunProperties(db *sqlx.DB, runID string) ([]RunProperty, error) {
	props := []RunProperty{}
	if err := db.Select(&props, `SELECT * FROM run_properties WHERE run_id = ? ORDER BY seq`, runID); err != nil {
		return nil, fmt.Errorf("failed to get properties for run %s: %w", runID, err)
	}
	return props, nil
}

// MarkLOISent flips a property's LOI-sent flag.
func MarkLOISent(db *sqlx.DB, runID string, seq int, sent bool) error {
	res, err := db.Exec(`UPDATE run_properties SET loi_sent = ? WHERE run_id = ? AND seq = ?`, sent, runID, seq)
	if err != nil {
		return fmt.Errorf("failed to update loi_sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no property %d in run %s", seq, runID)
	}
	return nil
}
