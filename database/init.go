package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id             TEXT PRIMARY KEY,
    created_at         TEXT NOT NULL,
    business_name      TEXT NOT NULL DEFAULT '',
    user_name          TEXT NOT NULL DEFAULT '',
    user_email         TEXT NOT NULL DEFAULT '',
    property_file      TEXT NOT NULL DEFAULT '',
    comps_file         TEXT NOT NULL DEFAULT '',
    avg_price_per_sqft REAL NOT NULL,
    comps_count        INTEGER NOT NULL,
    property_count     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_properties (
    run_id             TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    seq                INTEGER NOT NULL,
    address            TEXT NOT NULL DEFAULT '',
    city               TEXT NOT NULL DEFAULT '',
    state              TEXT NOT NULL DEFAULT '',
    zip                TEXT NOT NULL DEFAULT '',
    listing_price      REAL,
    living_sqft        REAL,
    condition_estimate TEXT NOT NULL DEFAULT 'Medium',
    arv                REAL,
    offer_price        REAL,
    high_potential     INTEGER NOT NULL DEFAULT 0,
    loi_file           TEXT NOT NULL DEFAULT '',
    loi_sent           INTEGER NOT NULL DEFAULT 0,
    record_json        TEXT NOT NULL DEFAULT '{}',
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_run_properties_high_potential
    ON run_properties (high_potential);
`

// InitDatabase applies the schema. Idempotent, run at startup.
func InitDatabase(db *sqlx.DB) error {
	log.Info().Msg("Applying database schema...")
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
