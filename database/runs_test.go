package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/pipeline"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitDatabase(db))
	return db
}

func sampleRecord(addr string, arv float64) pipeline.Record {
	return pipeline.Record{
		Fields: []string{pipeline.FieldAddress, pipeline.FieldARV, pipeline.FieldHighPotential},
		Values: map[string]any{
			pipeline.FieldAddress:       addr,
			pipeline.FieldCity:          "Austin",
			pipeline.FieldCondition:     "Medium",
			pipeline.FieldARV:           arv,
			pipeline.FieldOfferPrice:    arv * 0.6,
			pipeline.FieldHighPotential: false,
			pipeline.FieldLOIFile:       "LOI_x.html",
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := testDB(t)

	p1, err := PropertyFromRecord("run-1", 1, sampleRecord("123 Main St", 400000))
	require.NoError(t, err)
	p2, err := PropertyFromRecord("run-1", 2, sampleRecord("456 Oak Ave", 250000))
	require.NoError(t, err)

	run := Run{
		RunID:           "run-1",
		BusinessName:    "Acme",
		AvgPricePerSqft: 200,
		CompsCount:      5,
	}
	require.NoError(t, SaveRun(db, run, []RunProperty{p1, p2}))

	runs, err := ListRuns(db)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].PropertyCount)
	assert.NotEmpty(t, runs[0].CreatedAt)

	props, err := GetRunProperties(db, "run-1")
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "123 Main St", props[0].Address)
	require.NotNil(t, props[0].ARV)
	assert.InDelta(t, 400000, *props[0].ARV, 1e-9)
	assert.Contains(t, props[0].RecordJSON, "123 Main St")
}

func TestPropertyFromRecordMissingNumbers(t *testing.T) {
	rec := pipeline.Record{Values: map[string]any{
		pipeline.FieldAddress: "9 Pine Rd",
		pipeline.FieldARV:     "", // explicit empty marker
	}}
	p, err := PropertyFromRecord("run-1", 1, rec)
	require.NoError(t, err)
	assert.Nil(t, p.ARV)
	assert.Nil(t, p.OfferPrice)
	assert.False(t, p.HighPotential)
}

func TestGetRunMissing(t *testing.T) {
	db := testDB(t)
	run, err := GetRun(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestMarkLOISent(t *testing.T) {
	db := testDB(t)
	p, err := PropertyFromRecord("run-1", 1, sampleRecord("123 Main St", 1000))
	require.NoError(t, err)
	require.NoError(t, SaveRun(db, Run{RunID: "run-1"}, []RunProperty{p}))

	require.NoError(t, MarkLOISent(db, "run-1", 1, true))
	props, err := GetRunProperties(db, "run-1")
	require.NoError(t, err)
	assert.True(t, props[0].LOISent)

	assert.Error(t, MarkLOISent(db, "run-1", 99, true))
}
