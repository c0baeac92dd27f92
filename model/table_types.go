package model

// RawRecord is one row of an uploaded dataset, keyed by source column name.
// Values are the raw cell strings exactly as parsed; normalization happens
// downstream.
type RawRecord map[string]string

// Table is an ordered tabular dataset. Columns preserves the header order of
// the source file, which column resolution depends on for tie-breaking.
type Table struct {
	Columns []string    `json:"columns"`
	Rows    []RawRecord `json:"rows"`
}

// Get returns the cell value for a column, or "" when absent.
func (r RawRecord) Get(column string) string {
	if v, ok := r[column]; ok {
		return v
	}
	return ""
}
