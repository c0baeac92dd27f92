package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"dealdesk/model"
)

// ParseTable reads an uploaded CSV dataset into an ordered Table. Header
// names are whitespace-trimmed, ragged rows are tolerated (short rows get
// empty cells, long rows drop the extras), fully-empty rows are skipped,
// and unreadable rows are logged and skipped rather than failing the file.
func ParseTable(r io.Reader) (model.Table, error) {
	reader := csv.NewReader(DecodeReader(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return model.Table{}, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make([]string, len(header))
	for i, c := range header {
		cols[i] = strings.TrimSpace(c)
	}

	table := model.Table{Columns: cols}
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping unreadable CSV row")
			continue
		}

		row := make(model.RawRecord, len(cols))
		empty := true
		for i, col := range cols {
			var cell string
			if i < len(rec) {
				cell = strings.TrimSpace(rec[i])
			}
			if cell != "" {
				empty = false
			}
			row[col] = cell
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
