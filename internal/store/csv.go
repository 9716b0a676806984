package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVHeader is the column order of the CSV export.
var CSVHeader = []string{"id", "name", "quantity", "price", "category"}

// ExportCSV serializes the current snapshot as CSV, one row per product plus
// a header row. Pure read, no mutation.
func (s *Store) ExportCSV() ([]byte, error) {
	snap := s.Snapshot()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("encode csv header: %w", err)
	}
	for _, p := range snap {
		row := []string{
			p.ID,
			p.Name,
			strconv.Itoa(p.Quantity),
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			p.Category,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv row for %s: %w", p.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
