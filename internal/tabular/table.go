package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// ReadTable reads a CSV with a header row. Every column, including the first,
// becomes a table column; the table has no index.
func ReadTable(r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return models.NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := models.NewTable(header...)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("line %d: %d cells for %d columns", line, len(rec), len(header))
		}
		t.Append(rec...)
	}
	return t, nil
}

// WriteTable writes a table as CSV. An indexed table writes its index as the
// first column, headed by IndexName.
func WriteTable(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)

	header := t.Columns
	if t.HasIndex() {
		header = append([]string{t.IndexName}, t.Columns...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		rec := row
		if t.HasIndex() {
			idx := ""
			if i < len(t.Index) {
				idx = t.Index[i]
			}
			rec = append([]string{idx}, row...)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
