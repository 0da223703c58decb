package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Document is the JSON mirror of a table, as read by the dashboard.
type Document struct {
	Columns     []string        `json:"columns"`
	Data        [][]interface{} `json:"data"`
	Index       []interface{}   `json:"index"`
	IndexName   string          `json:"index_name,omitempty"`
	LastUpdated string          `json:"last_updated"`
}

// LastUpdatedLayout is the timestamp layout of Document.LastUpdated.
const LastUpdatedLayout = "2006-01-02T15:04:05"

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// cellValue maps a CSV cell to its JSON value. Numbers are emitted verbatim so
// that the text survives a round trip; empty cells are null.
func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	if jsonNumber.MatchString(s) {
		return json.Number(s)
	}
	return s
}

func cellString(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	default:
		return "", fmt.Errorf("unsupported cell %T", v)
	}
}

// TableToJSON encodes a table as an indented JSON document.
func TableToJSON(t *models.Table, updated time.Time) ([]byte, error) {
	doc := Document{
		Columns:     t.Columns,
		Data:        make([][]interface{}, len(t.Rows)),
		LastUpdated: updated.Format(LastUpdatedLayout),
	}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for c, s := range row {
			cells[c] = cellValue(s)
		}
		doc.Data[i] = cells
	}
	if t.HasIndex() {
		doc.IndexName = t.IndexName
		doc.Index = make([]interface{}, len(t.Index))
		for i, s := range t.Index {
			doc.Index[i] = cellValue(s)
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// TableFromJSON decodes a JSON document back into a table.
func TableFromJSON(data []byte) (*models.Table, time.Time, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode table: %w", err)
	}

	t := models.NewTable(doc.Columns...)
	for i, cells := range doc.Data {
		if len(cells) > len(doc.Columns) {
			return nil, time.Time{}, fmt.Errorf("row %d: %d cells for %d columns", i, len(cells), len(doc.Columns))
		}
		row := make([]string, len(cells))
		for c, v := range cells {
			s, err := cellString(v)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("row %d: %w", i, err)
			}
			row[c] = s
		}
		t.Append(row...)
	}
	if doc.Index != nil {
		t.IndexName = doc.IndexName
		t.Index = make([]string, len(doc.Index))
		for i, v := range doc.Index {
			s, err := cellString(v)
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("index %d: %w", i, err)
			}
			t.Index[i] = s
		}
	}

	var updated time.Time
	if doc.LastUpdated != "" {
		if ts, err := time.Parse(LastUpdatedLayout, doc.LastUpdated); err == nil {
			updated = ts
		}
	}
	return t, updated, nil
}
