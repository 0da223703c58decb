package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// DateLayout is the layout of the Date column written by WriteFrame.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate parses a date cell in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// ReadFrame reads a date-indexed CSV: the first column holds dates, every
// other column one ticker. Rows are returned in ascending date order and a
// repeated ticker column keeps its first occurrence.
func ReadFrame(r io.Reader) (*models.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return models.NewFrame(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header")
	}

	type row struct {
		date   time.Time
		values []float64
	}
	var rows []row
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
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		date, err := ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values := make([]float64, len(header)-1)
		for i := range values {
			values[i] = math.NaN()
			if i+1 < len(rec) {
				v, err := ParseFloat(rec[i+1])
				if err != nil {
					return nil, fmt.Errorf("line %d column %s: %w", line, header[i+1], err)
				}
				values[i] = v
			}
		}
		rows = append(rows, row{date: date, values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = r.date
	}
	frame := models.NewFrame(dates)
	for c, ticker := range header[1:] {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = r.values[c]
		}
		frame.AddColumn(strings.TrimSpace(ticker), col)
	}
	return frame, nil
}

// WriteFrame writes a frame as a Date-indexed CSV.
func WriteFrame(w io.Writer, frame *models.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, frame.Tickers...)); err != nil {
		return err
	}
	rec := make([]string, len(frame.Tickers)+1)
	for i, d := range frame.Dates {
		rec[0] = d.Format(DateLayout)
		for c, ticker := range frame.Tickers {
			rec[c+1] = FormatFloat(frame.Value(ticker, i))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
