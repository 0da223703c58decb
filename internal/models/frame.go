package models

import (
	"math"
	"time"
)

// Frame is a dense date × ticker matrix of closes or volumes.
// Dates are ascending; missing cells are NaN. Columns are stored
// per ticker so that per-series calculations avoid strided access.
type Frame struct {
	Dates   []time.Time
	Tickers []string
	Columns map[string][]float64
}

// NewFrame creates an empty frame over the given dates.
func NewFrame(dates []time.Time) *Frame {
	return &Frame{
		Dates:   dates,
		Columns: make(map[string][]float64),
	}
}

// AddColumn appends a ticker column. A ticker already present is left untouched
// and false is returned. Short columns are padded with NaN.
func (f *Frame) AddColumn(ticker string, values []float64) bool {
	if _, ok := f.Columns[ticker]; ok {
		return false
	}
	col := make([]float64, len(f.Dates))
	for i := range col {
		if i < len(values) {
			col[i] = values[i]
		} else {
			col[i] = math.NaN()
		}
	}
	f.Tickers = append(f.Tickers, ticker)
	f.Columns[ticker] = col
	return true
}

// Column returns a ticker's values, or nil if absent.
func (f *Frame) Column(ticker string) []float64 {
	return f.Columns[ticker]
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Dates)
}

// Latest returns the last date in the frame.
func (f *Frame) Latest() (time.Time, bool) {
	if len(f.Dates) == 0 {
		return time.Time{}, false
	}
	return f.Dates[len(f.Dates)-1], true
}

// FirstValid returns the first row holding a value for ticker, or -1.
func (f *Frame) FirstValid(ticker string) int {
	for i, v := range f.Columns[ticker] {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// Value returns the cell at row i for ticker, NaN when absent.
func (f *Frame) Value(ticker string, i int) float64 {
	col := f.Columns[ticker]
	if i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}
