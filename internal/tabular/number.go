// Package tabular converts between CSV files, frames, tables and the JSON mirror.
package tabular

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders a value for a CSV cell. NaN is written as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat reads a CSV cell. Empty and "nan" cells are NaN.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return math.NaN(), nil
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}
