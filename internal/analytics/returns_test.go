package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReturns_ThreeDayScenario(t *testing.T) {
	// Mon..Wed of one week, month started on a weekend before the series
	f := buildFrame(t, []string{"2024-06-03", "2024-06-04", "2024-06-05"},
		series{"AGIX", []float64{100, 110, 121}},
	)

	records := CalculateReturns(f, "AGIX")
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, 121.0/110.0-1, rec.DTD)
	assert.InDelta(t, 0.10, rec.DTD, 1e-12)
	assert.InDelta(t, 0.21, rec.SinceLaunch, 1e-12)
	assert.InDelta(t, 0.21, rec.WTD, 1e-12)
	assert.True(t, math.IsNaN(rec.MTD), "month start precedes the series")
	assert.True(t, math.IsNaN(rec.YTD), "year start precedes the series")
}

func TestCalculateReturns_CalendarAnchors(t *testing.T) {
	// 2024-05-31 Fri, 2024-06-03 Mon .. 2024-06-12 Wed
	dates := []string{"2023-12-29", "2024-05-31", "2024-06-03", "2024-06-07", "2024-06-10", "2024-06-12"}
	f := buildFrame(t, dates,
		series{"AGIX", []float64{50, 80, 90, 95, 100, 110}},
	)

	rec := CalculateReturns(f, "AGIX")[0]

	assert.InDelta(t, 110.0/100.0-1, rec.DTD, 1e-12)
	assert.InDelta(t, 110.0/100.0-1, rec.WTD, 1e-12, "week anchor is monday 06-10")
	assert.InDelta(t, 110.0/80.0-1, rec.MTD, 1e-12, "june 1st is a saturday, anchor is 05-31")
	assert.InDelta(t, 110.0/50.0-1, rec.YTD, 1e-12, "jan 1st resolves to 2023-12-29")
	assert.InDelta(t, 110.0/50.0-1, rec.SinceLaunch, 1e-12)
}

func TestCalculateReturns_SinceLaunchAnchor(t *testing.T) {
	dates := []string{"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06"}
	// The fund launches on row 1. EARLY listed before it, LATE after it,
	// HOLE has no price on the fund's first day.
	f := buildFrame(t, dates,
		series{"EARLY", []float64{10, 20, 25, 40}},
		series{"AGIX", []float64{nan, 100, 105, 110}},
		series{"LATE", []float64{nan, nan, 50, 60}},
		series{"HOLE", []float64{5, nan, 8, 10}},
	)

	records := CalculateReturns(f, "AGIX")

	assert.InDelta(t, 40.0/20.0-1, recordFor(t, records, "EARLY").SinceLaunch, 1e-12, "common inception used")
	assert.InDelta(t, 0.10, recordFor(t, records, "AGIX").SinceLaunch, 1e-12)
	assert.InDelta(t, 60.0/50.0-1, recordFor(t, records, "LATE").SinceLaunch, 1e-12, "falls back to own listing")
	// Missing on the inception row falls back to the ticker's own first
	// valid row, even though that row predates the fund.
	assert.InDelta(t, 10.0/5.0-1, recordFor(t, records, "HOLE").SinceLaunch, 1e-12)
}

func TestCalculateReturns_ReferenceAbsent(t *testing.T) {
	dates := []string{"2024-06-03", "2024-06-04", "2024-06-05"}
	f := buildFrame(t, dates,
		series{"A", []float64{10, 11, 12}},
		series{"B", []float64{nan, 20, 30}},
	)

	records := CalculateReturns(f, "AGIX")

	assert.InDelta(t, 0.2, recordFor(t, records, "A").SinceLaunch, 1e-12, "first row is the common inception")
	assert.InDelta(t, 0.5, recordFor(t, records, "B").SinceLaunch, 1e-12)
}

func TestCalculateReturns_MissingDataIsNaN(t *testing.T) {
	dates := []string{"2024-06-03", "2024-06-04", "2024-06-05"}
	f := buildFrame(t, dates,
		series{"DEAD", []float64{10, 11, nan}},
		series{"GAP", []float64{10, nan, 12}},
		series{"ZERO", []float64{0, 1, 2}},
	)

	records := CalculateReturns(f, "DEAD")

	dead := recordFor(t, records, "DEAD")
	for _, v := range dead.Values() {
		assert.True(t, math.IsNaN(v))
	}
	assert.True(t, math.IsNaN(recordFor(t, records, "GAP").DTD))
	assert.InDelta(t, 0.2, recordFor(t, records, "GAP").WTD, 1e-12)
	assert.InDelta(t, 1.0, recordFor(t, records, "ZERO").DTD, 1e-12)
	assert.True(t, math.IsNaN(recordFor(t, records, "ZERO").WTD), "zero anchor price has no return")
}

func TestCalculateReturns_EmptyFrame(t *testing.T) {
	f := buildFrame(t, nil)
	f.AddColumn("A", nil)

	records := CalculateReturns(f, "A")
	require.Len(t, records, 1)
	assert.True(t, math.IsNaN(records[0].DTD))
}
