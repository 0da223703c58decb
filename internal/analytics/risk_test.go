package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	assert.Equal(t, []float64{}, DailyReturns([]float64{100}))
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, DailyReturns([]float64{100, 110, 121}), 1e-12)
	assert.InDeltaSlice(t, []float64{0.1}, DailyReturns([]float64{nan, 100, nan, 110}), 1e-12,
		"missing cells are skipped, not treated as a zero return")
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"monotone rise", []float64{0.01, 0.02, 0, 0.05}, 0},
		{"flat", []float64{0, 0, 0}, 0},
		{"single decline", []float64{0.1, -0.5, 0.2}, -0.5},
		{"first return negative", []float64{-0.2, 0.1}, 0},
		{"recovery then deeper fall", []float64{0.25, -0.2, 0.25, -0.4}, -0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.returns), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(MaxDrawdown(nil)))
}

func TestMaxDrawdown_NeverPositive(t *testing.T) {
	// Deterministic pseudo-random walk
	seed := uint32(7)
	returns := make([]float64, 500)
	for i := range returns {
		seed = seed*1664525 + 1013904223
		returns[i] = (float64(seed%2001) - 1000) / 20000 // within +-5%
	}

	for n := 1; n <= len(returns); n += 37 {
		dd := MaxDrawdown(returns[:n])
		assert.LessOrEqual(t, dd, 0.0)
	}
}

func TestMaxDrawdown_ZeroOnlyWhenNonDecreasing(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{0.1, 0.0, 0.3}))
	assert.Less(t, MaxDrawdown([]float64{0.1, -0.0001, 0.3}), 0.0)
}

func TestCalculateRisk(t *testing.T) {
	f := buildFrame(t, []string{"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06"},
		series{"UPDOWN", []float64{100, 110, 99, 108.9}},
		series{"FLAT", []float64{10, 10, 10, 10}},
		series{"LATE", []float64{nan, nan, 50, 55}},
	)

	records := CalculateRisk(f, RiskOptions{RiskFreeRate: 0.02, TradingDays: 252})
	require.Len(t, records, 3)

	upDown := records[0]
	returns := []float64{0.1, -0.1, 0.1}
	mean := (0.1 - 0.1 + 0.1) / 3
	assert.InDelta(t, mean*252, upDown.AnnualizedReturn, 1e-9)
	assert.InDelta(t, SampleStdDev(returns)*math.Sqrt(252), upDown.AnnualizedVolatility, 1e-9)
	assert.InDelta(t, (upDown.AnnualizedReturn-0.02)/upDown.AnnualizedVolatility, upDown.SharpeRatio, 1e-9)
	assert.InDelta(t, -0.1, upDown.MaxDrawdown, 1e-9)
	assert.Equal(t, 3, upDown.Observations)

	flat := records[1]
	assert.Equal(t, 0.0, flat.AnnualizedVolatility)
	assert.True(t, math.IsNaN(flat.SharpeRatio), "zero volatility has no Sharpe ratio")
	assert.Equal(t, 0.0, flat.MaxDrawdown)

	late := records[2]
	assert.Equal(t, 1, late.Observations, "risk uses each column's own history")
	assert.InDelta(t, 0.1*252, late.AnnualizedReturn, 1e-9)
	assert.True(t, math.IsNaN(late.AnnualizedVolatility), "one return has no sample deviation")
	assert.True(t, math.IsNaN(late.SharpeRatio))
}

func TestSampleStdDev(t *testing.T) {
	assert.InDelta(t, math.Sqrt(0.02), SampleStdDev([]float64{0.1, -0.1}), 1e-12)
	assert.True(t, math.IsNaN(SampleStdDev([]float64{1})))
}
