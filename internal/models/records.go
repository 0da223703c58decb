package models

import "math"

// Return metric names, in output column order
const (
	MetricDTD         = "DTD"
	MetricWTD         = "WTD"
	MetricMTD         = "MTD"
	MetricYTD         = "YTD"
	MetricSinceLaunch = "Since Launch"
)

// ReturnMetrics lists the return metrics in output column order.
var ReturnMetrics = []string{MetricDTD, MetricWTD, MetricMTD, MetricYTD, MetricSinceLaunch}

// Tags are the descriptive columns joined onto every per-ticker table.
type Tags struct {
	Type     string
	Industry string
	Weight   float64 // NaN when the ticker is not a holding
}

// ReturnRecord holds fractional period returns for one ticker.
// A NaN field means the anchor price was unavailable.
type ReturnRecord struct {
	Ticker      string
	DTD         float64
	WTD         float64
	MTD         float64
	YTD         float64
	SinceLaunch float64
	Tags
}

// Values returns the metrics in ReturnMetrics order.
func (r *ReturnRecord) Values() []float64 {
	return []float64{r.DTD, r.WTD, r.MTD, r.YTD, r.SinceLaunch}
}

// NewMissingReturn returns a record with every metric missing.
func NewMissingReturn(ticker string) ReturnRecord {
	nan := math.NaN()
	return ReturnRecord{Ticker: ticker, DTD: nan, WTD: nan, MTD: nan, YTD: nan, SinceLaunch: nan}
}

// RiskRecord holds annualised statistics for one ticker.
// SharpeRatio is NaN when volatility is zero or undefined.
type RiskRecord struct {
	Ticker               string
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
	MaxDrawdown          float64
	Observations         int
	Tags
}

// VolumeRecord holds volume statistics for one ticker.
type VolumeRecord struct {
	Ticker            string
	AvgDailyVolume    float64
	AvgDailyChangePct float64
	Tags
}

// GroupBy selects the attribution dimension.
type GroupBy string

const (
	GroupBySector  GroupBy = "sector"
	GroupByCountry GroupBy = "country"
)

// AttributionRow is one holding with its own and its group's contributions.
// Returns, Contributions and GroupContributions follow ReturnMetrics order.
type AttributionRow struct {
	Group              string
	Ticker             string
	Weight             float64
	Returns            []float64
	Contributions      []float64
	GroupContributions []float64
}

// AttributionResult is the output of one attribution pass.
type AttributionResult struct {
	GroupBy            GroupBy
	Rows               []AttributionRow
	ExcludedNoGroup    int
	ExcludedNoWeight   int
	ExcludedNotHolding int
}
