package analytics

import (
	"math"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// RiskOptions holds the constants of the risk calculation.
type RiskOptions struct {
	RiskFreeRate float64
	TradingDays  int
}

// DefaultRiskOptions returns a 2% risk-free rate over 252 trading days.
func DefaultRiskOptions() RiskOptions {
	return RiskOptions{RiskFreeRate: 0.02, TradingDays: 252}
}

// CalculateRisk computes annualised return, volatility, Sharpe ratio and max
// drawdown independently for each ticker column.
func CalculateRisk(closes *models.Frame, opts RiskOptions) []models.RiskRecord {
	if opts.TradingDays <= 0 {
		opts.TradingDays = DefaultRiskOptions().TradingDays
	}
	days := float64(opts.TradingDays)

	records := make([]models.RiskRecord, 0, len(closes.Tickers))
	for _, ticker := range closes.Tickers {
		returns := DailyReturns(closes.Column(ticker))

		annReturn := Mean(returns) * days
		annVol := SampleStdDev(returns) * math.Sqrt(days)

		records = append(records, models.RiskRecord{
			Ticker:               ticker,
			AnnualizedReturn:     annReturn,
			AnnualizedVolatility: annVol,
			SharpeRatio:          SharpeRatio(annReturn, annVol, opts.RiskFreeRate),
			MaxDrawdown:          MaxDrawdown(returns),
			Observations:         len(returns),
		})
	}
	return records
}

// DailyReturns returns simple returns between consecutive valid observations.
// The first observation has no return and is dropped, as are missing cells
// and zero prices.
func DailyReturns(col []float64) []float64 {
	returns := make([]float64, 0, len(col))
	prev := math.NaN()
	for _, v := range col {
		if math.IsNaN(v) {
			continue
		}
		if !math.IsNaN(prev) && prev != 0 {
			returns = append(returns, v/prev-1)
		}
		prev = v
	}
	return returns
}

// SharpeRatio returns (annReturn - riskFree) / annVol. Zero or undefined
// volatility yields NaN.
func SharpeRatio(annReturn, annVol, riskFree float64) float64 {
	if math.IsNaN(annVol) || math.IsNaN(annReturn) || annVol == 0 {
		return math.NaN()
	}
	return (annReturn - riskFree) / annVol
}

// MaxDrawdown returns the largest peak-to-trough decline of the cumulative
// return series built from returns. The result is <= 0, and NaN for an
// empty series.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	cum := 1.0
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample standard deviation (n-1 denominator),
// NaN for fewer than two values.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
