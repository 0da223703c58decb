package analytics

import (
	"math"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Anchors are the resolved rows used by the period returns. A row of -1
// means the anchor could not be resolved and the metric is missing.
type Anchors struct {
	AsOf   time.Time
	Last   int
	Week   int
	Month  int
	Year   int
	Launch int // first valid row of the reference ticker
}

// ResolveAnchors aligns the week, month and year starts of the latest date
// to trading days present in the frame.
func ResolveAnchors(closes *models.Frame, referenceTicker string) Anchors {
	a := Anchors{Last: -1, Week: -1, Month: -1, Year: -1, Launch: -1}
	asOf, ok := closes.Latest()
	if !ok {
		return a
	}
	a.AsOf = asOf
	a.Last = closes.Len() - 1

	if _, i, err := PrevTradingDay(closes.Dates, WeekStart(asOf)); err == nil {
		a.Week = i
	}
	if _, i, err := PrevTradingDay(closes.Dates, MonthStart(asOf)); err == nil {
		a.Month = i
	}
	if _, i, err := PrevTradingDay(closes.Dates, YearStart(asOf)); err == nil {
		a.Year = i
	}

	// Without the reference ticker the common inception is the first row
	if closes.Column(referenceTicker) != nil {
		a.Launch = closes.FirstValid(referenceTicker)
	} else {
		a.Launch = 0
	}
	return a
}

// CalculateReturns computes DTD, WTD, MTD, YTD and Since Launch returns for
// every ticker in the frame, in column order.
func CalculateReturns(closes *models.Frame, referenceTicker string) []models.ReturnRecord {
	anchors := ResolveAnchors(closes, referenceTicker)
	records := make([]models.ReturnRecord, 0, len(closes.Tickers))

	for _, ticker := range closes.Tickers {
		if anchors.Last < 0 {
			records = append(records, models.NewMissingReturn(ticker))
			continue
		}
		col := closes.Column(ticker)
		last := anchors.Last

		rec := models.ReturnRecord{
			Ticker:      ticker,
			DTD:         periodReturn(col, last, last-1),
			WTD:         periodReturn(col, last, anchors.Week),
			MTD:         periodReturn(col, last, anchors.Month),
			YTD:         periodReturn(col, last, anchors.Year),
			SinceLaunch: periodReturn(col, last, launchRow(closes, ticker, anchors.Launch)),
		}
		records = append(records, rec)
	}
	return records
}

// launchRow picks the common inception row when the ticker has a price there,
// otherwise the ticker's own first valid row.
func launchRow(closes *models.Frame, ticker string, common int) int {
	if common >= 0 && !math.IsNaN(closes.Value(ticker, common)) {
		return common
	}
	return closes.FirstValid(ticker)
}

// periodReturn returns col[end]/col[start]-1, NaN when either price is
// missing or the anchor price is zero.
func periodReturn(col []float64, end, start int) float64 {
	if start < 0 || end < 0 || start >= len(col) || end >= len(col) {
		return math.NaN()
	}
	p0, p1 := col[start], col[end]
	if math.IsNaN(p0) || math.IsNaN(p1) || p0 == 0 {
		return math.NaN()
	}
	return p1/p0 - 1
}
