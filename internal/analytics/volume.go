package analytics

import (
	"math"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// AnalyzeVolume computes the average daily volume and the average
// period-over-period volume change (in percent) for each ticker.
func AnalyzeVolume(volumes *models.Frame) []models.VolumeRecord {
	records := make([]models.VolumeRecord, 0, len(volumes.Tickers))
	for _, ticker := range volumes.Tickers {
		col := volumes.Column(ticker)

		valid := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				valid = append(valid, v)
			}
		}

		records = append(records, models.VolumeRecord{
			Ticker:            ticker,
			AvgDailyVolume:    Mean(valid),
			AvgDailyChangePct: Mean(DailyReturns(col)) * 100,
		})
	}
	return records
}
