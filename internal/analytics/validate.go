package analytics

import (
	"math"
	"strings"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// ValidateGaps reports tickers with missing cells after their listing date.
// Runs are measured in consecutive frame rows, i.e. trading days.
func ValidateGaps(frame *models.Frame) []models.GapReport {
	var reports []models.GapReport
	for _, ticker := range frame.Tickers {
		first := frame.FirstValid(ticker)
		if first < 0 {
			continue
		}
		col := frame.Column(ticker)

		var report models.GapReport
		run, runStart := 0, -1
		for i := first; i < len(col); i++ {
			if !math.IsNaN(col[i]) {
				run = 0
				continue
			}
			report.MissingDates = append(report.MissingDates, frame.Dates[i])
			if run == 0 {
				runStart = i
			}
			run++
			if run > report.LongestRun {
				report.LongestRun = run
				report.RunStart = frame.Dates[runStart]
				report.RunEnd = frame.Dates[i]
			}
		}
		if len(report.MissingDates) > 0 {
			report.Ticker = ticker
			reports = append(reports, report)
		}
	}
	return reports
}

// ValidateIndustryMapping flags holdings without an industry and comparison
// ETFs that were given one.
func ValidateIndustryMapping(records []models.ReturnRecord) []models.MappingProblem {
	var problems []models.MappingProblem
	for _, rec := range records {
		hasIndustry := strings.TrimSpace(rec.Industry) != ""
		switch {
		case rec.Type == models.TypeHolding && !hasIndustry:
			problems = append(problems, models.MappingProblem{Ticker: rec.Ticker, Type: rec.Type, Issue: "holding without industry"})
		case rec.Type == models.TypeComparisonETF && hasIndustry:
			problems = append(problems, models.MappingProblem{Ticker: rec.Ticker, Type: rec.Type, Issue: "comparison ETF with industry"})
		}
	}
	return problems
}
