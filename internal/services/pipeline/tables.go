package pipeline

import (
	"strings"

	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/tabular"
)

var tagColumns = []string{"Ticker", "Type", "Industry", "Weight"}

func tagCells(ticker string, tags models.Tags) []string {
	return []string{ticker, tags.Type, tags.Industry, tabular.FormatFloat(tags.Weight)}
}

func floats(values ...float64) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = tabular.FormatFloat(v)
	}
	return cells
}

// ReturnsTable renders returns.csv.
func ReturnsTable(records []models.ReturnRecord) *models.Table {
	t := models.NewTable(append(append([]string{}, models.ReturnMetrics...), tagColumns...)...)
	for i := range records {
		r := &records[i]
		t.Append(append(floats(r.Values()...), tagCells(r.Ticker, r.Tags)...)...)
	}
	return t
}

// RiskTable renders risk_metrics.csv.
func RiskTable(records []models.RiskRecord) *models.Table {
	cols := []string{"Annualized Return", "Annualized Volatility", "Sharpe Ratio", "Max Drawdown"}
	t := models.NewTable(append(cols, tagColumns...)...)
	for _, r := range records {
		cells := floats(r.AnnualizedReturn, r.AnnualizedVolatility, r.SharpeRatio, r.MaxDrawdown)
		t.Append(append(cells, tagCells(r.Ticker, r.Tags)...)...)
	}
	return t
}

// VolumeTable renders volume_analysis.csv.
func VolumeTable(records []models.VolumeRecord) *models.Table {
	cols := []string{"Avg Daily Volume", "Avg Daily Change (%)"}
	t := models.NewTable(append(cols, tagColumns...)...)
	for _, r := range records {
		cells := floats(r.AvgDailyVolume, r.AvgDailyChangePct)
		t.Append(append(cells, tagCells(r.Ticker, r.Tags)...)...)
	}
	return t
}

// contributionColumn names the contribution column of a return metric,
// e.g. "SinceLaunch_contribution".
func contributionColumn(metric string) string {
	return strings.ReplaceAll(metric, " ", "") + "_contribution"
}

// AttributionTable renders a holdings attribution table. groupColumn heads
// the group column ("Industry" or "Country") and prefix names the group
// aggregate columns ("sector" or "country").
func AttributionTable(result models.AttributionResult, groupColumn, prefix string) *models.Table {
	cols := []string{groupColumn, "Ticker", "Weight"}
	cols = append(cols, models.ReturnMetrics...)
	for _, m := range models.ReturnMetrics {
		cols = append(cols, contributionColumn(m))
	}
	for _, m := range models.ReturnMetrics {
		cols = append(cols, prefix+"_"+contributionColumn(m))
	}

	t := models.NewTable(cols...)
	for _, row := range result.Rows {
		cells := []string{row.Group, row.Ticker, tabular.FormatFloat(row.Weight)}
		cells = append(cells, floats(row.Returns...)...)
		cells = append(cells, floats(row.Contributions...)...)
		cells = append(cells, floats(row.GroupContributions...)...)
		t.Append(cells...)
	}
	return t
}
