package analytics

import (
	"math"
	"strings"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// GroupFunc returns the attribution group of a return record, "" when unknown.
type GroupFunc func(rec *models.ReturnRecord) string

// BySector groups records by their tagged industry.
func BySector(rec *models.ReturnRecord) string {
	return rec.Industry
}

// ByCountry groups records using a ticker -> country lookup.
func ByCountry(countries map[string]string) GroupFunc {
	return func(rec *models.ReturnRecord) string {
		return countries[rec.Ticker]
	}
}

// Attribute computes weighted return contributions per holding and per group.
//
// Only Holding rows with a known group and weight take part; the rest are
// counted in the result's exclusion fields. Group sums skip missing
// contributions, so a group whose members are all missing sums to zero.
// Rows keep their input order.
func Attribute(records []models.ReturnRecord, by models.GroupBy, groupOf GroupFunc) models.AttributionResult {
	result := models.AttributionResult{GroupBy: by}
	nMetrics := len(models.ReturnMetrics)

	groupSums := make(map[string][]float64)
	for i := range records {
		rec := &records[i]
		if rec.Type != models.TypeHolding {
			result.ExcludedNotHolding++
			continue
		}
		group := strings.TrimSpace(groupOf(rec))
		if group == "" {
			result.ExcludedNoGroup++
			continue
		}
		if math.IsNaN(rec.Weight) {
			result.ExcludedNoWeight++
			continue
		}

		returns := rec.Values()
		contributions := make([]float64, nMetrics)
		for m, r := range returns {
			contributions[m] = rec.Weight * r
		}

		sums, ok := groupSums[group]
		if !ok {
			sums = make([]float64, nMetrics)
			groupSums[group] = sums
		}
		for m, c := range contributions {
			if !math.IsNaN(c) {
				sums[m] += c
			}
		}

		result.Rows = append(result.Rows, models.AttributionRow{
			Group:         group,
			Ticker:        rec.Ticker,
			Weight:        rec.Weight,
			Returns:       returns,
			Contributions: contributions,
		})
	}

	for i := range result.Rows {
		sums := groupSums[result.Rows[i].Group]
		result.Rows[i].GroupContributions = append([]float64(nil), sums...)
	}
	return result
}

// GroupTotals returns the aggregate contribution of each group for one
// metric. Groups whose contribution is NaN are left out.
func GroupTotals(result models.AttributionResult, metric string) map[string]float64 {
	col := -1
	for i, m := range models.ReturnMetrics {
		if m == metric {
			col = i
		}
	}
	totals := make(map[string]float64)
	if col < 0 {
		return totals
	}
	for _, row := range result.Rows {
		if _, ok := totals[row.Group]; ok || col >= len(row.GroupContributions) {
			continue
		}
		if v := row.GroupContributions[col]; !math.IsNaN(v) {
			totals[row.Group] = v
		}
	}
	return totals
}
