package analytics

import (
	"math"
	"strings"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Classifier tags tickers with their type, industry and holding weight.
// All lookups are supplied at construction; nothing is read from package state.
type Classifier struct {
	reference  string
	holdings   map[string]bool
	benchmarks map[string]bool
	industries map[string]string
	weights    map[string]float64
}

// NewClassifier builds a classifier for one processing run.
func NewClassifier(reference string, holdings, benchmarks []string, industries map[string]string, weights map[string]float64) *Classifier {
	c := &Classifier{
		reference:  reference,
		holdings:   toSet(holdings),
		benchmarks: toSet(benchmarks),
		industries: industries,
		weights:    weights,
	}
	if c.industries == nil {
		c.industries = map[string]string{}
	}
	if c.weights == nil {
		c.weights = map[string]float64{}
	}
	return c
}

// Type returns Holding, Comparison ETF, Fund or Other. A ticker that is both a
// holding and a benchmark is a Holding.
func (c *Classifier) Type(ticker string) string {
	switch {
	case c.holdings[ticker]:
		return models.TypeHolding
	case c.benchmarks[ticker]:
		return models.TypeComparisonETF
	case ticker == c.reference:
		return models.TypeFund
	default:
		return models.TypeOther
	}
}

// Industry returns the configured industry, or "" when unmapped.
func (c *Classifier) Industry(ticker string) string {
	return strings.TrimSpace(c.industries[ticker])
}

// Weight returns the holding weight, NaN when the ticker carries none.
func (c *Classifier) Weight(ticker string) float64 {
	if w, ok := c.weights[ticker]; ok {
		return w
	}
	return math.NaN()
}

// Tags returns the descriptive columns for a ticker.
func (c *Classifier) Tags(ticker string) models.Tags {
	return models.Tags{
		Type:     c.Type(ticker),
		Industry: c.Industry(ticker),
		Weight:   c.Weight(ticker),
	}
}

// TagReturns fills Tags on each record in place.
func (c *Classifier) TagReturns(records []models.ReturnRecord) {
	for i := range records {
		records[i].Tags = c.Tags(records[i].Ticker)
	}
}

// TagRisk fills Tags on each record in place.
func (c *Classifier) TagRisk(records []models.RiskRecord) {
	for i := range records {
		records[i].Tags = c.Tags(records[i].Ticker)
	}
}

// TagVolume fills Tags on each record in place.
func (c *Classifier) TagVolume(records []models.VolumeRecord) {
	for i := range records {
		records[i].Tags = c.Tags(records[i].Ticker)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
