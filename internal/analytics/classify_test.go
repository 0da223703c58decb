package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fundwatch/internal/models"
)

func TestClassifier(t *testing.T) {
	c := NewClassifier("AGIX",
		[]string{"NVDA", "SMH"},
		[]string{"QQQ", "SMH"},
		map[string]string{"NVDA": "Semi", "QQQ": ""},
		map[string]float64{"NVDA": 0.07, "SMH": 0.01},
	)

	tests := []struct {
		ticker string
		want   string
	}{
		{"NVDA", models.TypeHolding},
		{"SMH", models.TypeHolding},
		{"QQQ", models.TypeComparisonETF},
		{"AGIX", models.TypeFund},
		{"TSLA", models.TypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Type(tt.ticker), tt.ticker)
	}

	tags := c.Tags("NVDA")
	assert.Equal(t, "Semi", tags.Industry)
	assert.InDelta(t, 0.07, tags.Weight, 1e-12)
	assert.True(t, math.IsNaN(c.Weight("QQQ")), "non-holdings carry no weight")
	assert.Equal(t, "", c.Industry("TSLA"))
}

func TestClassifier_TagReturns(t *testing.T) {
	c := NewClassifier("AGIX", []string{"NVDA"}, nil, map[string]string{"NVDA": "Semi"}, map[string]float64{"NVDA": 1})
	records := []models.ReturnRecord{models.NewMissingReturn("NVDA"), models.NewMissingReturn("AGIX")}

	c.TagReturns(records)

	assert.Equal(t, models.TypeHolding, records[0].Type)
	assert.Equal(t, "Semi", records[0].Industry)
	assert.Equal(t, models.TypeFund, records[1].Type)
}
