package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

var nan = math.NaN()

type series struct {
	ticker string
	values []float64
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func buildFrame(t *testing.T, dates []string, cols ...series) *models.Frame {
	t.Helper()
	ds := make([]time.Time, len(dates))
	for i, d := range dates {
		ds[i] = day(d)
	}
	f := models.NewFrame(ds)
	for _, c := range cols {
		if len(c.values) != len(dates) {
			t.Fatalf("series %s has %d values for %d dates", c.ticker, len(c.values), len(dates))
		}
		f.AddColumn(c.ticker, c.values)
	}
	return f
}

func recordFor(t *testing.T, records []models.ReturnRecord, ticker string) models.ReturnRecord {
	t.Helper()
	for _, r := range records {
		if r.Ticker == ticker {
			return r
		}
	}
	t.Fatalf("no record for %s", ticker)
	return models.ReturnRecord{}
}
