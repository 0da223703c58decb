package holdings

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// Column names of the published holdings file
const (
	ColTicker      = "Ticker"
	ColCompany     = "Company Name"
	ColMarketValue = "Market Value($)"
)

// splitPreamble separates the free-text first line from the CSV body.
func splitPreamble(data []byte) (string, []byte) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return string(data), nil
	}
	return string(data[:i+1]), data[i+1:]
}

// parseMarketValue reads "1,234,567.89" style cells.
func parseMarketValue(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func cleanTicker(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// ParseHoldings parses a holdings file: one preamble line, then a CSV with
// Ticker, Company Name and Market Value($) columns. Company-name overrides
// replace the ticker of matching rows. Rows without a ticker are dropped;
// rows without a market value are kept with a NaN weight. Weights are each
// value's share of the total.
func ParseHoldings(data []byte, overrides map[string]string) (*models.Holdings, error) {
	_, body := splitPreamble(data)
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	tickerCol, ok := idx[ColTicker]
	if !ok {
		return nil, fmt.Errorf("holdings file has no %s column", ColTicker)
	}
	valueCol, ok := idx[ColMarketValue]
	if !ok {
		return nil, fmt.Errorf("holdings file has no %s column", ColMarketValue)
	}
	companyCol, hasCompany := idx[ColCompany]

	cell := func(rec []string, i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	type parsed struct {
		holding *models.Holding
		value   decimal.Decimal
		ok      bool
	}
	var rows []parsed
	total := decimal.Zero
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read holdings row: %w", err)
		}

		h := &models.Holding{Ticker: cleanTicker(cell(rec, tickerCol))}
		if hasCompany {
			h.CompanyName = strings.TrimSpace(cell(rec, companyCol))
			if t, ok := overrides[h.CompanyName]; ok {
				h.Ticker = t
			}
		}
		if h.Ticker == "" {
			continue
		}

		value, ok := parseMarketValue(cell(rec, valueCol))
		if ok {
			total = total.Add(value)
		}
		rows = append(rows, parsed{holding: h, value: value, ok: ok})
	}

	result := &models.Holdings{Holdings: make([]*models.Holding, 0, len(rows))}
	for _, p := range rows {
		p.holding.MarketValue = math.NaN()
		p.holding.Weight = math.NaN()
		if p.ok {
			p.holding.MarketValue = p.value.InexactFloat64()
			if total.IsPositive() {
				p.holding.Weight = p.value.Div(total).InexactFloat64()
			}
		}
		result.Holdings = append(result.Holdings, p.holding)
	}
	return result, nil
}

// ApplyOverrides rewrites the Ticker column of rows whose company name has an
// override, keeping the preamble line. It reports whether anything changed.
func ApplyOverrides(data []byte, overrides map[string]string) ([]byte, bool, error) {
	if len(overrides) == 0 {
		return data, false, nil
	}
	preamble, body := splitPreamble(data)

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read holdings: %w", err)
	}
	if len(records) == 0 {
		return data, false, nil
	}

	tickerCol, companyCol := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case ColTicker:
			tickerCol = i
		case ColCompany:
			companyCol = i
		}
	}
	if tickerCol < 0 || companyCol < 0 {
		return data, false, nil
	}

	changed := false
	for _, rec := range records[1:] {
		if companyCol >= len(rec) || tickerCol >= len(rec) {
			continue
		}
		if t, ok := overrides[strings.TrimSpace(rec[companyCol])]; ok && rec[tickerCol] != t {
			rec[tickerCol] = t
			changed = true
		}
	}
	if !changed {
		return data, false, nil
	}

	var buf bytes.Buffer
	buf.WriteString(preamble)
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, false, fmt.Errorf("failed to write holdings: %w", err)
	}
	return buf.Bytes(), true, nil
}
