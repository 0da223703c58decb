package models

// Ticker types used in the output tables
const (
	TypeHolding       = "Holding"
	TypeComparisonETF = "Comparison ETF"
	TypeFund          = "Fund"
	TypeOther         = "Other"
)

// Holding is a single position of the fund's latest holdings file.
type Holding struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"company_name"`
	MarketValue float64 `json:"market_value"`
	Weight      float64 `json:"weight"` // fraction of total market value
}

// Holdings is the parsed holdings file.
type Holdings struct {
	Source   string     `json:"source"`
	Holdings []*Holding `json:"holdings"`
}

// Tickers returns holding tickers in file order, without duplicates.
func (h *Holdings) Tickers() []string {
	seen := make(map[string]bool, len(h.Holdings))
	tickers := make([]string, 0, len(h.Holdings))
	for _, hd := range h.Holdings {
		if hd.Ticker == "" || seen[hd.Ticker] {
			continue
		}
		seen[hd.Ticker] = true
		tickers = append(tickers, hd.Ticker)
	}
	return tickers
}

// Weights returns ticker -> weight. Duplicate tickers keep the last weight.
func (h *Holdings) Weights() map[string]float64 {
	weights := make(map[string]float64, len(h.Holdings))
	for _, hd := range h.Holdings {
		weights[hd.Ticker] = hd.Weight
	}
	return weights
}
