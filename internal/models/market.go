// Package models defines data structures for fundwatch
package models

import (
	"time"
)

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse holds a ticker's bars, ordered as requested
type EODResponse struct {
	Data []EODBar `json:"data"`
}

// Fundamentals contains the company descriptors used for classification
type Fundamentals struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Type        string    `json:"type"` // "Common Stock", "ETF", ...
	Sector      string    `json:"sector"`
	Industry    string    `json:"industry"`
	Country     string    `json:"country"`
	CountryISO  string    `json:"country_iso,omitempty"`
	WebURL      string    `json:"web_url,omitempty"`
	Rating      float64   `json:"analyst_rating,omitempty"` // consensus, 1 (sell) to 5 (strong buy)
	LastUpdated time.Time `json:"last_updated"`
}

// HoldingInfo is one row of holdings_info.csv.
type HoldingInfo struct {
	Ticker        string
	CompanyName   string
	Website       string
	Country       string
	AnalystRating string
	Error         string
}

// HoldingInfoColumns is the header of holdings_info.csv.
var HoldingInfoColumns = []string{"Ticker", "Company Name", "Website", "Country", "AverageAnalystRating", "Error"}

// HoldingInfoTable renders info rows as a table.
func HoldingInfoTable(rows []HoldingInfo) *Table {
	t := NewTable(HoldingInfoColumns...)
	for _, r := range rows {
		t.Append(r.Ticker, r.CompanyName, r.Website, r.Country, r.AnalystRating, r.Error)
	}
	return t
}

// HoldingInfoFromTable reads info rows back from a table. Missing columns
// read as empty.
func HoldingInfoFromTable(t *Table) []HoldingInfo {
	rows := make([]HoldingInfo, 0, len(t.Rows))
	for i := range t.Rows {
		rows = append(rows, HoldingInfo{
			Ticker:        t.Get(i, "Ticker"),
			CompanyName:   t.Get(i, "Company Name"),
			Website:       t.Get(i, "Website"),
			Country:       t.Get(i, "Country"),
			AnalystRating: t.Get(i, "AverageAnalystRating"),
			Error:         t.Get(i, "Error"),
		})
	}
	return rows
}
