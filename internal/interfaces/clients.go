// Package interfaces defines service contracts for fundwatch
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetFundamentals retrieves fundamental data
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// HoldingsClient downloads the fund's published holdings files
type HoldingsClient interface {
	// Download fetches a dated holdings file by name
	Download(ctx context.Context, fileName string) ([]byte, error)
}
