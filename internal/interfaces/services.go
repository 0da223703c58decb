package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/fundwatch/internal/models"
)

// HoldingsService acquires and parses the fund's holdings
type HoldingsService interface {
	// Acquire makes sure a recent holdings file is available locally and
	// returns its name
	Acquire(ctx context.Context, now time.Time) (string, error)

	// Load parses the newest local holdings file
	Load(ctx context.Context) (*models.Holdings, error)
}

// FetchService retrieves market data and company information
type FetchService interface {
	// FetchMarketData downloads closes and volumes for all tickers in batches
	FetchMarketData(ctx context.Context, tickers []string) (*models.FetchResult, error)

	// FetchHoldingsInfo downloads company info for holdings tickers. Recent
	// info is reused unless force is set.
	FetchHoldingsInfo(ctx context.Context, tickers []string, force bool) ([]models.HoldingInfo, error)

	// Run performs a full fetch: holdings, market data, holdings info
	Run(ctx context.Context) (*models.FetchSummary, error)
}

// PipelineService computes the output tables from the fetched data
type PipelineService interface {
	// Process computes and writes all output tables
	Process(ctx context.Context) (*models.ProcessSummary, error)

	// Validate checks the fetched data for gaps and mapping problems
	Validate(ctx context.Context) (*models.ValidationReport, error)
}

// SyncService maintains the JSON mirror of the CSV tables
type SyncService interface {
	Sync(ctx context.Context) ([]string, error)
	Restore(ctx context.Context) ([]string, error)
	Status() []models.FileStatus
}
