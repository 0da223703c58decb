package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
)

const holdingsCSV = `Agentic AI ETF Holdings as of 06/05/2024
Rank,Company Name,Ticker,Market Value($),Shares Held
1,NVIDIA Corp,NVDA,"600,000.00",5000
2,Broadcom Inc,AVGO,"400,000.00",300
3,Delisted Co,DEAD,"1,000.00",10
`

// newFakeProviders serves EOD bars, fundamentals and the holdings file.
// DEAD has no market data.
func newFakeProviders(t *testing.T) *httptest.Server {
	t.Helper()
	closes := map[string][]float64{
		"AGIX": {20, 20.5, 21},
		"QQQ":  {440, 445, 450},
		"NVDA": {100, 105, 110},
		"AVGO": {200, 220, 240},
	}
	dates := []string{"2024-06-03", "2024-06-04", "2024-06-05"}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/eod/", func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/eod/"), ".US")
		series, ok := closes[ticker]
		if !ok {
			http.Error(w, "Ticker Not Found.", http.StatusNotFound)
			return
		}
		bars := make([]map[string]interface{}, len(dates))
		for i, d := range dates {
			bars[i] = map[string]interface{}{
				"date": d, "open": series[i], "high": series[i], "low": series[i],
				"close": series[i], "adjusted_close": series[i], "volume": 1000 * (i + 1),
			}
		}
		json.NewEncoder(w).Encode(bars)
	})
	mux.HandleFunc("/api/fundamentals/", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/api/fundamentals/")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"General": map[string]string{"Code": symbol, "Name": symbol + " Inc", "CountryName": "USA"},
		})
	})
	mux.HandleFunc("/csv/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(holdingsCSV))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	srv := newFakeProviders(t)

	config := common.NewDefaultConfig()
	config.Storage.DataDir = t.TempDir()
	config.Fund.ReferenceTicker = "AGIX"
	config.Fund.Benchmarks = []string{"QQQ"}
	config.Fund.HoldingsURL = srv.URL + "/csv/{file}"
	config.Fetch.StartDate = "2024-01-01"
	config.Fetch.MaxRetries = 2
	config.Fetch.RetryBackoff = "10ms"
	config.Clients.EODHD.BaseURL = srv.URL + "/api"
	config.Clients.EODHD.APIKey = "test-key"
	config.Clients.EODHD.RateLimit = 100
	config.Classification.Industries = map[string]string{
		"NVDA": "Semiconductors",
		"AVGO": "Semiconductors",
	}

	a, err := New(config, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_InitializesAllServices(t *testing.T) {
	a := newTestApp(t)

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.EODHDClient)
	assert.NotNil(t, a.HoldingsClient)
	assert.NotNil(t, a.HoldingsService)
	assert.NotNil(t, a.FetchService)
	assert.NotNil(t, a.PipelineService)
	assert.NotNil(t, a.MirrorService)
	assert.False(t, a.StartupTime.IsZero())
}

func TestUpdate_EndToEnd(t *testing.T) {
	a := newTestApp(t)

	manifest, err := a.Update(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, manifest.ID)
	assert.Empty(t, manifest.Error)
	assert.ElementsMatch(t, []string{"AGIX", "QQQ", "NVDA", "AVGO"}, manifest.FetchedTickers)
	assert.Equal(t, []string{"DEAD"}, manifest.FailedTickers)
	assert.Equal(t, 5, manifest.RequestedTickers)
	assert.Len(t, manifest.TablesWritten, 5)
	assert.False(t, manifest.FinishedAt.Before(manifest.StartedAt))

	for _, st := range a.MirrorService.Status() {
		assert.True(t, st.Exists, st.Name)
	}

	table, _, err := a.Store.ReadJSONTable("returns.json")
	require.NoError(t, err)
	for i := range table.Rows {
		if table.Get(i, "Ticker") == "NVDA" {
			assert.Equal(t, "Holding", table.Get(i, "Type"))
			assert.Equal(t, "Semiconductors", table.Get(i, "Industry"))
		}
	}

	stored, err := a.ReadManifest()
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, stored.ID)
}

func TestUpdate_FailureStillWritesManifest(t *testing.T) {
	a := newTestApp(t)
	a.FetchService = failingFetch{}

	manifest, err := a.Update(context.Background())
	require.Error(t, err)
	assert.Contains(t, manifest.Error, "fetch")

	stored, err := a.ReadManifest()
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, stored.ID)
	assert.NotEmpty(t, stored.Error)
}

func TestUpdate_RejectsConcurrentRun(t *testing.T) {
	a := newTestApp(t)
	a.updateMu.Lock()
	defer a.updateMu.Unlock()

	_, err := a.Update(context.Background())
	assert.ErrorIs(t, err, ErrUpdateRunning)
}

func TestStartScheduler(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.StartScheduler())
	assert.True(t, a.NextRun().IsZero(), "disabled schedule has no next run")

	a.Config.Schedule.Enabled = true
	a.Config.Schedule.Cron = "not a cron"
	assert.Error(t, a.StartScheduler())

	a.Config.Schedule.Cron = "30 6 * * 2-6"
	require.NoError(t, a.StartScheduler())
	assert.True(t, a.NextRun().After(time.Now()))
}

type failingFetch struct{}

func (failingFetch) FetchMarketData(context.Context, []string) (*models.FetchResult, error) {
	return nil, assert.AnError
}

func (failingFetch) FetchHoldingsInfo(context.Context, []string, bool) ([]models.HoldingInfo, error) {
	return nil, assert.AnError
}

func (failingFetch) Run(context.Context) (*models.FetchSummary, error) {
	return nil, assert.AnError
}

var _ interfaces.FetchService = failingFetch{}
