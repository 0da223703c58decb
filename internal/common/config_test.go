package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "AGIX", cfg.Fund.ReferenceTicker)
	assert.Equal(t, 252, cfg.Analytics.TradingDaysPerYear)
	assert.InDelta(t, 0.02, cfg.Analytics.RiskFreeRate, 1e-12)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Fetch.GetStartDate())
	assert.Equal(t, time.Second, cfg.Fetch.GetRetryBackoff())
	assert.Equal(t, 7*24*time.Hour, cfg.Fetch.GetInfoTTL())
	require.NoError(t, cfg.Validate())
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FUNDWATCH_PORT", "9090")
	t.Setenv("FUNDWATCH_LOG_LEVEL", "DEBUG")
	t.Setenv("FUNDWATCH_DATA_DIR", "/var/lib/fundwatch")
	t.Setenv("EODHD_API_KEY", "from-env")
	t.Setenv("FUNDWATCH_SCHEDULE", "0 7 * * *")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/var/lib/fundwatch", cfg.Storage.DataDir)
	assert.Equal(t, "from-env", cfg.Clients.EODHD.APIKey)
	assert.True(t, cfg.Schedule.Enabled)
	assert.Equal(t, "0 7 * * *", cfg.Schedule.Cron)
}

func TestConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("FUNDWATCH_PORT", "not-a-port")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_LayersFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[fund]
reference_ticker = "AGIX"
benchmarks = ["QQQ", "SPY"]

[fetch]
batch_size = 50

[classification.industries]
NVDA = "Semiconductors"
`), 0644))
	require.NoError(t, os.WriteFile(local, []byte(`
[fetch]
batch_size = 25
retry_backoff = "250ms"
`), 0644))

	cfg, err := LoadConfig(base, local, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"QQQ", "SPY"}, cfg.Fund.Benchmarks)
	assert.Equal(t, 25, cfg.Fetch.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.GetRetryBackoff())
	assert.Equal(t, "Semiconductors", cfg.Classification.Industries["NVDA"])
	// untouched sections keep their defaults
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
}

func TestLoadConfig_ShippedFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "fundwatch.toml"))
	require.NoError(t, err)

	industries := cfg.Classification.Industries
	assert.Len(t, industries, 46)
	assert.Equal(t, "Application", industries["META"])
	assert.Equal(t, "Infrastructure", industries["ANTH.PVT"])
	assert.Equal(t, "Semi", industries["NVDA"])
	assert.Equal(t, "Semi", industries["2330.TW"])
	assert.Equal(t, "Semi", industries["000660.KS"])

	overrides := cfg.Classification.CompanyOverrides
	assert.Len(t, overrides, 6)
	assert.Equal(t, "ANTH.PVT", overrides["ANTHROPIC, PBC"])
	assert.Equal(t, "2330.TW", overrides["TSMC"])

	// every overridden holding must land in an industry group
	for company, ticker := range overrides {
		assert.NotEmpty(t, industries[ticker], company)
	}

	assert.Contains(t, cfg.Fund.Benchmarks, "XB0T.DE")
	assert.Equal(t, "AGIX", cfg.Fund.ReferenceTicker)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"zero batch size", "[fetch]\nbatch_size = 0\n"},
		{"bad start date", "[fetch]\nstart_date = \"01/02/2023\"\n"},
		{"risk free rate out of range", "[analytics]\nrisk_free_rate = 1.5\n"},
		{"unknown log level", "[logging]\nlevel = \"verbose\"\n"},
		{"empty reference ticker", "[fund]\nreference_ticker = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fundwatch.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.toml), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fetch\nbatch_size = "), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestStorageConfig_ResolvePath(t *testing.T) {
	cfg := StorageConfig{DataDir: "/data"}

	assert.Equal(t, filepath.Join("/data", "source_data"), cfg.ResolvePath("source_data"))
	assert.Equal(t, "/abs/json", cfg.ResolvePath("/abs/json"))
}

func TestIsFresh(t *testing.T) {
	assert.False(t, IsFresh(time.Time{}, time.Hour))
	assert.True(t, IsFresh(time.Now().Add(-time.Minute), time.Hour))
	assert.False(t, IsFresh(time.Now().Add(-2*time.Hour), time.Hour))
}

func TestIsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.False(t, cfg.IsProduction())
	cfg.Environment = " Prod "
	assert.True(t, cfg.IsProduction())
}
