package holdings

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

const suffix = "agix_holdings.csv"

const sampleFile = `KraneShares Agentic AI ETF Holdings as of 06/04/2024
Rank,Company Name,Ticker,Market Value($),Shares Held
1,NVIDIA Corp,NVDA,"600,000.00",5000
2,Broadcom Inc,AVGO,"400,000.00",300
3,Anthropic PBC,,"0.00",1
4,Cash,,"12,000",
5,Pending Listing Co,PEND,,10
`

type fakeClient struct {
	files map[string]string
	calls []string
}

func (f *fakeClient) Download(ctx context.Context, name string) ([]byte, error) {
	f.calls = append(f.calls, name)
	if data, ok := f.files[name]; ok {
		return []byte(data), nil
	}
	return nil, errors.New("404")
}

func newTestService(t *testing.T, client interfaces.HoldingsClient, overrides map[string]string) (*Service, *storage.FileStore) {
	t.Helper()
	config := common.NewDefaultConfig().Storage
	config.DataDir = t.TempDir()
	store, err := storage.NewFileStore(common.NewSilentLogger(), &config)
	require.NoError(t, err)
	return NewService(store, client, suffix, overrides, common.NewSilentLogger()), store
}

func TestParseHoldings_Weights(t *testing.T) {
	h, err := ParseHoldings([]byte(sampleFile), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"NVDA", "AVGO", "PEND"}, h.Tickers())
	w := h.Weights()
	assert.InDelta(t, 0.6, w["NVDA"], 1e-12)
	assert.InDelta(t, 0.4, w["AVGO"], 1e-12)
	assert.True(t, math.IsNaN(w["PEND"]), "no market value means no weight")
	assert.Equal(t, 600000.0, h.Holdings[0].MarketValue)
}

func TestParseHoldings_Overrides(t *testing.T) {
	h, err := ParseHoldings([]byte(sampleFile), map[string]string{"Anthropic PBC": "ANTH.PVT"})
	require.NoError(t, err)

	w := h.Weights()
	assert.Contains(t, h.Tickers(), "ANTH.PVT")
	assert.Equal(t, 0.0, w["ANTH.PVT"])
	assert.InDelta(t, 1.0, w["NVDA"]+w["AVGO"]+w["ANTH.PVT"], 1e-12)
}

func TestParseHoldings_MissingColumns(t *testing.T) {
	_, err := ParseHoldings([]byte("preamble\nName,Value\nA,1\n"), nil)
	assert.Error(t, err)
}

func TestApplyOverrides_KeepsPreamble(t *testing.T) {
	out, changed, err := ApplyOverrides([]byte(sampleFile), map[string]string{"Anthropic PBC": "ANTH.PVT"})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, string(out), "KraneShares Agentic AI ETF Holdings as of 06/04/2024\n")
	assert.Contains(t, string(out), "3,Anthropic PBC,ANTH.PVT,0.00,1\n")

	_, changed, err = ApplyOverrides(out, map[string]string{"Anthropic PBC": "ANTH.PVT"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestAcquire_PrefersToday(t *testing.T) {
	now := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	client := &fakeClient{files: map[string]string{"06_05_2024_" + suffix: sampleFile}}
	svc, store := newTestService(t, client, nil)

	name, err := svc.Acquire(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "06_05_2024_"+suffix, name)
	assert.True(t, store.Stat(interfaces.AreaHoldings, name).Exists)
}

func TestAcquire_FallsBackToYesterday(t *testing.T) {
	now := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	client := &fakeClient{files: map[string]string{"06_04_2024_" + suffix: sampleFile}}
	svc, _ := newTestService(t, client, nil)

	name, err := svc.Acquire(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "06_04_2024_"+suffix, name)
	assert.Equal(t, []string{"06_05_2024_" + suffix, "06_04_2024_" + suffix}, client.calls)
}

func TestAcquire_LocalFileSkipsDownload(t *testing.T) {
	now := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	client := &fakeClient{}
	svc, store := newTestService(t, client, nil)
	require.NoError(t, store.WriteFile(interfaces.AreaHoldings, "06_05_2024_"+suffix, []byte(sampleFile)))

	name, err := svc.Acquire(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "06_05_2024_"+suffix, name)
	assert.Empty(t, client.calls)
}

func TestAcquire_NewestLocalThenError(t *testing.T) {
	now := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	svc, store := newTestService(t, &fakeClient{}, nil)

	_, err := svc.Acquire(context.Background(), now)
	assert.ErrorIs(t, err, ErrNoHoldings)

	require.NoError(t, store.WriteFile(interfaces.AreaHoldings, "05_31_2024_"+suffix, []byte(sampleFile)))
	require.NoError(t, store.WriteFile(interfaces.AreaHoldings, "12_29_2023_"+suffix, []byte(sampleFile)))
	name, err := svc.Acquire(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "05_31_2024_"+suffix, name)

	h, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, name, h.Source)
}
