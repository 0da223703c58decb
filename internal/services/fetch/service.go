// Package fetch retrieves holdings, market data and company info
package fetch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/tabular"
)

// Service implements FetchService
type Service struct {
	store    interfaces.DataStore
	eodhd    interfaces.EODHDClient
	holdings interfaces.HoldingsService
	fund     common.FundConfig
	config   common.FetchConfig
	symbols  map[string]string
	logger   arbor.ILogger
	now      func() time.Time
}

var _ interfaces.FetchService = (*Service)(nil)

// NewService creates a new fetch service
func NewService(
	store interfaces.DataStore,
	eodhd interfaces.EODHDClient,
	holdings interfaces.HoldingsService,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:    store,
		eodhd:    eodhd,
		holdings: holdings,
		fund:     config.Fund,
		config:   config.Fetch,
		symbols:  config.Classification.Symbols,
		logger:   logger,
		now:      time.Now,
	}
}

// series is one ticker's fetched bars
type series struct {
	dates   []time.Time
	closes  []float64
	volumes []float64
}

func (s *series) latest() time.Time {
	if len(s.dates) == 0 {
		return time.Time{}
	}
	return s.dates[len(s.dates)-1]
}

// Run performs a full fetch: holdings file, market data for the reference
// ticker, benchmarks and holdings, then holdings info.
func (s *Service) Run(ctx context.Context) (*models.FetchSummary, error) {
	name, err := s.holdings.Acquire(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire holdings: %w", err)
	}
	h, err := s.holdings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	holdingTickers := h.Tickers()
	tickerTable := models.NewTable("Ticker")
	for _, t := range holdingTickers {
		tickerTable.Append(t)
	}
	if err := s.store.WriteTable(interfaces.AreaSource, models.FileHoldingsTickers, tickerTable); err != nil {
		return nil, err
	}

	all := append([]string{s.fund.ReferenceTicker}, s.fund.Benchmarks...)
	all = dedupe(append(all, holdingTickers...))

	s.logger.Info().Str("holdings", name).Int("tickers", len(all)).Msg("Fetching market data")

	result, err := s.FetchMarketData(ctx, all)
	if err != nil {
		return nil, err
	}

	summary := &models.FetchSummary{
		HoldingsFile: name,
		Requested:    len(all),
		Fetched:      result.Fetched,
		Failed:       result.Failed,
		Skipped:      result.Skipped,
		Rounds:       result.Rounds,
		StaleLatest:  result.Stale,
	}

	info, err := s.FetchHoldingsInfo(ctx, holdingTickers, false)
	if err != nil {
		return summary, err
	}
	summary.InfoRows = len(info)
	for _, row := range info {
		if row.Error != "" {
			summary.InfoErrors++
		}
	}
	return summary, nil
}

// FetchMarketData downloads daily closes and volumes for tickers and writes
// them to the source area. Tickers are fetched in batches run in parallel.
// A ticker without a close on the latest date fetched so far is retried in
// the next round; its newest bars are kept either way and it is reported as
// stale. Only tickers that never returned bars are failed.
func (s *Service) FetchMarketData(ctx context.Context, tickers []string) (*models.FetchResult, error) {
	tickers = dedupe(tickers)
	result := &models.FetchResult{}

	symbols := make(map[string]string, len(tickers))
	var fetchable []string
	for _, t := range tickers {
		sym, ok := ToEODHDSymbol(t, s.symbols)
		if !ok {
			result.Skipped = append(result.Skipped, t)
			continue
		}
		symbols[t] = sym
		fetchable = append(fetchable, t)
	}
	if len(result.Skipped) > 0 {
		s.logger.Info().Strs("tickers", result.Skipped).Msg("Skipping tickers without market data")
	}

	from := s.config.GetStartDate()
	to := s.now()

	var mu sync.Mutex
	fetched := make(map[string]*series)

	attempt := func(ctx context.Context, round int, pending []string) []string {
		var failed []string
		got := make(map[string]*series)
		var wg sync.WaitGroup
		sem := make(chan struct{}, s.config.Parallelism)

		for _, batch := range batches(pending, s.config.BatchSize) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			go func(batch []string) {
				defer wg.Done()
				defer func() { <-sem }()

				ok, bad := s.fetchBatch(ctx, batch, symbols, from, to)

				mu.Lock()
				defer mu.Unlock()
				for t, ser := range ok {
					got[t] = ser
				}
				failed = append(failed, bad...)
			}(batch)
		}
		wg.Wait()

		// the newest attempt replaces earlier bars
		for t, ser := range got {
			fetched[t] = ser
		}

		// a ticker behind the latest date is kept but retried
		latest := latestDate(fetched)
		for t, ser := range got {
			if !ser.latest().Equal(latest) {
				failed = append(failed, t)
			}
		}

		// tickers in batches never started stay pending
		done := make(map[string]bool, len(got)+len(failed))
		for t := range got {
			done[t] = true
		}
		for _, t := range failed {
			done[t] = true
		}
		for _, t := range pending {
			if !done[t] {
				failed = append(failed, t)
			}
		}

		s.logger.Info().Int("round", round).Int("pending", len(pending)).Int("retry", len(failed)).Msg("Fetch round complete")
		return orderLike(pending, failed)
	}

	_, rounds := RetryRounds(ctx, fetchable, s.config.MaxRetries, s.config.GetRetryBackoff(), attempt)
	result.Rounds = rounds
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// only tickers that never returned bars are dropped
	for _, t := range fetchable {
		if _, ok := fetched[t]; ok {
			result.Fetched = append(result.Fetched, t)
		} else {
			result.Failed = append(result.Failed, t)
		}
	}
	if len(result.Failed) > 0 {
		s.logger.Warn().Strs("tickers", result.Failed).Int("rounds", rounds).Msg("Tickers failed after all retry rounds")
	}
	if len(result.Fetched) == 0 {
		return result, fmt.Errorf("no market data fetched for %d tickers", len(fetchable))
	}

	result.Closes, result.Volumes = buildFrames(fetched, result.Fetched)

	result.Stale = staleOnLatest(result.Closes)
	if len(result.Stale) > 0 {
		s.logger.Warn().Strs("tickers", result.Stale).Msg("No close on the latest date, keeping earlier bars")
	}

	if err := s.store.WriteFrame(interfaces.AreaSource, models.FileCloses, result.Closes); err != nil {
		return nil, err
	}
	if err := s.store.WriteFrame(interfaces.AreaSource, models.FileVolumes, result.Volumes); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("fetched", len(result.Fetched)).
		Int("failed", len(result.Failed)).
		Int("skipped", len(result.Skipped)).
		Int("rows", result.Closes.Len()).
		Msg("Market data saved")
	return result, nil
}

// fetchBatch fetches every ticker of a batch. Tickers whose request failed
// or that returned no bars are failed.
func (s *Service) fetchBatch(ctx context.Context, batch []string, symbols map[string]string, from, to time.Time) (map[string]*series, []string) {
	got := make(map[string]*series, len(batch))
	var failed []string

	for _, t := range batch {
		resp, err := s.eodhd.GetEOD(ctx, symbols[t], interfaces.WithDateRange(from, to))
		if err != nil {
			s.logger.Debug().Str("ticker", t).Err(err).Msg("EOD fetch failed")
			failed = append(failed, t)
			continue
		}
		ser := toSeries(resp)
		if len(ser.dates) == 0 {
			failed = append(failed, t)
			continue
		}
		got[t] = ser
	}
	return got, failed
}

// latestDate returns the newest date across all series.
func latestDate(set map[string]*series) time.Time {
	var latest time.Time
	for _, ser := range set {
		if l := ser.latest(); l.After(latest) {
			latest = l
		}
	}
	return latest
}

// toSeries converts bars to a close/volume series, using the adjusted close
// when it is positive.
func toSeries(resp *models.EODResponse) *series {
	bars := append([]models.EODBar(nil), resp.Data...)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	ser := &series{}
	for _, b := range bars {
		price := b.Close
		if b.AdjClose > 0 {
			price = b.AdjClose
		}
		if price <= 0 {
			continue
		}
		if n := len(ser.dates); n > 0 && ser.dates[n-1].Equal(b.Date) {
			continue
		}
		ser.dates = append(ser.dates, b.Date)
		ser.closes = append(ser.closes, price)
		ser.volumes = append(ser.volumes, float64(b.Volume))
	}
	return ser
}

// buildFrames aligns series on the union of their dates.
func buildFrames(fetched map[string]*series, order []string) (*models.Frame, *models.Frame) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, t := range order {
		for _, d := range fetched[t].dates {
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	row := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		row[d] = i
	}

	closes := models.NewFrame(dates)
	volumes := models.NewFrame(dates)
	for _, t := range order {
		ser := fetched[t]
		c := nanColumn(len(dates))
		v := nanColumn(len(dates))
		for i, d := range ser.dates {
			c[row[d]] = ser.closes[i]
			v[row[d]] = ser.volumes[i]
		}
		closes.AddColumn(t, c)
		volumes.AddColumn(t, v)
	}
	return closes, volumes
}

// FetchHoldingsInfo downloads company info for the holdings and writes
// holdings_info.csv. A file younger than the configured TTL that covers all
// tickers is reused unless force is set. A failing ticker produces a row with
// only the Error column filled.
func (s *Service) FetchHoldingsInfo(ctx context.Context, tickers []string, force bool) ([]models.HoldingInfo, error) {
	tickers = dedupe(tickers)

	if !force {
		if rows, ok := s.cachedInfo(tickers); ok {
			s.logger.Info().Int("tickers", len(rows)).Msg("Holdings info is fresh, skipping fetch")
			return rows, nil
		}
	}

	rows := make([]models.HoldingInfo, len(tickers))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.Parallelism)
	for i, t := range tickers {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int, t string) {
			defer wg.Done()
			defer func() { <-sem }()
			rows[i] = s.fetchInfo(ctx, t)
		}(i, t)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.store.WriteTable(interfaces.AreaSource, models.FileHoldingsInfo, models.HoldingInfoTable(rows)); err != nil {
		return nil, err
	}
	s.logger.Info().Int("tickers", len(rows)).Msg("Holdings info saved")
	return rows, nil
}

func (s *Service) fetchInfo(ctx context.Context, ticker string) models.HoldingInfo {
	row := models.HoldingInfo{Ticker: ticker}
	sym, ok := ToEODHDSymbol(ticker, s.symbols)
	if !ok {
		row.Error = "no public listing"
		return row
	}
	f, err := s.eodhd.GetFundamentals(ctx, sym)
	if err != nil {
		s.logger.Debug().Str("ticker", ticker).Err(err).Msg("Fundamentals fetch failed")
		row.Error = err.Error()
		return row
	}
	row.CompanyName = f.Name
	row.Website = f.WebURL
	row.Country = f.Country
	if f.Rating > 0 {
		row.AnalystRating = tabular.FormatFloat(f.Rating)
	}
	return row
}

// cachedInfo returns the stored info when it is fresh and covers tickers.
func (s *Service) cachedInfo(tickers []string) ([]models.HoldingInfo, bool) {
	status := s.store.Stat(interfaces.AreaSource, models.FileHoldingsInfo)
	if !status.Exists || !common.IsFresh(status.LastModified, s.config.GetInfoTTL()) {
		return nil, false
	}
	table, err := s.store.ReadTable(interfaces.AreaSource, models.FileHoldingsInfo)
	if err != nil {
		return nil, false
	}
	rows := models.HoldingInfoFromTable(table)
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.Ticker] = true
	}
	for _, t := range tickers {
		if !have[t] {
			return nil, false
		}
	}
	return rows, true
}

// staleOnLatest lists tickers with no close on the frame's last date.
func staleOnLatest(closes *models.Frame) []string {
	if closes == nil || closes.Len() == 0 {
		return nil
	}
	last := closes.Len() - 1
	var stale []string
	for _, t := range closes.Tickers {
		if math.IsNaN(closes.Value(t, last)) {
			stale = append(stale, t)
		}
	}
	return stale
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || strings.EqualFold(it, "nan") || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// orderLike returns the members of subset in the order they appear in ref.
func orderLike(ref, subset []string) []string {
	in := make(map[string]bool, len(subset))
	for _, s := range subset {
		in[s] = true
	}
	out := make([]string, 0, len(subset))
	for _, r := range ref {
		if in[r] {
			out = append(out, r)
			delete(in, r)
		}
	}
	return out
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
