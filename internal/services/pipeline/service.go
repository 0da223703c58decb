// Package pipeline computes the output tables from fetched market data
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/analytics"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/holdings"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// Service implements PipelineService
type Service struct {
	store    interfaces.DataStore
	holdings interfaces.HoldingsService
	config   *common.Config
	logger   arbor.ILogger
}

var _ interfaces.PipelineService = (*Service)(nil)

// NewService creates a new pipeline service
func NewService(
	store interfaces.DataStore,
	holdings interfaces.HoldingsService,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:    store,
		holdings: holdings,
		config:   config,
		logger:   logger,
	}
}

// inputs are the fetched files a processing run reads
type inputs struct {
	closes    *models.Frame
	volumes   *models.Frame
	holdings  []string
	weights   map[string]float64
	countries map[string]string
}

func (s *Service) load(ctx context.Context) (*inputs, error) {
	closes, err := s.store.ReadFrame(interfaces.AreaSource, models.FileCloses)
	if err != nil {
		return nil, fmt.Errorf("failed to load closes: %w", err)
	}
	volumes, err := s.store.ReadFrame(interfaces.AreaSource, models.FileVolumes)
	if err != nil {
		return nil, fmt.Errorf("failed to load volumes: %w", err)
	}

	in := &inputs{closes: closes, volumes: volumes, weights: map[string]float64{}}

	h, err := s.holdings.Load(ctx)
	switch {
	case err == nil:
		in.weights = h.Weights()
		in.holdings = h.Tickers()
		s.logger.Debug().Str("file", h.Source).Int("holdings", len(h.Holdings)).Msg("Holding weights loaded")
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, holdings.ErrNoHoldings):
		s.logger.Warn().Err(err).Msg("No holdings file, weights unavailable")
	default:
		return nil, err
	}

	// holdings_tickers.csv is the list written at fetch time and wins over
	// the holdings file when present
	if table, err := s.store.ReadTable(interfaces.AreaSource, models.FileHoldingsTickers); err == nil {
		tickers := make([]string, 0, len(table.Rows))
		for i := range table.Rows {
			if t := strings.TrimSpace(table.Get(i, "Ticker")); t != "" {
				tickers = append(tickers, t)
			}
		}
		in.holdings = tickers
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	in.countries = map[string]string{}
	if table, err := s.store.ReadTable(interfaces.AreaSource, models.FileHoldingsInfo); err == nil {
		for _, info := range models.HoldingInfoFromTable(table) {
			if c := strings.TrimSpace(info.Country); c != "" {
				in.countries[info.Ticker] = c
			}
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	} else {
		s.logger.Warn().Msg("No holdings info, country attribution will be empty")
	}
	for t, c := range s.config.Classification.Countries {
		in.countries[t] = c
	}

	return in, nil
}

func (s *Service) classifier(in *inputs) *analytics.Classifier {
	return analytics.NewClassifier(
		s.config.Fund.ReferenceTicker,
		in.holdings,
		s.config.Fund.Benchmarks,
		s.config.Classification.Industries,
		in.weights,
	)
}

// Process computes returns, risk, volume and attribution and writes the
// processed tables.
func (s *Service) Process(ctx context.Context) (*models.ProcessSummary, error) {
	in, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if in.closes.Len() == 0 {
		return nil, fmt.Errorf("%s has no rows", models.FileCloses)
	}

	classifier := s.classifier(in)
	ref := s.config.Fund.ReferenceTicker

	returns := analytics.CalculateReturns(in.closes, ref)
	classifier.TagReturns(returns)

	risk := analytics.CalculateRisk(in.closes, analytics.RiskOptions{
		RiskFreeRate: s.config.Analytics.RiskFreeRate,
		TradingDays:  s.config.Analytics.TradingDaysPerYear,
	})
	classifier.TagRisk(risk)

	volume := analytics.AnalyzeVolume(in.volumes)
	classifier.TagVolume(volume)

	sector := analytics.Attribute(returns, models.GroupBySector, analytics.BySector)
	country := analytics.Attribute(returns, models.GroupByCountry, analytics.ByCountry(in.countries))

	tables := []struct {
		name  string
		table *models.Table
	}{
		{models.FileReturns, ReturnsTable(returns)},
		{models.FileRiskMetrics, RiskTable(risk)},
		{models.FileVolumeAnalysis, VolumeTable(volume)},
		{models.FileSectorAnalysis, AttributionTable(sector, "Industry", "sector")},
		{models.FileCountryAnalysis, AttributionTable(country, "Country", "country")},
	}

	asOf, _ := in.closes.Latest()
	summary := &models.ProcessSummary{
		AsOf:     asOf,
		Tickers:  len(in.closes.Tickers),
		Holdings: len(in.holdings),
		Excluded: map[string]int{
			"sector_no_group":   sector.ExcludedNoGroup,
			"sector_no_weight":  sector.ExcludedNoWeight,
			"country_no_group":  country.ExcludedNoGroup,
			"country_no_weight": country.ExcludedNoWeight,
		},
		GroupDTD: map[string]map[string]float64{
			string(models.GroupBySector):  analytics.GroupTotals(sector, models.MetricDTD),
			string(models.GroupByCountry): analytics.GroupTotals(country, models.MetricDTD),
		},
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.store.WriteTable(interfaces.AreaProcessed, t.name, t.table); err != nil {
			return nil, err
		}
		summary.TablesWritten = append(summary.TablesWritten, t.name)
	}

	s.logAttribution(sector)
	s.logAttribution(country)
	s.logger.Info().
		Str("as_of", asOf.Format("2006-01-02")).
		Int("tickers", summary.Tickers).
		Int("tables", len(summary.TablesWritten)).
		Msg("Processing complete")

	return summary, nil
}

func (s *Service) logAttribution(result models.AttributionResult) {
	event := s.logger.Info()
	if result.ExcludedNoGroup > 0 || result.ExcludedNoWeight > 0 {
		event = s.logger.Warn()
	}
	event.
		Str("group_by", string(result.GroupBy)).
		Int("rows", len(result.Rows)).
		Int("excluded_no_group", result.ExcludedNoGroup).
		Int("excluded_no_weight", result.ExcludedNoWeight).
		Msg("Attribution computed")
}

// Validate reports gaps in the fetched closes and inconsistencies between
// ticker types and the configured industries.
func (s *Service) Validate(ctx context.Context) (*models.ValidationReport, error) {
	in, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.ReturnRecord, 0, len(in.closes.Tickers))
	classifier := s.classifier(in)
	for _, t := range in.closes.Tickers {
		records = append(records, models.ReturnRecord{Ticker: t, Tags: classifier.Tags(t)})
	}

	report := &models.ValidationReport{
		Gaps:    analytics.ValidateGaps(in.closes),
		Mapping: analytics.ValidateIndustryMapping(records),
	}

	for _, g := range report.Gaps {
		s.logger.Warn().
			Str("ticker", g.Ticker).
			Int("missing", len(g.MissingDates)).
			Int("longest_run", g.LongestRun).
			Str("run_start", g.RunStart.Format("2006-01-02")).
			Msg("Missing closes after listing")
	}
	for _, p := range report.Mapping {
		s.logger.Warn().Str("ticker", p.Ticker).Str("type", p.Type).Msg(p.Issue)
	}
	s.logger.Info().Int("gaps", len(report.Gaps)).Int("mapping", len(report.Mapping)).Msg("Validation complete")
	return report, nil
}
