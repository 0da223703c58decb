// Package mirror keeps the JSON mirror of the CSV tables in step
package mirror

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// Entry pairs a CSV file with its JSON mirror.
type Entry struct {
	Area interfaces.Area
	CSV  string
	JSON string
}

func entry(area interfaces.Area, csv string) Entry {
	return Entry{Area: area, CSV: csv, JSON: JSONName(csv)}
}

// Entries lists every mirrored file.
var Entries = []Entry{
	entry(interfaces.AreaSource, models.FileCloses),
	entry(interfaces.AreaSource, models.FileVolumes),
	entry(interfaces.AreaSource, models.FileHoldingsTickers),
	entry(interfaces.AreaSource, models.FileHoldingsInfo),
	entry(interfaces.AreaProcessed, models.FileReturns),
	entry(interfaces.AreaProcessed, models.FileRiskMetrics),
	entry(interfaces.AreaProcessed, models.FileVolumeAnalysis),
	entry(interfaces.AreaProcessed, models.FileSectorAnalysis),
	entry(interfaces.AreaProcessed, models.FileCountryAnalysis),
}

// JSONName returns the mirror name of a CSV file.
func JSONName(csv string) string {
	return strings.TrimSuffix(csv, ".csv") + ".json"
}

// IsMirrored reports whether name is one of the mirrored JSON files.
func IsMirrored(name string) bool {
	for _, e := range Entries {
		if e.JSON == name {
			return true
		}
	}
	return false
}

// Service implements SyncService
type Service struct {
	store  interfaces.DataStore
	logger arbor.ILogger
	now    func() time.Time
}

var _ interfaces.SyncService = (*Service)(nil)

// NewService creates a new mirror service
func NewService(store interfaces.DataStore, logger arbor.ILogger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Sync converts every existing CSV to its JSON mirror and returns the JSON
// files written. Missing CSVs are skipped.
func (s *Service) Sync(ctx context.Context) ([]string, error) {
	updated := s.now()
	var written []string
	for _, e := range Entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		table, err := s.store.ReadTable(e.Area, e.CSV)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Str("file", e.CSV).Msg("CSV not found, skipping")
			continue
		}
		if err != nil {
			return written, err
		}
		if err := s.store.WriteJSONTable(e.JSON, table, updated); err != nil {
			return written, err
		}
		written = append(written, e.JSON)
	}
	s.logger.Info().Int("files", len(written)).Int("total", len(Entries)).Msg("JSON mirror synced")
	return written, nil
}

// Restore converts every existing JSON mirror file back to its CSV and
// returns the CSV files written.
func (s *Service) Restore(ctx context.Context) ([]string, error) {
	var written []string
	for _, e := range Entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		table, _, err := s.store.ReadJSONTable(e.JSON)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Str("file", e.JSON).Msg("JSON not found, skipping")
			continue
		}
		if err != nil {
			return written, err
		}
		if err := s.store.WriteTable(e.Area, e.CSV, table); err != nil {
			return written, err
		}
		written = append(written, e.CSV)
	}
	s.logger.Info().Int("files", len(written)).Int("total", len(Entries)).Msg("CSV files restored")
	return written, nil
}

// Status describes each JSON mirror file.
func (s *Service) Status() []models.FileStatus {
	statuses := make([]models.FileStatus, 0, len(Entries))
	for _, e := range Entries {
		statuses = append(statuses, s.store.Stat(interfaces.AreaJSON, e.JSON))
	}
	return statuses
}
