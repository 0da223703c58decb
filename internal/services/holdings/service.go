// Package holdings acquires and parses the fund's holdings files
package holdings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// ErrNoHoldings is returned when no holdings file can be downloaded or found.
var ErrNoHoldings = errors.New("no holdings file available")

// Service implements HoldingsService
type Service struct {
	store     interfaces.DataStore
	client    interfaces.HoldingsClient
	suffix    string
	overrides map[string]string // company name -> ticker
	logger    arbor.ILogger
}

var _ interfaces.HoldingsService = (*Service)(nil)

// NewService creates a new holdings service
func NewService(
	store interfaces.DataStore,
	client interfaces.HoldingsClient,
	suffix string,
	overrides map[string]string,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:     store,
		client:    client,
		suffix:    suffix,
		overrides: overrides,
		logger:    logger,
	}
}

// Acquire returns today's holdings file, then yesterday's, downloading
// each when it is not already present. Failing both it falls back to the
// newest local file.
func (s *Service) Acquire(ctx context.Context, now time.Time) (string, error) {
	for _, day := range []time.Time{now, now.AddDate(0, 0, -1)} {
		name := storage.HoldingsFileName(day, s.suffix)
		if s.store.Stat(interfaces.AreaHoldings, name).Exists {
			s.logger.Info().Str("file", name).Msg("Using local holdings file")
			return name, nil
		}
		if err := s.download(ctx, name); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.logger.Warn().Str("file", name).Err(err).Msg("Holdings download failed")
			continue
		}
		return name, nil
	}

	files, err := s.store.HoldingsFiles(s.suffix)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoHoldings
	}
	s.logger.Warn().Str("file", files[0]).Msg("Falling back to newest local holdings file")
	return files[0], nil
}

func (s *Service) download(ctx context.Context, name string) error {
	if s.client == nil {
		return fmt.Errorf("no holdings client")
	}
	data, err := s.client.Download(ctx, name)
	if err != nil {
		return err
	}
	rewritten, changed, err := ApplyOverrides(data, s.overrides)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Debug().Str("file", name).Msg("Applied company ticker overrides")
		data = rewritten
	}
	if err := s.store.WriteFile(interfaces.AreaHoldings, name, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	s.logger.Info().Str("file", name).Int("bytes", len(data)).Msg("Holdings file downloaded")
	return nil
}

// Load parses the newest local holdings file
func (s *Service) Load(ctx context.Context) (*models.Holdings, error) {
	files, err := s.store.HoldingsFiles(s.suffix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoHoldings
	}
	return s.LoadFile(files[0])
}

// LoadFile parses a named holdings file
func (s *Service) LoadFile(name string) (*models.Holdings, error) {
	data, err := s.store.ReadFile(interfaces.AreaHoldings, name)
	if err != nil {
		return nil, err
	}
	h, err := ParseHoldings(data, s.overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	h.Source = name
	s.logger.Debug().Str("file", name).Int("holdings", len(h.Holdings)).Msg("Holdings loaded")
	return h, nil
}
