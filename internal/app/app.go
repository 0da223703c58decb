// Package app wires configuration, storage, clients and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/clients/eodhd"
	"github.com/bobmcallan/fundwatch/internal/clients/holdings"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/fetch"
	holdingsvc "github.com/bobmcallan/fundwatch/internal/services/holdings"
	"github.com/bobmcallan/fundwatch/internal/services/mirror"
	"github.com/bobmcallan/fundwatch/internal/services/pipeline"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

// ErrUpdateRunning is returned when an update is requested while another is
// in progress.
var ErrUpdateRunning = errors.New("update already running")

// App holds the initialized store, clients and services.
// It is shared by every CLI command.
type App struct {
	Config          *common.Config
	Logger          arbor.ILogger
	Store           *storage.FileStore
	EODHDClient     interfaces.EODHDClient
	HoldingsClient  interfaces.HoldingsClient
	HoldingsService interfaces.HoldingsService
	FetchService    interfaces.FetchService
	PipelineService interfaces.PipelineService
	MirrorService   interfaces.SyncService
	StartupTime     time.Time

	updateMu  sync.Mutex
	scheduler *cron.Cron
	cancel    context.CancelFunc
	ctx       context.Context
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, FUNDWATCH_CONFIG,
// fundwatch.toml next to the binary, then config/fundwatch.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FUNDWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "fundwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundwatch.toml"
		}
	}
	return configPath
}

// NewApp loads the configuration and initializes all services.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return New(config, common.NewLoggerFromConfig(config.Logging))
}

// New initializes all services from an already loaded configuration.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewFileStore(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - market data requests will fail")
	}
	if config.Fund.HoldingsURL == "" {
		logger.Warn().Msg("Holdings URL not configured - only local holdings files will be used")
	}

	eodhdClient := eodhd.NewClientFromConfig(config.Clients.EODHD, logger)
	holdingsClient := holdings.NewClientFromConfig(config.Fund, config.Clients.Holdings, logger)

	holdingsService := holdingsvc.NewService(store, holdingsClient, config.Fund.HoldingsSuffix, config.Classification.CompanyOverrides, logger)
	fetchService := fetch.NewService(store, eodhdClient, holdingsService, config, logger)
	pipelineService := pipeline.NewService(store, holdingsService, config, logger)
	mirrorService := mirror.NewService(store, logger)

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		Config:          config,
		Logger:          logger,
		Store:           store,
		EODHDClient:     eodhdClient,
		HoldingsClient:  holdingsClient,
		HoldingsService: holdingsService,
		FetchService:    fetchService,
		PipelineService: pipelineService,
		MirrorService:   mirrorService,
		StartupTime:     startupStart,
		ctx:             ctx,
		cancel:          cancel,
	}

	logger.Debug().Str("data_dir", config.Storage.DataDir).Msg("App initialized")
	return a, nil
}

// Close stops the scheduler, waiting for a running update to observe
// cancellation.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
}

// Update runs fetch, process and sync in sequence and records the outcome in
// the run manifest. The manifest is written even when a step fails.
func (a *App) Update(ctx context.Context) (*models.RunManifest, error) {
	if !a.updateMu.TryLock() {
		return nil, ErrUpdateRunning
	}
	defer a.updateMu.Unlock()

	manifest := &models.RunManifest{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := a.Logger
	logger.Info().Str("run_id", manifest.ID).Msg("Update started")

	err := a.update(ctx, manifest)
	manifest.FinishedAt = time.Now()
	if err != nil {
		manifest.Error = err.Error()
	}

	if werr := a.Store.WriteJSON(interfaces.AreaJSON, models.FileManifest, manifest); werr != nil {
		logger.Warn().Err(werr).Msg("Failed to write run manifest")
	}

	if err != nil {
		logger.Warn().Err(err).Str("run_id", manifest.ID).Msg("Update failed")
		return manifest, err
	}
	logger.Info().
		Str("run_id", manifest.ID).
		Int("fetched", len(manifest.FetchedTickers)).
		Int("failed", len(manifest.FailedTickers)).
		Str("elapsed", manifest.FinishedAt.Sub(manifest.StartedAt).Round(time.Millisecond).String()).
		Msg("Update complete")
	return manifest, nil
}

func (a *App) update(ctx context.Context, manifest *models.RunManifest) error {
	fetched, err := a.FetchService.Run(ctx)
	if fetched != nil {
		manifest.HoldingsSource = fetched.HoldingsFile
		manifest.RequestedTickers = fetched.Requested
		manifest.FetchedTickers = fetched.Fetched
		manifest.FailedTickers = fetched.Failed
		manifest.SkippedTickers = fetched.Skipped
		manifest.StaleTickers = fetched.StaleLatest
		manifest.FetchRounds = fetched.Rounds
	}
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	processed, err := a.PipelineService.Process(ctx)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	manifest.Excluded = processed.Excluded
	manifest.TablesWritten = processed.TablesWritten

	if _, err := a.MirrorService.Sync(ctx); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// ReadManifest returns the manifest of the last update run.
func (a *App) ReadManifest() (*models.RunManifest, error) {
	var manifest models.RunManifest
	if err := a.Store.ReadJSON(interfaces.AreaJSON, models.FileManifest, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
