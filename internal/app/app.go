// Package app wires configuration, storage, ingestion, analysis, and the
// REST server into a running application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/trailcam/camtrap-activity/internal/analysis"
	"github.com/trailcam/camtrap-activity/internal/database"
	"github.com/trailcam/camtrap-activity/internal/ingest"
	"github.com/trailcam/camtrap-activity/internal/log"
	"github.com/trailcam/camtrap-activity/internal/server"
	"github.com/trailcam/camtrap-activity/internal/types"
	"github.com/trailcam/camtrap-activity/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	service := analysis.New(analysis.Params{
		Bandwidth: cfg.Analysis.Bandwidth,
		GridSize:  cfg.Analysis.GridSize,
		Resamples: cfg.Analysis.Resamples,
		Seed:      cfg.Analysis.Seed,
	}, a.logger)

	observations, dbClient, err := a.loadObservations(cfg)
	if err != nil {
		return err
	}
	if dbClient != nil {
		defer dbClient.Close()
	}
	service.LoadObservations(observations)
	log.Infof("loaded %d observations across %d species",
		len(observations), len(service.Species()))

	if cfg.Analysis.RunOnStart {
		if err := a.runStartupAnalysis(service, dbClient); err != nil {
			return err
		}
	}

	restServer, err := server.NewController(ctx, &wg, cfg, service, a.logger)
	if err != nil {
		return err
	}
	if err := restServer.Start(); err != nil {
		return err
	}

	log.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// observationStore is the slice of the database client the startup path
// uses to import and load observations.
type observationStore interface {
	SaveObservations(observations []types.Observation) error
	LoadObservations() ([]types.Observation, error)
}

// loadObservations assembles the observation set. A configured data file
// is always read; when a DSN is also configured the file is imported into
// Postgres and the full stored set becomes the working sample. The
// returned client is non-nil only for the database path and stays open
// for run persistence.
func (a *App) loadObservations(cfg *config.Data) ([]types.Observation, *database.Client, error) {
	var imported []types.Observation
	if cfg.DataFile != "" {
		var err error
		imported, err = a.readDataFile(cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	if cfg.Database.DSN != "" {
		client := database.NewClient(cfg.Database.DSN, a.logger)
		if err := client.Connect(); err != nil {
			return nil, nil, fmt.Errorf("error connecting to database: %w", err)
		}
		observations, err := a.syncObservations(client, imported)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return observations, client, nil
	}

	if cfg.DataFile == "" {
		return nil, nil, fmt.Errorf("no observation source configured: set database.dsn or data-file")
	}
	return imported, nil, nil
}

// syncObservations imports freshly read observations into the store and
// returns the full stored set, oldest first.
func (a *App) syncObservations(store observationStore, imported []types.Observation) ([]types.Observation, error) {
	if len(imported) > 0 {
		if err := store.SaveObservations(imported); err != nil {
			return nil, fmt.Errorf("error importing observations: %w", err)
		}
		a.logger.Infof("imported %d observations into the database", len(imported))
	}
	return store.LoadObservations()
}

// readDataFile reads the configured CSV detection table.
func (a *App) readDataFile(cfg *config.Data) ([]types.Observation, error) {
	f, err := os.Open(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("error opening data file: %w", err)
	}
	defer f.Close()

	observations, stats, err := ingest.ReadCSV(f, ingest.Options{
		SpeciesColumn: cfg.CSV.SpeciesColumn,
		CameraColumn:  cfg.CSV.CameraColumn,
		DateColumn:    cfg.CSV.DateColumn,
		TimeColumn:    cfg.CSV.TimeColumn,
		DateFormat:    cfg.CSV.DateFormat,
		Lenient:       cfg.CSV.Lenient,
	})
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", cfg.DataFile, err)
	}
	if stats.Skipped > 0 {
		log.Warnf("skipped %d malformed rows in %s", stats.Skipped, cfg.DataFile)
	}
	return observations, nil
}

// runStartupAnalysis computes the full overlap matrix once at startup
// and persists it when a database is available.
func (a *App) runStartupAnalysis(service *analysis.Service, dbClient *database.Client) error {
	params := service.Defaults()
	runID, pairs, err := service.OverlapMatrix(analysis.Params{})
	if err != nil {
		return fmt.Errorf("startup analysis failed: %w", err)
	}
	log.Infof("startup analysis run %s: %d species pairs", runID, len(pairs))

	if dbClient == nil {
		return nil
	}

	run := &database.AnalysisRun{
		ID:        runID,
		Bandwidth: params.Bandwidth,
		GridSize:  params.GridSize,
		Resamples: params.Resamples,
		Seed:      params.Seed,
		Species:   len(service.Species()),
	}
	records := make([]database.OverlapRecord, len(pairs))
	for i, p := range pairs {
		records[i] = database.OverlapRecord{
			SpeciesA: p.SpeciesA,
			SpeciesB: p.SpeciesB,
			Overlap:  p.Overlap,
			CILow:    p.CILow,
			CIHigh:   p.CIHigh,
		}
	}
	if err := dbClient.SaveRun(run, records); err != nil {
		return err
	}
	log.Infof("analysis run %s persisted", runID)
	return nil
}
