// Package app wires the pipeline, history store and controllers together
// and owns the run lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/brugmelding/brugwacht/internal/database"
	"github.com/brugmelding/brugwacht/internal/history"
	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/managers"
	"github.com/brugmelding/brugwacht/internal/metrics"
	"github.com/brugmelding/brugwacht/internal/pipeline"
	"github.com/brugmelding/brugwacht/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// connectHistoryStore opens the history database when one is configured.
// Store unavailability is non-fatal: matching and the snapshot must
// proceed with transition logging degraded to a no-op.
func (a *App) connectHistoryStore(cfg *config.ConfigData) *gorm.DB {
	if cfg.Storage.PostgreSQL == nil || cfg.Storage.PostgreSQL.ConnectionString == "" {
		log.Info("no history store configured; transition logging disabled")
		return nil
	}

	db, err := database.CreateConnection(cfg.Storage.PostgreSQL.ConnectionString)
	if err != nil {
		log.Warnf("history store unavailable, transition logging disabled for this process: %v", err)
		return nil
	}
	return db
}

// RunOnce executes a single pipeline run and returns
func (a *App) RunOnce(ctx context.Context) error {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	db := a.connectHistoryStore(cfg)
	transitions := history.NewLogger(db)
	if err := transitions.EnsureSchema(); err != nil {
		log.Warnf("could not ensure history schema, transition logging disabled: %v", err)
		transitions = history.NewLogger(nil)
	}

	return pipeline.New(cfg, transitions, metrics.New()).Run(ctx)
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	db := a.connectHistoryStore(cfg)
	transitions := history.NewLogger(db)
	if err := transitions.EnsureSchema(); err != nil {
		log.Warnf("could not ensure history schema, transition logging disabled: %v", err)
		transitions = history.NewLogger(nil)
	}

	var reader *history.Reader
	if transitions.Enabled() {
		reader = history.NewReader(db)
	}

	m := metrics.New()
	pipe := pipeline.New(cfg, transitions, m)

	cm, err := managers.NewControllerManager(ctx, &wg, cfg, managers.Deps{
		HistoryReader: reader,
		SnapshotPath:  cfg.App.SnapshotFile,
		Metrics:       m,
	}, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	// Run the pipeline now and then on every tick
	wg.Add(1)
	go func() {
		defer wg.Done()

		interval := time.Duration(cfg.App.PollInterval) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if err := pipe.Run(ctx); err != nil {
			log.Errorf("pipeline run failed: %v", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := pipe.Run(ctx); err != nil {
					log.Errorf("pipeline run failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Application started successfully")

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

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
