// Package app wires configuration into the running services shared by the
// HTTP server and the command line tools.
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/newthinker/tradelab/internal/api"
	"github.com/newthinker/tradelab/internal/api/job"
	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/config"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/events"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/snapshot"
	"github.com/newthinker/tradelab/internal/storage/archive"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/newthinker/tradelab/internal/strategy"
	"github.com/newthinker/tradelab/internal/strategy/ma_crossover"
	"go.uber.org/zap"
)

// App is the main application orchestrator
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	metrics    *metrics.Registry
	store      ticker.Store
	publisher  events.Publisher
	emitter    *events.Emitter
	ingest     *ingest.Service
	strategies *strategy.Engine
	backtester *backtest.Backtester
	exporter   *snapshot.Exporter // nil without an archive
	jobs       *job.Store
}

// New opens the store and the optional archive and event publisher
// described by cfg. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics.NewRegistry(),
		strategies: strategy.NewEngine(logger),
	}
	a.strategies.Register(ma_crossover.Name, ma_crossover.Factory)

	store, err := ticker.Open(ctx, ticker.Options{
		Driver:         cfg.Storage.Driver,
		DSN:            cfg.Storage.DSN,
		MaxConnections: cfg.Storage.MaxConnections,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ticker store: %w", err)
	}
	a.store = store

	pub, err := openPublisher(cfg.Events, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	a.publisher = pub
	a.emitter = events.NewEmitter(a.publisher, logger, a.metrics)
	a.ingest = ingest.NewService(store, a.emitter, a.metrics, logger)

	a.backtester = backtest.New(store,
		backtest.WithMaxPoints(cfg.Strategy.MaxPoints),
		backtest.WithLogger(logger),
		backtest.WithMetrics(a.metrics),
	)

	arch, err := archive.Open(archive.Options{
		Type: cfg.Archive.Type,
		Path: cfg.Archive.Path,
		S3: archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		},
	})
	switch {
	case errors.Is(err, core.ErrArchiveDisabled):
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("opening archive: %w", err)
	default:
		a.exporter = snapshot.NewExporter(a.ingest, arch, a.metrics, logger)
	}

	a.jobs = job.NewStore(cfg.Server.MaxJobs, cfg.Server.JobTTL,
		job.WithMetrics(a.metrics),
		job.WithLogger(logger),
	)

	return a, nil
}

// openPublisher connects every configured event sink.
func openPublisher(cfg config.EventsConfig, logger *zap.Logger) (events.Publisher, error) {
	var pubs events.Multi
	if cfg.NATSURL != "" {
		pub, err := events.NewNATS(cfg.NATSURL, cfg.Subject, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to nats: %w", err)
		}
		pubs = append(pubs, pub)
	}
	if cfg.WebhookURL != "" {
		pub, err := events.NewWebhook(cfg.WebhookURL, cfg.WebhookHeaders)
		if err != nil {
			pubs.Close()
			return nil, err
		}
		pubs = append(pubs, pub)
	}

	switch len(pubs) {
	case 0:
		return events.Nop{}, nil
	case 1:
		return pubs[0], nil
	default:
		return pubs, nil
	}
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Metrics returns the metrics registry.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Ingest returns the ingest service.
func (a *App) Ingest() *ingest.Service { return a.ingest }

// Store returns the ticker store.
func (a *App) Store() ticker.Store { return a.store }

// Strategies returns the strategy registry.
func (a *App) Strategies() *strategy.Engine { return a.strategies }

// Backtester returns the backtester.
func (a *App) Backtester() *backtest.Backtester { return a.backtester }

// Exporter returns the snapshot exporter, or core.ErrArchiveDisabled when
// no archive is configured.
func (a *App) Exporter() (*snapshot.Exporter, error) {
	if a.exporter == nil {
		return nil, core.ErrArchiveDisabled
	}
	return a.exporter, nil
}

// Jobs returns the async job store.
func (a *App) Jobs() *job.Store { return a.jobs }

// NewStrategy builds the configured strategy. overrides replace the
// configured params key by key.
func (a *App) NewStrategy(overrides map[string]any) (strategy.Strategy, error) {
	params := a.cfg.StrategyParams()
	maps.Copy(params, overrides)
	return a.strategies.New(a.cfg.Strategy.Name, strategy.Config{Params: params})
}

// Server builds the HTTP server over the App's services.
func (a *App) Server(version string) (*api.Server, error) {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	return api.NewServer(api.Config{
		Host:         a.cfg.Server.Host,
		Port:         a.cfg.Server.Port,
		APIKey:       a.cfg.Server.APIKey,
		Version:      version,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		MetricsPath:  metricsPath,
	}, api.Dependencies{
		Ingest:     a.ingest,
		Backtester: a.backtester,
		Strategies: a.strategies,
		Strategy:   a.cfg.Strategy.Name,
		Params:     a.cfg.StrategyParams(),
		Jobs:       a.jobs,
		Exporter:   a.exporter,
		Metrics:    a.metrics,
	}, a.logger)
}

// Scheduler returns the snapshot scheduler, or nil when no schedule is
// configured.
func (a *App) Scheduler() (*snapshot.Scheduler, error) {
	if a.cfg.Archive.Schedule == "" {
		return nil, nil
	}
	if a.exporter == nil {
		return nil, core.ErrArchiveDisabled
	}
	return snapshot.NewScheduler(a.exporter, a.cfg.Archive.Schedule, a.cfg.Archive.Retain, a.logger)
}

// Close waits for background jobs and releases the store and publisher.
func (a *App) Close() error {
	if a.jobs != nil {
		a.jobs.Wait()
	}

	var errs []error
	if a.emitter != nil {
		errs = append(errs, a.emitter.Close())
	} else if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
