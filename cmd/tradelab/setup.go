package main

import (
	"context"
	"fmt"

	"github.com/newthinker/tradelab/internal/app"
	"github.com/newthinker/tradelab/internal/config"
	"github.com/newthinker/tradelab/internal/logger"
	"go.uber.org/zap"
)

// loadConfig reads --config, or defaults plus environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	return logger.New(logger.Options{Development: debug, Level: level})
}

// withApp handles common config, logger and app setup and teardown.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App, log *zap.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("closing app", zap.Error(err))
		}
	}()

	return fn(ctx, a, log)
}
