package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment overrides, e.g. TRADELAB_SERVER_PORT.
const EnvPrefix = "TRADELAB"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Events   EventsConfig   `mapstructure:"events"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	APIKey       string        `mapstructure:"api_key"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	JobTTL       time.Duration `mapstructure:"job_ttl"`
	MaxJobs      int           `mapstructure:"max_jobs"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// StorageConfig selects the ticker store.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"` // "memory", "sqlite" or "postgres"
	DSN            string `mapstructure:"dsn"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// StrategyConfig holds the defaults used when a request names no windows.
type StrategyConfig struct {
	Name        string         `mapstructure:"name"`
	ShortWindow int            `mapstructure:"short_window"`
	LongWindow  int            `mapstructure:"long_window"`
	MaxPoints   int            `mapstructure:"max_points"`
	Params      map[string]any `mapstructure:"params"`
}

// ArchiveConfig selects cold storage for snapshots.
type ArchiveConfig struct {
	Type     string   `mapstructure:"type"` // "none", "localfs" or "s3"
	Path     string   `mapstructure:"path"` // For localfs
	S3       S3Config `mapstructure:"s3"`   // For S3
	Schedule string   `mapstructure:"schedule"`
	Retain   int      `mapstructure:"retain"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// EventsConfig holds ingest event publishing settings.
type EventsConfig struct {
	NATSURL        string            `mapstructure:"nats_url"`
	Subject        string            `mapstructure:"subject"`
	WebhookURL     string            `mapstructure:"webhook_url"`
	WebhookHeaders map[string]string `mapstructure:"webhook_headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file. An empty path skips the file and
// uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override keys
// absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.job_ttl", d.Server.JobTTL)
	v.SetDefault("server.max_jobs", d.Server.MaxJobs)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.max_connections", d.Storage.MaxConnections)

	v.SetDefault("strategy.name", d.Strategy.Name)
	v.SetDefault("strategy.short_window", d.Strategy.ShortWindow)
	v.SetDefault("strategy.long_window", d.Strategy.LongWindow)
	v.SetDefault("strategy.max_points", d.Strategy.MaxPoints)

	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("archive.schedule", d.Archive.Schedule)
	v.SetDefault("archive.retain", d.Archive.Retain)
	v.SetDefault("archive.s3.bucket", d.Archive.S3.Bucket)
	v.SetDefault("archive.s3.endpoint", d.Archive.S3.Endpoint)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.access_key", d.Archive.S3.AccessKey)
	v.SetDefault("archive.s3.secret_key", d.Archive.S3.SecretKey)
	v.SetDefault("archive.s3.prefix", d.Archive.S3.Prefix)

	v.SetDefault("events.nats_url", d.Events.NATSURL)
	v.SetDefault("events.subject", d.Events.Subject)
	v.SetDefault("events.webhook_url", d.Events.WebhookURL)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("log.level", d.Log.Level)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
			JobTTL:       time.Hour,
			MaxJobs:      100,
			CORSOrigins:  []string{"*"},
		},
		Storage: StorageConfig{
			Driver:         "sqlite",
			DSN:            "tradelab.db",
			MaxConnections: 10,
		},
		Strategy: StrategyConfig{
			Name:        "ma_crossover",
			ShortWindow: 5,
			LongWindow:  20,
			MaxPoints:   10000,
		},
		Archive: ArchiveConfig{
			Type:   "none",
			Retain: 30,
		},
		Events: EventsConfig{
			Subject: "tradelab.tickers",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Storage validation
	switch c.Storage.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Storage.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage dsn required for driver %s", c.Storage.Driver))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("storage driver must be memory, sqlite or postgres, got %q", c.Storage.Driver))
	}

	// Strategy validation
	if c.Strategy.ShortWindow <= 0 || c.Strategy.LongWindow <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("strategy windows must be positive, got %d/%d", c.Strategy.ShortWindow, c.Strategy.LongWindow))
	}
	if c.Strategy.MaxPoints <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_points must be positive, got %d", c.Strategy.MaxPoints))
	}

	// Archive validation
	switch c.Archive.Type {
	case "", "none":
		if c.Archive.Schedule != "" {
			return core.WrapError(core.ErrConfigInvalid,
				errors.New("archive schedule set but archive type is none"))
		}
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				errors.New("archive path required when type is localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				errors.New("archive s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be none, localfs or s3, got %q", c.Archive.Type))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	return nil
}

// StrategyParams merges the configured windows into the strategy params.
func (c *Config) StrategyParams() map[string]any {
	params := make(map[string]any, len(c.Strategy.Params)+2)
	for k, v := range c.Strategy.Params {
		params[k] = v
	}
	params["short_window"] = c.Strategy.ShortWindow
	params["long_window"] = c.Strategy.LongWindow
	return params
}
