// Package core contains the business logic for taskdash: the query and
// statistics engine, the task service and configuration loading.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = ".taskdash"

// ConfigurationManager defines the interface for loading and validating the
// .taskdash.yaml configuration.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files and TASKDASH_* environment overrides.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// .taskdash.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with the defaults used when no
// configuration file exists. Latency values mirror the delays of the mock API
// the dashboard was designed against.
func DefaultConfig() *models.Config {
	return &models.Config{
		Store: models.StoreConfig{
			Seed: models.SeedFixture,
		},
		Latency: models.LatencyConfig{
			Enabled: false,
			List:    800 * time.Millisecond,
			Stats:   600 * time.Millisecond,
			Add:     1000 * time.Millisecond,
			Update:  800 * time.Millisecond,
			Delete:  800 * time.Millisecond,
		},
		Logging: models.LoggingConfig{
			Level: "info",
		},
		Events: models.EventsConfig{
			Enabled: true,
			Path:    ".taskdash_events.jsonl",
		},
	}
}

// LoadConfig reads .taskdash.yaml from the base path. Missing files yield the
// defaults; environment variables such as TASKDASH_LOGGING_LEVEL override both.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TASKDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.seed", string(def.Store.Seed))
	v.SetDefault("store.seed_file", def.Store.SeedFile)
	v.SetDefault("latency.enabled", def.Latency.Enabled)
	v.SetDefault("latency.list", def.Latency.List)
	v.SetDefault("latency.stats", def.Latency.Stats)
	v.SetDefault("latency.add", def.Latency.Add)
	v.SetDefault("latency.update", def.Latency.Update)
	v.SetDefault("latency.delete", def.Latency.Delete)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("events.enabled", def.Events.Enabled)
	v.SetDefault("events.path", def.Events.Path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg := &models.Config{
		Store: models.StoreConfig{
			Seed:     models.SeedMode(strings.ToLower(v.GetString("store.seed"))),
			SeedFile: v.GetString("store.seed_file"),
		},
		Latency: models.LatencyConfig{
			Enabled: v.GetBool("latency.enabled"),
			List:    v.GetDuration("latency.list"),
			Stats:   v.GetDuration("latency.stats"),
			Add:     v.GetDuration("latency.add"),
			Update:  v.GetDuration("latency.update"),
			Delete:  v.GetDuration("latency.delete"),
		},
		Logging: models.LoggingConfig{
			Level: v.GetString("logging.level"),
			File:  v.GetString("logging.file"),
		},
		Events: models.EventsConfig{
			Enabled: v.GetBool("events.enabled"),
			Path:    v.GetString("events.path"),
		},
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	switch cfg.Store.Seed {
	case models.SeedFixture, models.SeedEmpty:
	case models.SeedFile:
		if strings.TrimSpace(cfg.Store.SeedFile) == "" {
			return fmt.Errorf("invalid config: store.seed is %q but store.seed_file is empty", cfg.Store.Seed)
		}
	default:
		return fmt.Errorf("invalid config: store.seed %q must be one of fixture, empty, file", cfg.Store.Seed)
	}

	delays := map[string]time.Duration{
		"list":   cfg.Latency.List,
		"stats":  cfg.Latency.Stats,
		"add":    cfg.Latency.Add,
		"update": cfg.Latency.Update,
		"delete": cfg.Latency.Delete,
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("invalid config: latency.%s must not be negative, got %s", name, d)
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("invalid config: logging.level %q: %w", cfg.Logging.Level, err)
	}

	if cfg.Events.Enabled && strings.TrimSpace(cfg.Events.Path) == "" {
		return fmt.Errorf("invalid config: events.path must be set when events are enabled")
	}

	return nil
}
