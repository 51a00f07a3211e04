package models

import "time"

// SeedMode selects how the in-memory store is populated at startup.
type SeedMode string

const (
	SeedFixture SeedMode = "fixture"
	SeedEmpty   SeedMode = "empty"
	SeedFile    SeedMode = "file"
)

// StoreConfig controls the initial contents of the task store.
type StoreConfig struct {
	Seed     SeedMode `yaml:"seed" mapstructure:"seed"`
	SeedFile string   `yaml:"seed_file,omitempty" mapstructure:"seed_file"`
}

// LatencyConfig holds the simulated per-operation backend delays.
type LatencyConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	List    time.Duration `yaml:"list" mapstructure:"list"`
	Stats   time.Duration `yaml:"stats" mapstructure:"stats"`
	Add     time.Duration `yaml:"add" mapstructure:"add"`
	Update  time.Duration `yaml:"update" mapstructure:"update"`
	Delete  time.Duration `yaml:"delete" mapstructure:"delete"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// EventsConfig controls the JSONL activity event log.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Config holds all settings read from .taskdash.yaml via Viper.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Latency LatencyConfig `yaml:"latency" mapstructure:"latency"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Events  EventsConfig  `yaml:"events" mapstructure:"events"`
}
