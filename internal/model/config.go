package model

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidConfig wraps every configuration validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete masonvector configuration.
// Field tags serve both yaml.v3 (config init/show) and viper (mapstructure).
type Config struct {
	Match       MatchConfig       `yaml:"match" mapstructure:"match"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// MatchConfig controls the duplicate classifier
type MatchConfig struct {
	BestThreshold      float64 `yaml:"best_threshold" mapstructure:"best_threshold"`           // single-candidate lookups
	PotentialThreshold float64 `yaml:"potential_threshold" mapstructure:"potential_threshold"` // batch review
	FoldAccents        bool    `yaml:"fold_accents" mapstructure:"fold_accents"`
	Review             bool    `yaml:"review" mapstructure:"review"` // fuzzy review of fresh rows
}

// ConcurrencyConfig controls the review worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls similarity score memoisation
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// StoreConfig points at the SQLite claimant corpus
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose        bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeRecords bool `yaml:"include_records" mapstructure:"include_records"` // list records in Markdown
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Match: MatchConfig{
			BestThreshold:      0.8,
			PotentialThreshold: 0.85,
			FoldAccents:        false,
			Review:             true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 600,
		},
		Store: StoreConfig{
			Path: "",
		},
		Output: OutputConfig{
			Verbose:        false,
			IncludeRecords: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	// Zero is rejected; the matcher treats it as unset
	if c.Match.BestThreshold <= 0 || c.Match.BestThreshold > 1 {
		return fmt.Errorf("%w: match.best_threshold %.3f outside (0,1]", ErrInvalidConfig, c.Match.BestThreshold)
	}
	if c.Match.PotentialThreshold <= 0 || c.Match.PotentialThreshold > 1 {
		return fmt.Errorf("%w: match.potential_threshold %.3f outside (0,1]", ErrInvalidConfig, c.Match.PotentialThreshold)
	}
	if c.Concurrency.Workers < 0 {
		return fmt.Errorf("%w: concurrency.workers must not be negative", ErrInvalidConfig)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("%w: cache.ttl_seconds must not be negative", ErrInvalidConfig)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}
