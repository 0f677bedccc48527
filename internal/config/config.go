// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/okian/assay/internal/adapters/repository"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreDriver picks the repository backend, one of repository.Drivers().
	StoreDriver string `koanf:"store_driver" validate:"store_driver"`

	// StoreDSN is the sqlite file path or postgres connection string.
	// Every driver except memory needs one.
	StoreDSN string `koanf:"store_dsn"`

	// SeedFile is an optional YAML dataset imported on start.
	SeedFile string `koanf:"seed_file"`

	// RateLimitRPS and RateLimitBurst bound API traffic per process. Zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`

	// LookupConcurrency caps parallel employee lookups when listing assessments.
	LookupConcurrency int `koanf:"lookup_concurrency" validate:"gte=1"`

	// SingleTopScore is the points awarded to the first option of a single-select question.
	SingleTopScore int `koanf:"single_top_score" validate:"gte=1"`

	// SuggestDistance is the max edit distance for "did you mean" search hints.
	SuggestDistance int `koanf:"suggest_distance" validate:"gte=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreDriver:       repository.DriverMemory,
		RateLimitRPS:      50,
		RateLimitBurst:    100,
		LookupConcurrency: runtime.NumCPU() * 2,
		SingleTopScore:    4,
		SuggestDistance:   2,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("store_driver", func(fl validator.FieldLevel) bool {
		return slices.Contains(repository.Drivers(), fl.Field().String())
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.StoreDriver != repository.DriverMemory && c.StoreDSN == "" {
		return fmt.Errorf("%w: store_dsn is required for driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
