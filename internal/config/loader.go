package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "ASSAY_"
	envFileKey = "ASSAY_CONFIG"
)

// LoadOption adjusts how Load finds its inputs.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file string
}

// WithFile reads the YAML file at path instead of the one named by ASSAY_CONFIG.
// An empty path keeps the env lookup.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or ASSAY_CONFIG
//  3. env (prefix ASSAY_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	base := New()

	lo := loadOptions{file: os.Getenv(envFileKey)}
	for _, opt := range opts {
		opt(&lo)
	}

	k := koanf.New(".")

	if path := lo.file; path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like ASSAY_STORE_DRIVER -> store_driver (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// ASSAY_CONFIG itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
