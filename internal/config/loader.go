package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/carelog/internal/domain/model"
)

// ErrLoadConfig wraps file, env and decode failures; ErrInvalidConfig wraps
// constraint violations found after loading.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Environment variable names read by Load.
const (
	EnvPrefix = "CARELOG_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if CARELOG_CONFIG is set
//  3. env (prefix CARELOG_)
//
// Role weights from the file are merged over the default table.
func Load(ctx context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: config file %s not found", ErrLoadConfig, path)
			}
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// CARELOG_QUEUE_SIZE -> queue_size; keys stay flat to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.RoleWeights = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.RoleWeights = mergeWeights(base.RoleWeights, cfg.RoleWeights)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// mergeWeights overlays loaded onto defaults with role names canonicalized,
// so "physician" replaces "Physician".
func mergeWeights(defaults, loaded map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(defaults)+len(loaded))
	for name, v := range defaults {
		out[string(model.ParseRole(name))] = v
	}
	for name, v := range loaded {
		out[string(model.ParseRole(name))] = v
	}
	return out
}
