// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config holding every default.
//   - Load layers a YAML file and environment variables over New.
//   - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the stdout handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// LogFile, when set, receives a JSON copy of every log line.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory stage task queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// WorkerCount sets the number of stage workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// IdentityCacheSize bounds the sender resolution memo.
	IdentityCacheSize int `koanf:"identity_cache_size" validate:"gte=0"`

	// MaxMessages caps messages per API request; 0 means unlimited.
	MaxMessages int `koanf:"max_messages" validate:"gte=0"`

	// RateLimitRPS admits this many pipeline requests per second across all
	// clients; 0 disables the limit.
	RateLimitRPS float64 `koanf:"rate_limit_rps" validate:"gte=0"`

	// RateLimitBurst is how many requests may arrive at once under RateLimitRPS.
	RateLimitBurst int `koanf:"rate_limit_burst" validate:"gte=0"`

	// RoleWeights maps role names to minutes per interaction.
	RoleWeights map[string]float64 `koanf:"role_weights" validate:"dive,keys,required,endkeys,gte=0"`

	// DefaultRoleWeight applies to roles missing from RoleWeights.
	DefaultRoleWeight float64 `koanf:"default_role_weight" validate:"gte=0"`

	// RationaleWindowHours is how far back decision rationale is searched.
	RationaleWindowHours int `koanf:"rationale_window_hours" validate:"gt=0"`

	// MaxRationaleSnippets caps rationale snippets per decision.
	MaxRationaleSnippets int `koanf:"max_rationale_snippets" validate:"gt=0"`
}

// DefaultRoleWeights returns the minutes-per-interaction table used when no
// configuration overrides it.
func DefaultRoleWeights() map[string]float64 {
	return map[string]float64{
		"Physician":             12,
		"Nutritionist":          8,
		"Physiotherapist":       8,
		"Concierge":             6,
		"Concierge Lead":        10,
		"Performance Scientist": 8,
		"Lab":                   5,
		"Member":                0,
	}
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		QueueSize:            1024,
		WorkerCount:          runtime.NumCPU() * 2,
		IdentityCacheSize:    4096,
		MaxMessages:          50_000,
		RateLimitBurst:       20,
		RoleWeights:          DefaultRoleWeights(),
		DefaultRoleWeight:    5,
		RationaleWindowHours: 72,
		MaxRationaleSnippets: 6,
	}
}

// RationaleWindow returns RationaleWindowHours as a duration.
func (c *Config) RationaleWindow() time.Duration {
	return time.Duration(c.RationaleWindowHours) * time.Hour
}
