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
	envPrefix     = "JOBGUARD_"
	envConfigFile = envPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if JOBGUARD_CONFIG is set
//  3. env (prefix JOBGUARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// JOBGUARD_MODEL_PATH -> model_path. Underscores are kept to match the
	// flat koanf tags; JOBGUARD_CONFIG itself maps to "config" and is ignored.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1, got %d", ErrInvalidConfig, c.QueueSize)
	case c.MaxBatchSize < 0:
		return fmt.Errorf("%w: max_batch_size must not be negative", ErrInvalidConfig)
	case c.MaxBodyBytes < 0:
		return fmt.Errorf("%w: max_body_bytes must not be negative", ErrInvalidConfig)
	case c.WriteTimeoutMS < 0 || c.ShutdownTimeoutMS < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be %q or %q, got %q",
			ErrInvalidConfig, LogFormatText, LogFormatJSON, c.LogFormat)
	}
	return nil
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
