// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and JOBGUARD_* environment variables on top.
// - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"runtime"
)

// Log formats understood by pkg/logger.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8001".
	Addr string `koanf:"addr"`

	// ModelPath points at the serialized classification pipeline.
	ModelPath string `koanf:"model_path"`

	// ModelChecksum optionally pins the artifact's SHA-256 hex digest.
	ModelChecksum string `koanf:"model_checksum"`

	// WorkerCount sets the number of inference workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory inference queue.
	QueueSize int `koanf:"queue_size"`

	// MaxBatchSize caps POST /predict/batch. Zero disables the cap.
	MaxBatchSize int `koanf:"max_batch_size"`

	// MaxBodyBytes caps request bodies. Zero disables the cap.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSAllowedOrigins is a comma-separated origin list; "*" allows any.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// WriteTimeoutMS bounds how long a response may take to write.
	WriteTimeoutMS int `koanf:"write_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config with defaults. Context is accepted first to follow the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          LogFormatText,
		Addr:               ":8001",
		ModelPath:          "models/fraud_job_model.json",
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1024,
		MaxBatchSize:       10_000,
		MaxBodyBytes:       32 << 20,
		CORSAllowedOrigins: "*",
		WriteTimeoutMS:     60_000,
		ShutdownTimeoutMS:  10_000,
	}
}
