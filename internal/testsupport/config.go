package testsupport

import (
	"path/filepath"
	"testing"

	"tagdock/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.IncomingDir = filepath.Join(base, "incoming")
	cfg.Paths.BlobDir = filepath.Join(base, "blobs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMaxBatchSize overrides the intake batch limit on the test config.
func WithMaxBatchSize(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Intake.MaxBatchSize = limit
	}
}

// WithConcurrency overrides intake pipeline concurrency on the test config.
func WithConcurrency(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Intake.Concurrency = n
	}
}
