package testsupport

import (
	"path/filepath"
	"testing"

	"mediaorg/internal/config"
)

// ConfigOption adjusts a test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration with its state directory in a
// per-test temp dir, file logging off, and debug level logs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	cfg.Paths.LogDir = ""
	cfg.Logging.Level = "debug"
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCopyMode keeps sources in place.
func WithCopyMode() ConfigOption {
	return func(cfg *config.Config) { cfg.Organize.Mode = config.ModeCopy }
}

// WithoutJournal disables run history.
func WithoutJournal() ConfigOption {
	return func(cfg *config.Config) { cfg.Journal.Enabled = false }
}

// WithPruneEmptyDirs enables source pruning after move runs.
func WithPruneEmptyDirs() ConfigOption {
	return func(cfg *config.Config) { cfg.Organize.PruneEmptyDirs = true }
}
