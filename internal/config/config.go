package config

import "path/filepath"

// Paths contains directories owned by mediaorg itself.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Organize contains the layout and duplicate-handling rules.
type Organize struct {
	TargetDirPattern  string   `toml:"target_dir_pattern"`
	TargetFilePattern string   `toml:"target_file_pattern"`
	Unrecognized      string   `toml:"unrecognized"`
	Mode              string   `toml:"mode"`        // move or copy
	Fingerprint       string   `toml:"fingerprint"` // size or xxhash
	SkipHidden        bool     `toml:"skip_hidden"`
	PruneEmptyDirs    bool     `toml:"prune_empty_dirs"`
	Exclude           []string `toml:"exclude"`
}

// Dates toggles individual creation-time sources.
type Dates struct {
	EXIF      bool `toml:"exif"`
	QuickTime bool `toml:"quicktime"`
	Filename  bool `toml:"filename"`
	FileTime  bool `toml:"file_time"`
}

// Journal controls the run history database.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediaorg.
//
// Configuration sections by subsystem:
//   - Paths: state (journal, locks) and log directories
//   - Organize: target patterns, unrecognized folder, move/copy mode
//   - Dates: which metadata sources may supply a creation time
//   - Journal: run history persistence
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Dates    Dates    `toml:"dates"`
	Journal  Journal  `toml:"journal"`
	Logging  Logging  `toml:"logging"`
}

// JournalPath returns the location of the run history database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockDir returns the directory holding per-target run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// CopyMode reports whether sources are kept after being organized.
func (c *Config) CopyMode() bool {
	return c.Organize.Mode == ModeCopy
}
