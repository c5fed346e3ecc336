package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	c.Organize.Unrecognized = strings.TrimSpace(c.Organize.Unrecognized)
	c.Organize.Mode = strings.ToLower(strings.TrimSpace(c.Organize.Mode))
	if c.Organize.Mode == "" {
		c.Organize.Mode = ModeMove
	}
	c.Organize.Fingerprint = strings.ToLower(strings.TrimSpace(c.Organize.Fingerprint))
	if c.Organize.Fingerprint == "" {
		c.Organize.Fingerprint = FingerprintSize
	}

	excludes := make([]string, 0, len(c.Organize.Exclude))
	seen := make(map[string]struct{}, len(c.Organize.Exclude))
	for _, entry := range c.Organize.Exclude {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entry = filepath.Clean(filepath.FromSlash(entry))
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		excludes = append(excludes, entry)
	}
	c.Organize.Exclude = excludes
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
