package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if strings.TrimSpace(c.Organize.TargetDirPattern) == "" {
		return errors.New("organize.target_dir_pattern must be set")
	}
	if strings.TrimSpace(c.Organize.TargetFilePattern) == "" {
		return errors.New("organize.target_file_pattern must be set")
	}
	if err := validateFolderName(c.Organize.Unrecognized); err != nil {
		return fmt.Errorf("organize.unrecognized %w", err)
	}
	switch c.Organize.Mode {
	case ModeMove, ModeCopy:
	default:
		return fmt.Errorf("organize.mode must be %q or %q, got %q", ModeMove, ModeCopy, c.Organize.Mode)
	}
	switch c.Organize.Fingerprint {
	case FingerprintSize, FingerprintXXHash:
	default:
		return fmt.Errorf("organize.fingerprint must be %q or %q, got %q", FingerprintSize, FingerprintXXHash, c.Organize.Fingerprint)
	}
	for _, entry := range c.Organize.Exclude {
		if filepath.IsAbs(entry) || entry == ".." || strings.HasPrefix(entry, ".."+string(filepath.Separator)) {
			return fmt.Errorf("organize.exclude entries must be relative to the source root, got %q", entry)
		}
	}
	return nil
}

func validateFolderName(name string) error {
	switch {
	case name == "":
		return errors.New("must be set")
	case name == "." || name == "..":
		return fmt.Errorf("must not be %q", name)
	case strings.ContainsAny(name, `/\`):
		return errors.New("must be a single folder name without separators")
	case strings.ContainsRune(name, 0):
		return errors.New("must not contain NUL bytes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// ValidateFolderName checks a command-line override for the unrecognized folder.
func ValidateFolderName(name string) error {
	return validateFolderName(strings.TrimSpace(name))
}
