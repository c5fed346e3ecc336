// Package config loads, normalizes, and validates mediaorg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from an explicit path, the per-user config
// directory, or ./mediaorg.toml. Command-line flags override individual fields
// after Load returns, so the Config type is the single source for patterns,
// date-source toggles, journal placement, and logging.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
