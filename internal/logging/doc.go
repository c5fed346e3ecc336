// Package logging assembles structured slog loggers and formatting helpers used
// across mediaorg.
//
// It owns the configurable console/JSON handlers, fans output to an optional
// log file, and exposes context-aware helpers so organizer code can tag log
// lines with run IDs and pipeline phases. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
