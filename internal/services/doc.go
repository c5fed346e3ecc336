// Package services defines shared utilities consumed by the organizer engine
// and its external capabilities.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and phase names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the recoverable per-file kinds (metadata, pattern, move) and the
//     run-level kinds (directory access, configuration).
//
// The capability subpackages (mediadate, pattern) live underneath so the
// planner consumes them through narrow interfaces.
package services
