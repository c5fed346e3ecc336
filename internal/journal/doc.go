// Package journal persists a history of real organizer runs in SQLite.
//
// Each run gets a row in runs and one row per planned file in operations,
// recording where the file went and whether it was moved, skipped as a
// duplicate, or failed. The journal is informational: duplicate detection
// always consults the target tree, never this database. Dry runs are not
// journaled.
package journal
