// Package organizer relocates media files from a source tree into a target
// tree laid out by creation time.
//
// A run is a one-directional pipeline. The Planner walks the source tree in
// sorted order, dates every regular file, and renders its destination from
// the configured strftime patterns. Each candidate is handed to the
// ConflictResolver, which consults a run-scoped TargetIndex (seeded lazily
// from the target tree and updated with every planned file) to decide between
// Move, SkipDuplicate, RenameAndMove, and Unrecognized. The Executor then
// applies the plans, or in dry-run mode only records what it would do.
//
// Planning is identical in dry and real runs, which is what makes the dry-run
// report trustworthy and repeated runs idempotent: files already organized
// resolve to SkipDuplicate on the next pass.
package organizer
