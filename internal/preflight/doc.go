// Package preflight provides readiness checks for the directories an
// organizer run depends on.
//
// The organizer calls RunAll before planning. A failed check means the run
// cannot make progress (unreadable source, unwritable target or state
// directory) and is reported as a catastrophic error instead of a flood of
// per-file failures.
package preflight
