package journal

import "time"

// RunStatus is the lifecycle state of a journaled run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// OpStatus is the outcome of one planned file.
type OpStatus string

const (
	OpDone    OpStatus = "done"
	OpSkipped OpStatus = "skipped"
	OpFailed  OpStatus = "failed"
)

// Run is one organizer invocation.
type Run struct {
	ID         string
	SourceRoot string
	TargetRoot string
	Mode       string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Totals     Totals
}

// Totals are the counters stored when a run finishes.
type Totals struct {
	FilesMoved int
	BytesMoved int64
	Skipped    int
	Errors     int
}

// Operation is one planned file within a run.
type Operation struct {
	RunID       string
	Seq         int
	SourcePath  string
	TargetPath  string
	Disposition string
	Status      OpStatus
	SizeBytes   int64
	Error       string
	RecordedAt  time.Time
}
