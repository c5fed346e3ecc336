package organizer

import (
	"fmt"
	"time"

	"mediaorg/internal/services/mediadate"
)

// MediaFile is a regular file discovered under the source root. It is not
// modified after discovery.
type MediaFile struct {
	SourcePath   string
	Size         int64
	ModTime      time.Time
	CreationTime time.Time
	DateSource   mediadate.Source
}

// Dated reports whether a creation time was recovered.
func (f MediaFile) Dated() bool {
	return !f.CreationTime.IsZero()
}

// Disposition is the decided outcome for one planned file.
type Disposition int

const (
	Move Disposition = iota
	SkipDuplicate
	RenameAndMove
	Unrecognized
)

func (d Disposition) String() string {
	switch d {
	case Move:
		return "move"
	case SkipDuplicate:
		return "skip_duplicate"
	case RenameAndMove:
		return "rename_and_move"
	case Unrecognized:
		return "unrecognized"
	}
	return fmt.Sprintf("disposition(%d)", int(d))
}

// Transfers reports whether the disposition relocates the file.
func (d Disposition) Transfers() bool {
	return d != SkipDuplicate
}

// MarshalText renders the disposition for JSON output.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DestinationPlan is the computed outcome for one MediaFile. For
// SkipDuplicate, TargetPath is the occupied path holding the duplicate.
type DestinationPlan struct {
	File        MediaFile
	TargetPath  string
	Disposition Disposition
	Reason      string
}

// FileError records a per-file failure that did not abort the run.
type FileError struct {
	SourcePath string
	TargetPath string
	Err        error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.SourcePath, e.TargetPath, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
