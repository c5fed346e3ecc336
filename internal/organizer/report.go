package organizer

import "path/filepath"

// ReportEntry is one planned operation as shown to the user.
type ReportEntry struct {
	Source      string      `json:"source"`
	Target      string      `json:"target"`
	Disposition Disposition `json:"disposition"`
	Size        int64       `json:"size"`
	Reason      string      `json:"reason,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// RunReport is the ordered record of a run. In dry runs the counters are
// what a real run would have transferred.
type RunReport struct {
	RunID          string        `json:"run_id"`
	DryRun         bool          `json:"dry_run"`
	Operations     []ReportEntry `json:"operations"`
	NewDirectories []string      `json:"new_directories"`
	CopiedFiles    int           `json:"copied_files"`
	CopiedBytes    int64         `json:"copied_bytes"`
}

// DirectoryGroup collects the operations landing in one destination directory.
type DirectoryGroup struct {
	Dir     string
	New     bool
	Entries []ReportEntry
}

// Directories groups operations by destination directory in first-seen order.
func (r *RunReport) Directories() []DirectoryGroup {
	if r == nil {
		return nil
	}
	newDirs := make(map[string]struct{}, len(r.NewDirectories))
	for _, dir := range r.NewDirectories {
		newDirs[dir] = struct{}{}
	}

	var groups []DirectoryGroup
	positions := make(map[string]int)
	for _, entry := range r.Operations {
		dir := filepath.Dir(entry.Target)
		pos, ok := positions[dir]
		if !ok {
			_, isNew := newDirs[dir]
			pos = len(groups)
			positions[dir] = pos
			groups = append(groups, DirectoryGroup{Dir: dir, New: isNew})
		}
		groups[pos].Entries = append(groups[pos].Entries, entry)
	}
	return groups
}

// Failures returns entries that carry an error.
func (r *RunReport) Failures() []ReportEntry {
	if r == nil {
		return nil
	}
	var out []ReportEntry
	for _, entry := range r.Operations {
		if entry.Error != "" {
			out = append(out, entry)
		}
	}
	return out
}
