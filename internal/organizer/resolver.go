package organizer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mediaorg/internal/logging"
)

// ConflictResolver assigns each candidate a disposition against the run's
// TargetIndex and claims the chosen path.
type ConflictResolver struct {
	index  *TargetIndex
	fp     *Fingerprinter
	logger *slog.Logger
}

// NewConflictResolver wires a resolver to a run-scoped index.
func NewConflictResolver(index *TargetIndex, fp *Fingerprinter, logger *slog.Logger) *ConflictResolver {
	return &ConflictResolver{index: index, fp: fp, logger: logging.NewComponentLogger(logger, "resolver")}
}

// Resolve decides what happens to file given its computed target. routed
// marks files sent to the unrecognized folder; they keep the Unrecognized
// disposition even when their name needs a suffix.
//
// A free target is claimed as-is. An occupied target holding the same file
// yields SkipDuplicate. Otherwise stem(1).ext, stem(2).ext, ... are tried in
// order; the first free candidate is claimed, and a candidate already holding
// the same file also yields SkipDuplicate so suffixed files from earlier runs
// are recognized.
func (r *ConflictResolver) Resolve(file MediaFile, target string, routed bool) DestinationPlan {
	base := Move
	renamed := RenameAndMove
	if routed {
		base, renamed = Unrecognized, Unrecognized
	}

	occ, taken := r.index.Lookup(target)
	if !taken {
		r.index.Record(target, file)
		return DestinationPlan{File: file, TargetPath: target, Disposition: base, Reason: "destination free"}
	}
	if r.fp.Same(file, occ) {
		return DestinationPlan{File: file, TargetPath: target, Disposition: SkipDuplicate, Reason: duplicateReason(occ)}
	}

	dir := filepath.Dir(target)
	name := filepath.Base(target)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, n, ext))
		occ, taken := r.index.Lookup(candidate)
		if !taken {
			r.index.Record(candidate, file)
			r.logger.Debug("destination occupied; using suffix",
				logging.String("target", target),
				logging.String("candidate", candidate),
			)
			return DestinationPlan{
				File:        file,
				TargetPath:  candidate,
				Disposition: renamed,
				Reason:      fmt.Sprintf("%s occupied by a different file", name),
			}
		}
		if r.fp.Same(file, occ) {
			return DestinationPlan{File: file, TargetPath: candidate, Disposition: SkipDuplicate, Reason: duplicateReason(occ)}
		}
	}
}

func duplicateReason(occ *occupant) string {
	if occ.planned {
		return "same file planned earlier in this run from " + occ.contentPath
	}
	return "same file already at destination"
}
