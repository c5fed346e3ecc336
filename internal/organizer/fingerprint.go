package organizer

import (
	"log/slog"

	"github.com/spf13/afero"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/logging"
)

// Fingerprinter decides whether a candidate is the same file as an occupant.
// Equal size is the baseline signal; with content checks enabled, equal-size
// pairs are also compared by xxhash64 of their full content. Hashes are
// computed lazily and cached for the run.
type Fingerprinter struct {
	fs      afero.Fs
	content bool
	logger  *slog.Logger
	hashes  map[string]uint64
}

// NewFingerprinter builds a size-only fingerprinter, or a size+content one
// when content is true.
func NewFingerprinter(fs afero.Fs, content bool, logger *slog.Logger) *Fingerprinter {
	return &Fingerprinter{
		fs:      fs,
		content: content,
		logger:  logging.NewComponentLogger(logger, "fingerprint"),
		hashes:  make(map[string]uint64),
	}
}

// Same reports whether file matches the occupant. Non-regular occupants never match.
func (f *Fingerprinter) Same(file MediaFile, occ *occupant) bool {
	if occ == nil || !occ.regular || file.Size != occ.size {
		return false
	}
	if !f.content {
		return true
	}

	candidate, err := f.hash(file.SourcePath)
	if err != nil {
		f.warnHash(file.SourcePath, err)
		return false
	}
	if !occ.hashed {
		sum, err := f.hash(occ.contentPath)
		if err != nil {
			f.warnHash(occ.contentPath, err)
			return false
		}
		occ.hash, occ.hashed = sum, true
	}
	return candidate == occ.hash
}

func (f *Fingerprinter) hash(path string) (uint64, error) {
	if sum, ok := f.hashes[path]; ok {
		return sum, nil
	}
	sum, err := fileutil.HashFile(f.fs, path)
	if err != nil {
		return 0, err
	}
	f.hashes[path] = sum
	return sum, nil
}

func (f *Fingerprinter) warnHash(path string, err error) {
	logging.WarnWithContext(f.logger, "content hash failed; treating files as distinct", "fingerprint",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldImpact, "file is kept under a suffixed name instead of skipped"),
	)
}
