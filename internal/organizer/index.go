package organizer

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/logging"
)

// occupant is whatever holds a destination path: a file already in the
// target tree or a file planned earlier in this run.
type occupant struct {
	path        string
	size        int64
	regular     bool
	contentPath string // where the bytes can be read during planning
	planned     bool

	hash   uint64
	hashed bool
}

// TargetIndex tracks occupied destination paths for a single run. Target
// directories are listed lazily, the first time a path inside them is looked
// up; planned files are recorded as they are resolved.
//
// Entries are keyed by exact path. A free path whose NFC form equals that of
// an entry (a normalization twin) reports an occupant that never matches, so
// the candidate is suffixed rather than skipped or written over on
// normalization-insensitive filesystems.
type TargetIndex struct {
	fs       afero.Fs
	logger   *slog.Logger
	entries  map[string]*occupant
	folded   map[string]string // NFC form -> first exact path holding it
	seeded   map[string]struct{}
	unlisted map[string]struct{}
}

// NewTargetIndex returns an empty index reading the target tree through fs.
func NewTargetIndex(fs afero.Fs, logger *slog.Logger) *TargetIndex {
	return &TargetIndex{
		fs:       fs,
		logger:   logging.NewComponentLogger(logger, "target-index"),
		entries:  make(map[string]*occupant),
		folded:   make(map[string]string),
		seeded:   make(map[string]struct{}),
		unlisted: make(map[string]struct{}),
	}
}

func indexKey(path string) string {
	return filepath.Clean(path)
}

func (ix *TargetIndex) add(key string, entry *occupant) {
	ix.entries[key] = entry
	if _, ok := ix.folded[norm.NFC.String(key)]; !ok {
		ix.folded[norm.NFC.String(key)] = key
	}
}

// Lookup returns the occupant of path, if any.
func (ix *TargetIndex) Lookup(path string) (*occupant, bool) {
	dir := filepath.Dir(path)
	ix.seed(dir)

	key := indexKey(path)
	if entry, ok := ix.entries[key]; ok {
		return entry, true
	}
	if _, ok := ix.unlisted[indexKey(dir)]; ok {
		info, err := fileutil.Lstat(ix.fs, path)
		if err == nil {
			entry := occupantFromInfo(path, info)
			ix.add(key, entry)
			return entry, true
		}
	}
	if twin, ok := ix.folded[norm.NFC.String(key)]; ok && twin != key {
		return &occupant{path: twin, contentPath: twin}, true
	}
	return nil, false
}

// Record claims path for a planned file.
func (ix *TargetIndex) Record(path string, file MediaFile) {
	ix.add(indexKey(path), &occupant{
		path:        path,
		size:        file.Size,
		regular:     true,
		contentPath: file.SourcePath,
		planned:     true,
	})
}

// Len reports how many paths are known to be occupied.
func (ix *TargetIndex) Len() int {
	return len(ix.entries)
}

func (ix *TargetIndex) seed(dir string) {
	dirKey := indexKey(dir)
	if _, ok := ix.seeded[dirKey]; ok {
		return
	}
	ix.seeded[dirKey] = struct{}{}

	infos, err := afero.ReadDir(ix.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		ix.unlisted[dirKey] = struct{}{}
		logging.WarnWithContext(ix.logger, "target directory not listable; checking paths individually", "target_index",
			logging.String("dir", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the target tree"),
			logging.String(logging.FieldImpact, "duplicate detection falls back to per-file checks"),
		)
		return
	}
	for _, info := range infos {
		path := filepath.Join(dir, info.Name())
		key := indexKey(path)
		if _, exists := ix.entries[key]; exists {
			continue
		}
		ix.add(key, occupantFromInfo(path, info))
	}
	ix.logger.Debug("seeded target directory", logging.String("dir", dir), logging.Int("entries", len(infos)))
}

func occupantFromInfo(path string, info os.FileInfo) *occupant {
	return &occupant{
		path:        path,
		size:        info.Size(),
		regular:     info.Mode().IsRegular(),
		contentPath: path,
	}
}
