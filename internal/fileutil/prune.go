package fileutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// PruneEmptyDirs removes directories under root that are empty, deepest
// first, and returns the removed paths. root itself is never removed, and the
// subtrees named in skip are neither descended nor removed. Directories that
// cannot be listed or removed are left in place.
func PruneEmptyDirs(fs afero.Fs, root string, skip ...string) ([]string, error) {
	skipped := make(map[string]struct{}, len(skip))
	for _, dir := range skip {
		skipped[filepath.Clean(dir)] = struct{}{}
	}

	var dirs []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if _, ok := skipped[filepath.Clean(path)]; ok && path != root {
			return filepath.SkipDir
		}
		if err != nil {
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			if path == root {
				return err
			}
			return nil
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deepest paths first so parents become empty before they are checked.
	sort.SliceStable(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	var removed []string
	for _, dir := range dirs {
		empty, err := afero.IsEmpty(fs, dir)
		if err != nil || !empty {
			continue
		}
		if err := fs.Remove(dir); err != nil {
			continue
		}
		removed = append(removed, dir)
	}
	return removed, nil
}
