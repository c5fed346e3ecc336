package testsupport

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFile creates path on fsys holding size copies of fill, creating
// parent directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, fsys afero.Fs, path string, size int64, fill byte) {
	t.Helper()

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := bytes.Repeat([]byte{fill}, int(max(size, 1)))
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ListFiles returns every regular file under root on fsys in lexical order.
func ListFiles(t testing.TB, fsys afero.Fs, root string) []string {
	t.Helper()

	var files []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err == nil && info.Mode().IsRegular() {
			files = append(files, path)
		}
		return err
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}
