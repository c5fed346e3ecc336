//go:build linux

package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

func stubClone(t *testing.T, fn func(dst, src int) error) *int {
	t.Helper()
	calls := 0
	prev := cloneRange
	cloneRange = func(dst, src int) error {
		calls++
		return fn(dst, src)
	}
	cloneFailures.Store(0)
	t.Cleanup(func() {
		cloneRange = prev
		cloneFailures.Store(0)
	})
	return &calls
}

// preadClone copies through positional I/O so neither file offset moves,
// like a real FICLONE.
func preadClone(dst, src int) error {
	var st unix.Stat_t
	if err := unix.Fstat(src, &st); err != nil {
		return err
	}
	buf := make([]byte, st.Size)
	if _, err := unix.Pread(src, buf, 0); err != nil {
		return err
	}
	_, err := unix.Pwrite(dst, buf, 0)
	return err
}

func writeSource(t *testing.T, dir string, data string) string {
	t.Helper()
	src := filepath.Join(dir, "src.jpg")
	if err := os.WriteFile(src, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestCopyFileVerifiedUsesClone(t *testing.T) {
	calls := stubClone(t, preadClone)
	dir := t.TempDir()
	src := writeSource(t, dir, "cloned bytes")
	dst := filepath.Join(dir, "dst.jpg")

	if err := CopyFileVerified(afero.NewOsFs(), src, dst); err != nil {
		t.Fatalf("CopyFileVerified: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("clone calls = %d, want 1", *calls)
	}
	if got, _ := os.ReadFile(dst); string(got) != "cloned bytes" {
		t.Fatalf("destination content = %q", got)
	}
}

func TestCopyFileVerifiedRejectsBadClone(t *testing.T) {
	stubClone(t, func(int, int) error { return nil })
	dir := t.TempDir()
	src := writeSource(t, dir, "real content")
	dst := filepath.Join(dir, "dst.jpg")

	if err := CopyFileVerified(afero.NewOsFs(), src, dst); err == nil {
		t.Fatal("expected verification failure for an empty clone")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("unverified destination left behind: %v", err)
	}
}

func TestCopyFileVerifiedStopsCloningAfterFailures(t *testing.T) {
	calls := stubClone(t, func(int, int) error { return unix.EOPNOTSUPP })
	dir := t.TempDir()
	src := writeSource(t, dir, "streamed")
	fs := afero.NewOsFs()

	for i := range maxCloneFailures + 2 {
		dst := filepath.Join(dir, "copy", string(rune('a'+i))+".jpg")
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := CopyFileVerified(fs, src, dst); err != nil {
			t.Fatalf("copy %d: %v", i, err)
		}
		if got, _ := os.ReadFile(dst); string(got) != "streamed" {
			t.Fatalf("copy %d content = %q", i, got)
		}
	}
	if *calls != maxCloneFailures {
		t.Fatalf("clone attempts = %d, want %d", *calls, maxCloneFailures)
	}
}

func TestCloneFileSkipsNonOsFiles(t *testing.T) {
	calls := stubClone(t, preadClone)
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/a.jpg", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(fs, "/a.jpg", "/b.jpg"); err != nil {
		t.Fatalf("CopyFileVerified: %v", err)
	}
	if *calls != 0 {
		t.Fatalf("clone attempted on an in-memory file")
	}
}
