package fileutil

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

type renameFs struct {
	afero.Fs
	renameErr error
}

func (f renameFs) Rename(oldname, newname string) error {
	if f.renameErr != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: f.renameErr}
	}
	return f.Fs.Rename(oldname, newname)
}

func TestMoveRename(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/src/a.jpg", []byte("photo"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/dst", 0o755); err != nil {
		t.Fatal(err)
	}

	method, err := Move(fs, "/src/a.jpg", "/dst/a.jpg")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if method != MovedByRename {
		t.Fatalf("method = %v, want rename", method)
	}
	if ok, _ := afero.Exists(fs, "/src/a.jpg"); ok {
		t.Fatal("source still present")
	}
	got, _ := afero.ReadFile(fs, "/dst/a.jpg")
	if string(got) != "photo" {
		t.Fatalf("destination content = %q", got)
	}
}

func TestMoveNoClobber(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/src/a.jpg", []byte("new"), 0o644)
	_ = afero.WriteFile(fs, "/dst/a.jpg", []byte("old"), 0o644)

	_, err := Move(fs, "/src/a.jpg", "/dst/a.jpg")
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	got, _ := afero.ReadFile(fs, "/dst/a.jpg")
	if string(got) != "old" {
		t.Fatalf("destination overwritten: %q", got)
	}
	if ok, _ := afero.Exists(fs, "/src/a.jpg"); !ok {
		t.Fatal("source removed after refused move")
	}
}

func TestMoveRenameFailureIsReturned(t *testing.T) {
	base := afero.NewMemMapFs()
	_ = afero.WriteFile(base, "/src/a.jpg", []byte("photo"), 0o644)
	fs := renameFs{Fs: base, renameErr: os.ErrPermission}

	_, err := Move(fs, "/src/a.jpg", "/dst/a.jpg")
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if ok, _ := afero.Exists(base, "/dst/a.jpg"); ok {
		t.Fatal("destination created despite failed rename")
	}
}
