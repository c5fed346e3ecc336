package fileutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// MoveMethod describes how Move relocated a file.
type MoveMethod int

const (
	MovedByRename MoveMethod = iota
	MovedByCopy
)

func (m MoveMethod) String() string {
	if m == MovedByCopy {
		return "copy+delete"
	}
	return "rename"
}

// Move relocates src to dst without overwriting an existing dst. A same-device
// rename is attempted first; when the rename crosses filesystems the file is
// copied with verification and the source removed afterwards.
func Move(fs afero.Fs, src, dst string) (MoveMethod, error) {
	err := renameNoReplace(fs, src, dst)
	if err == nil {
		return MovedByRename, nil
	}
	if !IsCrossDevice(err) {
		return MovedByRename, err
	}

	if err := CopyFileVerified(fs, src, dst); err != nil {
		return MovedByCopy, fmt.Errorf("cross-device copy: %w", err)
	}
	if err := fs.Remove(src); err != nil {
		return MovedByCopy, fmt.Errorf("remove source after copy: %w", err)
	}
	return MovedByCopy, nil
}

// checkedRename refuses an occupied dst and then renames. A file created at
// dst between the check and the rename is replaced; renameNoReplace closes
// that window where the kernel allows it.
func checkedRename(fs afero.Fs, src, dst string) error {
	exists, err := Exists(fs, dst)
	if err != nil {
		return fmt.Errorf("check destination: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	return fs.Rename(src, dst)
}

// Exists reports whether anything (file, directory, or symlink) occupies path.
func Exists(fs afero.Fs, path string) (bool, error) {
	_, err := Lstat(fs, path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Lstat uses the filesystem's Lstat when available and Stat otherwise.
func Lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if ls, ok := fs.(afero.Lstater); ok {
		info, _, err := ls.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}
