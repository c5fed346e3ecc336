//go:build linux

package fileutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// renameNoReplace renames with RENAME_NOREPLACE on the OS filesystem so the
// kernel rejects an occupied dst atomically. Kernels or filesystems without
// the flag, and non-OS filesystems, use checkedRename.
func renameNoReplace(fs afero.Fs, src, dst string) error {
	if _, ok := fs.(*afero.OsFs); !ok {
		return checkedRename(fs, src, dst)
	}
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EEXIST):
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		return checkedRename(fs, src, dst)
	}
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
}
