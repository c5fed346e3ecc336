//go:build linux

package fileutil

import (
	"os"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// maxCloneFailures is how many clone attempts in a row may fail before
// copies stop trying and always stream.
const maxCloneFailures = 3

var (
	cloneFailures atomic.Int32
	// cloneRange makes dst share src's extents (FICLONE).
	cloneRange = unix.IoctlFileClone
)

// cloneFile reflinks src into the empty dst when both are OS files on a
// filesystem that supports it, and reports whether it did.
func cloneFile(dst, src afero.File) bool {
	if cloneFailures.Load() >= maxCloneFailures {
		return false
	}
	out, ok := dst.(*os.File)
	if !ok {
		return false
	}
	in, ok := src.(*os.File)
	if !ok {
		return false
	}
	if err := cloneRange(int(out.Fd()), int(in.Fd())); err != nil {
		cloneFailures.Add(1)
		return false
	}
	cloneFailures.Store(0)
	return true
}
