package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// ErrDestinationExists reports that a copy or move would overwrite a file.
var ErrDestinationExists = errors.New("destination already exists")

// CopyFileVerified copies src to a new file dst, then re-reads dst and
// compares its size and xxhash64 with what was read from src. dst keeps
// src's permissions and modification time. A dst that fails verification
// is removed; an existing dst is never touched. On filesystems with
// copy-on-write support the data is cloned instead of streamed.
func CopyFileVerified(fs afero.Fs, src, dst string) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := createExclusive(fs, dst, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = fs.Remove(dst)
		}
	}()

	digest := xxhash.New()
	var written int64
	if cloneFile(out, in) {
		// The clone shares extents with src; hashing src still feeds the
		// verification below.
		if _, err = in.Seek(0, io.SeekStart); err != nil {
			return err
		}
		written, err = io.Copy(digest, in)
	} else {
		written, err = io.Copy(out, io.TeeReader(in, digest))
	}
	if err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	if written != info.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}

	sum, err := HashFile(fs, dst)
	if err != nil {
		return fmt.Errorf("hash destination: %w", err)
	}
	if sum != digest.Sum64() {
		return errors.New("copy hash mismatch: destination differs from source")
	}

	mtime := info.ModTime()
	if chErr := fs.Chtimes(dst, mtime, mtime); chErr != nil {
		return fmt.Errorf("preserve modification time: %w", chErr)
	}
	return nil
}

func createExclusive(fs afero.Fs, path string, perm os.FileMode) (afero.File, error) {
	if perm == 0 {
		perm = 0o644
	}
	out, err := fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, path)
	}
	return out, err
}
