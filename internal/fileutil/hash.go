package fileutil

import (
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

const hashBufferSize = 64 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, hashBufferSize)
		return &b
	},
}

// HashFile returns the xxhash64 digest of the full file content.
func HashFile(fs afero.Fs, path string) (uint64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
