//go:build !linux

package fileutil

import "github.com/spf13/afero"

func renameNoReplace(fs afero.Fs, src, dst string) error {
	return checkedRename(fs, src, dst)
}
