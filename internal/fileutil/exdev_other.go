//go:build !unix

package fileutil

// IsCrossDevice is always false where EXDEV is not reported.
func IsCrossDevice(error) bool {
	return false
}
