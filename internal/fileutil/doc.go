// Package fileutil holds the filesystem primitives used when relocating media:
// verified copies, no-clobber moves with a cross-device fallback, content
// hashing, and empty-directory pruning. Every helper operates on an afero.Fs so
// callers can run against the host, a read-only overlay, or an in-memory tree.
package fileutil
