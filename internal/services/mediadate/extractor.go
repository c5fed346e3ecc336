package mediadate

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mediaorg/internal/services"
)

// Source identifies where a creation time came from.
type Source string

const (
	SourceNone      Source = ""
	SourceEXIF      Source = "exif"
	SourceQuickTime Source = "quicktime"
	SourceFilename  Source = "filename"
	SourceFileTime  Source = "file_time"
)

// minUsable rejects zeroed or epoch-default timestamps.
var minUsable = time.Date(1971, time.January, 1, 0, 0, 0, 0, time.UTC)

var exifExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".jpe":  true,
	".tif":  true,
	".tiff": true,
	".dng":  true, // Adobe Digital Negative
	".arw":  true, // Sony RAW
	".cr2":  true, // Canon RAW
	".nef":  true, // Nikon RAW
}

var quickTimeExts = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
	".3gp": true,
}

// Extractor recovers a creation time for a file path.
type Extractor interface {
	CreationTime(path string) (time.Time, Source, error)
}

// Options toggles individual date sources.
type Options struct {
	EXIF      bool
	QuickTime bool
	Filename  bool
	FileTime  bool
}

// DefaultOptions enables every source.
func DefaultOptions() Options {
	return Options{EXIF: true, QuickTime: true, Filename: true, FileTime: true}
}

// FileExtractor reads metadata through an afero filesystem.
type FileExtractor struct {
	fs   afero.Fs
	opts Options
}

// New constructs an extractor. A nil fs reads the host filesystem.
func New(fs afero.Fs, opts Options) *FileExtractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileExtractor{fs: fs, opts: opts}
}

// CreationTime returns the first usable timestamp from the enabled sources.
func (e *FileExtractor) CreationTime(path string) (time.Time, Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var causes []string

	if e.opts.EXIF && exifExts[ext] {
		ts, err := e.exifTime(path)
		if err == nil && usable(ts) {
			return ts, SourceEXIF, nil
		}
		causes = append(causes, describe("exif", err))
	}
	if e.opts.QuickTime && quickTimeExts[ext] {
		ts, err := e.quickTimeCreation(path)
		if err == nil && usable(ts) {
			return ts, SourceQuickTime, nil
		}
		causes = append(causes, describe("quicktime", err))
	}
	if e.opts.Filename {
		if ts, ok := FromFilename(filepath.Base(path)); ok && usable(ts) {
			return ts, SourceFilename, nil
		}
	}
	if e.opts.FileTime {
		info, err := e.fs.Stat(path)
		if err != nil {
			return time.Time{}, SourceNone, services.Wrap(services.ErrMetadataUnavailable, "plan", "stat", path, err)
		}
		if ts := info.ModTime(); usable(ts) {
			return ts, SourceFileTime, nil
		}
		causes = append(causes, "file_time: unusable modification time")
	}

	detail := path
	if len(causes) > 0 {
		detail = fmt.Sprintf("%s (%s)", path, strings.Join(causes, "; "))
	}
	return time.Time{}, SourceNone, services.Wrap(services.ErrMetadataUnavailable, "plan", "extract creation time", detail, nil)
}

func usable(ts time.Time) bool {
	return !ts.IsZero() && !ts.Before(minUsable)
}

func describe(source string, err error) string {
	if err == nil {
		return source + ": unusable timestamp"
	}
	return source + ": " + err.Error()
}
