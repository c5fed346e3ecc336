package testsupport

import (
	"path/filepath"
	"time"

	"mediaorg/internal/services"
	"mediaorg/internal/services/mediadate"
)

// StubDates is a mediadate.Extractor answering from a fixed table keyed by
// base file name. Unknown names report metadata as unavailable.
type StubDates map[string]time.Time

// CreationTime implements mediadate.Extractor.
func (s StubDates) CreationTime(path string) (time.Time, mediadate.Source, error) {
	if ts, ok := s[filepath.Base(path)]; ok {
		return ts, mediadate.SourceEXIF, nil
	}
	return time.Time{}, mediadate.SourceNone, services.Wrap(services.ErrMetadataUnavailable, "plan", "extract creation time", path, nil)
}
