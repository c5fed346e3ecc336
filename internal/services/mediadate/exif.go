package mediadate

import (
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifTime extracts DateTimeOriginal (or DateTime) from the EXIF block.
func (e *FileExtractor) exifTime(path string) (time.Time, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}
