package mediadate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// quickTimeEpochOffset is the number of seconds between 1904-01-01 and the Unix epoch.
const quickTimeEpochOffset = 2082844800

var errNoMovieHeader = errors.New("no mvhd atom")

// quickTimeCreation reads moov/mvhd creation_time from an ISO base media file.
func (e *FileExtractor) quickTimeCreation(path string) (time.Time, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}
	return ReadMovieCreationTime(f, info.Size())
}

// ReadMovieCreationTime scans top-level boxes for moov and returns the mvhd
// creation time. size bounds the scan.
func ReadMovieCreationTime(r io.ReadSeeker, size int64) (time.Time, error) {
	moovStart, moovSize, err := findBox(r, 0, size, "moov")
	if err != nil {
		return time.Time{}, err
	}
	mvhdStart, _, err := findBox(r, moovStart, moovStart+moovSize, "mvhd")
	if err != nil {
		return time.Time{}, err
	}
	if _, err := r.Seek(mvhdStart, io.SeekStart); err != nil {
		return time.Time{}, err
	}

	var versionFlags [4]byte
	if _, err := io.ReadFull(r, versionFlags[:]); err != nil {
		return time.Time{}, fmt.Errorf("read mvhd version: %w", err)
	}
	var seconds uint64
	switch versionFlags[0] {
	case 0:
		var v uint32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return time.Time{}, fmt.Errorf("read mvhd creation time: %w", err)
		}
		seconds = uint64(v)
	case 1:
		if err := binary.Read(r, binary.BigEndian, &seconds); err != nil {
			return time.Time{}, fmt.Errorf("read mvhd creation time: %w", err)
		}
	default:
		return time.Time{}, fmt.Errorf("unsupported mvhd version %d", versionFlags[0])
	}
	if seconds == 0 {
		return time.Time{}, errors.New("mvhd creation time unset")
	}
	return time.Unix(int64(seconds)-quickTimeEpochOffset, 0), nil
}

// findBox returns the payload offset and payload size of the first box of the
// given type within [start, end).
func findBox(r io.ReadSeeker, start, end int64, boxType string) (int64, int64, error) {
	offset := start
	var header [8]byte
	for offset+8 <= end {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return 0, 0, err
		}
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return 0, 0, fmt.Errorf("read box header: %w", err)
		}
		boxSize := int64(binary.BigEndian.Uint32(header[:4]))
		headerLen := int64(8)
		switch boxSize {
		case 0:
			boxSize = end - offset
		case 1:
			var large uint64
			if err := binary.Read(r, binary.BigEndian, &large); err != nil {
				return 0, 0, fmt.Errorf("read large box size: %w", err)
			}
			boxSize = int64(large)
			headerLen = 16
		}
		if boxSize < headerLen || offset+boxSize > end {
			return 0, 0, fmt.Errorf("malformed %q box at offset %d", string(header[4:]), offset)
		}
		if string(header[4:]) == boxType {
			return offset + headerLen, boxSize - headerLen, nil
		}
		offset += boxSize
	}
	return 0, 0, errNoMovieHeader
}
