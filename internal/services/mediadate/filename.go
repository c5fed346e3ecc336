package mediadate

import (
	"regexp"
	"time"
)

// filenamePatterns are tried in order; first match wins.
// The layout string uses Go's reference time: Mon Jan 2 15:04:05 MST 2006
var filenamePatterns = []struct {
	regex  *regexp.Regexp
	layout string
}{
	// DJI drone: DJI_20250619224111_0001_D.MP4
	{regexp.MustCompile(`DJI_(\d{14})`), "20060102150405"},

	// Android/generic: IMG_20250619_123456.jpg, VID_20250619_123456.mp4
	{regexp.MustCompile(`(?:^|[^\d])(\d{8}_\d{6})(?:[^\d]|$)`), "20060102_150405"},

	// Screenshots and exports: 2025-06-19 12.34.56.png
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[ _]\d{2}\.\d{2}\.\d{2})`), "2006-01-02 15.04.05"},

	// ISO date: 2025-06-19_photo.jpg
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},
}

// FromFilename parses a timestamp embedded in a camera-style filename.
func FromFilename(name string) (time.Time, bool) {
	for _, p := range filenamePatterns {
		matches := p.regex.FindStringSubmatch(name)
		if len(matches) < 2 {
			continue
		}
		value := matches[1]
		if p.layout == "2006-01-02 15.04.05" && len(value) > 10 {
			value = value[:10] + " " + value[11:]
		}
		if t, err := time.ParseInLocation(p.layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
