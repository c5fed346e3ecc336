package pattern

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"mediaorg/internal/services"
)

// referenceTime is used to validate patterns before any file is visited.
var referenceTime = time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)

// Formatter renders directory and file patterns.
type Formatter interface {
	Dir(pattern string, ts time.Time) (string, error)
	File(pattern string, ts time.Time) (string, error)
}

// Strftime is the default Formatter backed by go-strftime.
type Strftime struct{}

// Dir renders a directory pattern into a relative, slash-separated path. Every
// component must be non-empty and must not escape the target root.
func (Strftime) Dir(pattern string, ts time.Time) (string, error) {
	rendered := strftime.Format(pattern, ts)
	if err := checkDir(rendered); err != nil {
		return "", services.Wrap(services.ErrPatternFormat, "plan", "format dir",
			fmt.Sprintf("pattern %q produced %q", pattern, rendered), err)
	}
	return filepath.FromSlash(rendered), nil
}

// File renders a file pattern into a single file stem.
func (Strftime) File(pattern string, ts time.Time) (string, error) {
	rendered := strftime.Format(pattern, ts)
	if err := checkFile(rendered); err != nil {
		return "", services.Wrap(services.ErrPatternFormat, "plan", "format file",
			fmt.Sprintf("pattern %q produced %q", pattern, rendered), err)
	}
	return rendered, nil
}

// ValidatePatterns renders both patterns once so a pattern that would fail for
// every file is rejected before traversal.
func ValidatePatterns(f Formatter, dirPattern, filePattern string) error {
	if f == nil {
		f = Strftime{}
	}
	if _, err := f.Dir(dirPattern, referenceTime); err != nil {
		return err
	}
	if _, err := f.File(filePattern, referenceTime); err != nil {
		return err
	}
	return nil
}

func checkDir(rendered string) error {
	if strings.TrimSpace(rendered) == "" {
		return fmt.Errorf("empty directory segment")
	}
	if strings.ContainsRune(rendered, 0) {
		return fmt.Errorf("directory segment contains NUL")
	}
	slashed := filepath.ToSlash(rendered)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(rendered) || filepath.VolumeName(rendered) != "" {
		return fmt.Errorf("directory segment must be relative")
	}
	for _, part := range strings.Split(slashed, "/") {
		switch strings.TrimSpace(part) {
		case "":
			return fmt.Errorf("directory segment has an empty component")
		case ".", "..":
			return fmt.Errorf("directory segment has a %q component", part)
		}
	}
	return nil
}

func checkFile(rendered string) error {
	switch strings.TrimSpace(rendered) {
	case "":
		return fmt.Errorf("empty file name")
	case ".", "..":
		return fmt.Errorf("file name %q is reserved", rendered)
	}
	if strings.ContainsRune(rendered, 0) {
		return fmt.Errorf("file name contains NUL")
	}
	if strings.ContainsAny(rendered, `/`+string(filepath.Separator)) {
		return fmt.Errorf("file name contains a path separator")
	}
	return nil
}
