package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Access selects the permissions CheckDirectoryAccess requires.
type Access uint32

const (
	AccessRead  Access = unix.R_OK | unix.X_OK
	AccessWrite Access = unix.W_OK | unix.X_OK
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessRead | AccessWrite:
		return "read/write"
	}
	return "access"
}

// Roots names the directories a run touches.
type Roots struct {
	Source   string
	Target   string
	StateDir string // empty for dry runs
}

// RunAll executes the checks that apply to roots. Target and state
// directories that do not exist yet are checked through their nearest
// existing ancestor, which must be writable.
func RunAll(roots Roots, dryRun bool) []Result {
	results := []Result{CheckDirectoryAccess("Source directory", roots.Source, AccessRead)}

	if sameDirectory(roots.Source, roots.Target) {
		results = append(results, Result{Name: "Target directory", Detail: fmt.Sprintf("%s (error: same as source)", roots.Target)})
		return results
	}

	targetAccess := AccessWrite
	if dryRun {
		targetAccess = AccessRead
	}
	results = append(results, checkCreatable("Target directory", roots.Target, targetAccess))

	if !dryRun && strings.TrimSpace(roots.StateDir) != "" {
		results = append(results, checkCreatable("State directory", roots.StateDir, AccessWrite))
	}
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}

// CheckDirectoryAccess verifies path is an existing directory with the requested access.
func CheckDirectoryAccess(name, path string, access Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, uint32(access)); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, access)}
}

func checkCreatable(name, path string, access Access) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path, access)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	result := CheckDirectoryAccess(name, ancestor, access)
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, ancestor)
	}
	return result
}

func sameDirectory(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}
