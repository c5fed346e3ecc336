package organizer_test

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediaorg/internal/logging"
	"mediaorg/internal/organizer"
	"mediaorg/internal/services/pattern"
	"mediaorg/internal/testsupport"
)

const (
	sourceRoot = "/source"
	targetRoot = "/target"
)

var scenarioTime = time.Date(2019, time.March, 13, 11, 15, 20, 0, time.UTC)

// faultFs fails selected operations on an otherwise working filesystem.
type faultFs struct {
	afero.Fs
	openErr   map[string]error
	renameErr map[string]error // keyed by source path
}

func newFaultFs(base afero.Fs) *faultFs {
	return &faultFs{Fs: base, openErr: map[string]error{}, renameErr: map[string]error{}}
}

func (f *faultFs) Open(name string) (afero.File, error) {
	if err, ok := f.openErr[name]; ok {
		return nil, err
	}
	return f.Fs.Open(name)
}

func (f *faultFs) Rename(oldname, newname string) error {
	if err, ok := f.renameErr[oldname]; ok {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return f.Fs.Rename(oldname, newname)
}

func newPlanner(fs afero.Fs, dates testsupport.StubDates, formatter pattern.Formatter, walk organizer.WalkOptions) *organizer.Planner {
	layout := organizer.Layout{
		SourceRoot:   sourceRoot,
		TargetRoot:   targetRoot,
		DirPattern:   "%Y/%m/%d",
		FilePattern:  "%Y-%m-%dT%H%M%S",
		Unrecognized: "unrecognized",
	}
	return newPlannerWithLayout(fs, layout, dates, formatter, walk)
}

func newPlannerWithLayout(fs afero.Fs, layout organizer.Layout, dates testsupport.StubDates, formatter pattern.Formatter, walk organizer.WalkOptions) *organizer.Planner {
	logger := logging.NewNop()
	fp := organizer.NewFingerprinter(fs, false, logger)
	resolver := organizer.NewConflictResolver(organizer.NewTargetIndex(fs, logger), fp, logger)
	if formatter == nil {
		formatter = pattern.Strftime{}
	}
	if dates == nil {
		dates = testsupport.StubDates{}
	}
	return organizer.NewPlanner(fs, layout, walk, dates, formatter, resolver, logger)
}

type triple struct {
	source      string
	target      string
	disposition organizer.Disposition
}

func triples(plans []organizer.DestinationPlan) []triple {
	out := make([]triple, 0, len(plans))
	for _, plan := range plans {
		out = append(out, triple{plan.File.SourcePath, plan.TargetPath, plan.Disposition})
	}
	return out
}

func planFor(t *testing.T, plans []organizer.DestinationPlan, source string) organizer.DestinationPlan {
	t.Helper()
	for _, plan := range plans {
		if plan.File.SourcePath == source {
			return plan
		}
	}
	t.Fatalf("no plan for %s", source)
	return organizer.DestinationPlan{}
}

func assertCollisionFree(t *testing.T, plans []organizer.DestinationPlan) {
	t.Helper()
	seen := make(map[string]string)
	for _, plan := range plans {
		if !plan.Disposition.Transfers() {
			continue
		}
		if other, ok := seen[plan.TargetPath]; ok {
			t.Fatalf("%s and %s both planned to %s", other, plan.File.SourcePath, plan.TargetPath)
		}
		seen[plan.TargetPath] = plan.File.SourcePath
	}
}

// snapshot records every path and size on fs for before/after comparisons.
func snapshot(t *testing.T, fs afero.Fs) string {
	t.Helper()
	var lines []string
	err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		kind := "f"
		if info.IsDir() {
			kind = "d"
		}
		lines = append(lines, fmt.Sprintf("%s %s %d", kind, path, info.Size()))
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}
