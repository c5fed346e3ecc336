package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediaorg/internal/organizer"
	"mediaorg/internal/services"
	"mediaorg/internal/testsupport"
)

func TestPlannerSameTimestampDifferentSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/a.jpg", 100, 'a')
	testsupport.WriteFile(t, fs, "/source/b.jpg", 200, 'b')
	dates := testsupport.StubDates{"a.jpg": scenarioTime, "b.jpg": scenarioTime}

	plans, err := newPlanner(fs, dates, nil, organizer.WalkOptions{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []triple{
		{"/source/a.jpg", "/target/2019/03/13/2019-03-13T111520.jpg", organizer.Move},
		{"/source/b.jpg", "/target/2019/03/13/2019-03-13T111520(1).jpg", organizer.RenameAndMove},
	}
	got := triples(plans)
	if len(got) != len(want) {
		t.Fatalf("plans = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("plan %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPlannerExistingCopyIsSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/c.jpg", 100, 'c')
	testsupport.WriteFile(t, fs, "/target/2019/03/13/2019-03-13T111520.jpg", 100, 'c')
	dates := testsupport.StubDates{"c.jpg": scenarioTime}

	plans, err := newPlanner(fs, dates, nil, organizer.WalkOptions{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(plans))
	}
	if plans[0].Disposition != organizer.SkipDuplicate {
		t.Fatalf("disposition = %s, want skip_duplicate", plans[0].Disposition)
	}
	if plans[0].TargetPath != "/target/2019/03/13/2019-03-13T111520.jpg" {
		t.Fatalf("target = %s", plans[0].TargetPath)
	}
}

func TestPlannerUndatedFileIsUnrecognized(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/nested/clip.bin", 10, 'x')

	plans, err := newPlanner(fs, testsupport.StubDates{}, nil, organizer.WalkOptions{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	plan := planFor(t, plans, "/source/nested/clip.bin")
	if plan.Disposition != organizer.Unrecognized {
		t.Fatalf("disposition = %s, want unrecognized", plan.Disposition)
	}
	if plan.TargetPath != "/target/unrecognized/clip.bin" {
		t.Fatalf("target = %s", plan.TargetPath)
	}
	if plan.File.Dated() {
		t.Fatal("undated file reported a creation time")
	}
}

type brokenFormatter struct{}

func (brokenFormatter) Dir(string, time.Time) (string, error) {
	return "", services.Wrap(services.ErrPatternFormat, "plan", "format dir", "broken", nil)
}

func (brokenFormatter) File(string, time.Time) (string, error) {
	return "name", nil
}

func TestPlannerPatternErrorRoutesToUnrecognized(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/a.jpg", 10, 'a')

	plans, err := newPlanner(fs, testsupport.StubDates{"a.jpg": scenarioTime}, brokenFormatter{}, organizer.WalkOptions{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	plan := planFor(t, plans, "/source/a.jpg")
	if plan.Disposition != organizer.Unrecognized || plan.TargetPath != "/target/unrecognized/a.jpg" {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Reason == "" {
		t.Fatal("expected the pattern error in the reason")
	}
}

func TestPlannerTotalityAndCollisionFreedom(t *testing.T) {
	fs := afero.NewMemMapFs()
	dates := testsupport.StubDates{}
	names := []string{"a.jpg", "b.jpg", "c.jpg", "d.mp4", "e.jpg"}
	for i, name := range names {
		testsupport.WriteFile(t, fs, filepath.Join("/source/batch", name), int64(10+i%2), byte('a'+i))
		dates[name] = scenarioTime
	}
	testsupport.WriteFile(t, fs, "/source/batch/plain.txt", 3, 'p')
	testsupport.WriteFile(t, fs, "/source/other/plain.txt", 4, 'q')
	testsupport.WriteFile(t, fs, "/target/2019/03/13/2019-03-13T111520.jpg", 99, 'z')

	plans, err := newPlanner(fs, dates, nil, organizer.WalkOptions{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plans) != 7 {
		t.Fatalf("plans = %d, want one per discovered file (7)", len(plans))
	}
	assertCollisionFree(t, plans)

	// unrecognized name collision gets a suffix instead of overwriting
	other := planFor(t, plans, "/source/other/plain.txt")
	if other.Disposition != organizer.Unrecognized || other.TargetPath != "/target/unrecognized/plain(1).txt" {
		t.Fatalf("second plain.txt plan = %+v", other)
	}
}

func TestPlannerSkipsHiddenAndNestedTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/a.jpg", 10, 'a')
	testsupport.WriteFile(t, fs, "/source/.thumbs/a.jpg", 10, 'a')
	testsupport.WriteFile(t, fs, "/source/.DS_Store", 10, 'a')
	testsupport.WriteFile(t, fs, "/source/skipme/b.jpg", 10, 'b')
	testsupport.WriteFile(t, fs, "/target/2019/03/13/old.jpg", 10, 'a')

	planner := newPlannerWithLayout(fs, organizer.Layout{
		SourceRoot:   "/",
		TargetRoot:   "/target",
		DirPattern:   "%Y/%m/%d",
		FilePattern:  "%Y-%m-%dT%H%M%S",
		Unrecognized: "unrecognized",
	}, nil, nil, organizer.WalkOptions{SkipHidden: true, Exclude: []string{"/source/skipme"}})

	plans, err := planner.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plans) != 1 || plans[0].File.SourcePath != "/source/a.jpg" {
		t.Fatalf("plans = %+v, want only /source/a.jpg", triples(plans))
	}
}

func TestPlannerUnreadableDirectoryKeepsPartialPlan(t *testing.T) {
	base := afero.NewMemMapFs()
	testsupport.WriteFile(t, base, "/source/a/ok.jpg", 10, 'a')
	testsupport.WriteFile(t, base, "/source/b/locked.jpg", 10, 'b')
	testsupport.WriteFile(t, base, "/source/c/ok.jpg", 11, 'c')
	fs := newFaultFs(base)
	fs.openErr["/source/b"] = os.ErrPermission

	plans, err := newPlanner(fs, testsupport.StubDates{}, nil, organizer.WalkOptions{}).Plan(context.Background())
	if err == nil {
		t.Fatal("expected directory access error")
	}
	if !errors.Is(err, services.ErrDirectoryAccess) {
		t.Fatalf("error %v does not wrap ErrDirectoryAccess", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %+v, want the two readable files", triples(plans))
	}
}

func TestPlannerStopsOnCancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteFile(t, fs, "/source/a.jpg", 10, 'a')
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPlanner(fs, testsupport.StubDates{}, nil, organizer.WalkOptions{}).Plan(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Plan error = %v, want context.Canceled", err)
	}
}
