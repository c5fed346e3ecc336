package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaorg/internal/services"
)

func TestDryRunPrintsPlanAndChangesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	before := listTree(t, env.source)

	out, _, err := runCLI(t, env, env.source, env.target, "--dry-run")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "Dry run")
	requireContains(t, out, filepath.Join("2019", "03", "13")+" (new)")
	requireContains(t, out, "2019-03-13T111520.jpg [move]")
	requireContains(t, out, "2019-03-13T111520(1).jpg [rename_and_move]")
	requireContains(t, out, "notes.txt [unrecognized]")
	requireContains(t, out, "Copied files: 3")
	requireContains(t, out, "Copied data size: 360 B (360 bytes)")

	if after := listTree(t, env.source); strings.Join(after, ",") != strings.Join(before, ",") {
		t.Fatalf("source changed: %v -> %v", before, after)
	}
	if _, err := os.Stat(env.target); !os.IsNotExist(err) {
		t.Fatalf("dry run created the target: %v", err)
	}
	if _, err := os.Stat(env.stateDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created the state directory: %v", err)
	}
}

func TestRealRunMovesFilesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, env.source, env.target)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Transferred files")

	want := []string{
		"2019/03/13/2019-03-13T111520(1).jpg",
		"2019/03/13/2019-03-13T111520.jpg",
		"unrecognized/notes.txt",
	}
	if got := listTree(t, env.target); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("target = %v, want %v", got, want)
	}
	if got := listTree(t, env.source); len(got) != 0 {
		t.Fatalf("source still holds %v", got)
	}

	out, _, err = runCLI(t, env, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, env.source)

	runID := firstHistoryID(t, out)
	out, _, err = runCLI(t, env, "history", "show", runID)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "rename_and_move")
	requireContains(t, out, "unrecognized")

	out, _, err = runCLI(t, env, "history", "show", runID, "--disposition", "unrecognized")
	if err != nil {
		t.Fatalf("history show --disposition: %v", err)
	}
	requireContains(t, out, "notes.txt")
	if strings.Contains(out, "rename_and_move") || strings.Contains(out, "IMG_20190313_111520.jpg") {
		t.Fatalf("filtered listing kept other operations:\n%s", out)
	}
}

func TestSecondRunSkipsOrganizedCopies(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, env.source, env.target, "--copy"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, _, err := runCLI(t, env, env.source, env.target, "--copy", "--json")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	var doc struct {
		RunID       string `json:"run_id"`
		DryRun      bool   `json:"dry_run"`
		CopiedFiles int    `json:"copied_files"`
		Skipped     int    `json:"skipped"`
		Operations  []struct {
			Source      string `json:"source"`
			Disposition string `json:"disposition"`
		} `json:"operations"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if doc.RunID == "" || doc.DryRun {
		t.Fatalf("unexpected header %+v", doc)
	}
	if doc.CopiedFiles != 0 || doc.Skipped != 3 || len(doc.Operations) != 3 {
		t.Fatalf("second run = %+v", doc)
	}
	for _, op := range doc.Operations {
		if op.Disposition != "skip_duplicate" {
			t.Fatalf("%s planned as %s", op.Source, op.Disposition)
		}
	}
}

func TestInvalidInputsFail(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, filepath.Join(env.baseDir, "missing"), env.target)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing source error = %v", err)
	}

	_, _, err = runCLI(t, env, env.source, env.target, "--fingerprint", "md5")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("bad fingerprint error = %v", err)
	}

	_, _, err = runCLI(t, env, env.source, env.target, "--target-dir-pattern", "%Y/../x")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("bad pattern error = %v", err)
	}

	if _, _, err := runCLI(t, env, env.source); err == nil {
		t.Fatal("expected an error for a missing TARGET argument")
	}
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "history", "show", "does-not-exist")
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Fatalf("history show error = %v", err)
	}
}

func firstHistoryID(t *testing.T, table string) string {
	t.Helper()
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(strings.Trim(line, "│ "))
		if len(fields) > 0 && len(fields[0]) == 8 && fields[0] != "Run" {
			return fields[0]
		}
	}
	t.Fatalf("no run id in %q", table)
	return ""
}
