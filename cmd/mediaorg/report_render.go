package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/list"

	"mediaorg/internal/organizer"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

func shouldColorize(w io.Writer) bool {
	return isTerminal(w)
}

func paint(colorize bool, color, s string) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func dispositionColor(d organizer.Disposition) string {
	switch d {
	case organizer.Move:
		return ansiGreen
	case organizer.RenameAndMove:
		return ansiYellow
	case organizer.Unrecognized:
		return ansiBlue
	case organizer.SkipDuplicate:
		return ansiDim
	}
	return ""
}

// renderDryRunReport draws the planned operations as a tree grouped by
// destination directory, followed by the totals a real run would transfer.
func renderDryRunReport(result *organizer.Result, colorize bool) string {
	report := result.Summary.Report
	var b strings.Builder
	fmt.Fprintf(&b, "Dry run %s: %d %s planned, nothing was changed\n",
		shortID(report.RunID), len(report.Operations), plural(len(report.Operations), "file", "files"))

	if groups := report.Directories(); len(groups) > 0 {
		lw := list.NewWriter()
		lw.SetStyle(list.StyleConnectedRounded)
		root := result.Target
		for _, group := range groups {
			label := relativeTo(root, group.Dir)
			if group.New {
				label += paint(colorize, ansiGreen, " (new)")
			}
			lw.AppendItem(label)
			lw.Indent()
			for _, entry := range group.Entries {
				lw.AppendItem(describeEntry(entry, colorize))
			}
			lw.UnIndent()
		}
		if root != "" {
			b.WriteString(root + "\n")
		}
		b.WriteString(lw.Render())
		b.WriteString("\n")
	}

	writePlanErrors(&b, result, colorize)
	fmt.Fprintf(&b, "Copied files: %d\n", report.CopiedFiles)
	fmt.Fprintf(&b, "Copied data size: %s (%d bytes)\n", humanize.IBytes(uint64(report.CopiedBytes)), report.CopiedBytes)
	return b.String()
}

// renderRunSummary prints the totals table of a real run and any failures.
func renderRunSummary(result *organizer.Result, colorize bool) string {
	summary := result.Summary
	unrecognized := 0
	for _, entry := range summary.Report.Operations {
		if entry.Disposition == organizer.Unrecognized && entry.Error == "" {
			unrecognized++
		}
	}

	rows := [][]string{
		{"Transferred files", fmt.Sprintf("%d", summary.FilesMoved)},
		{"Transferred data", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(summary.BytesMoved)), summary.BytesMoved)},
		{"Skipped duplicates", fmt.Sprintf("%d", summary.Skipped)},
		{"Unrecognized", fmt.Sprintf("%d", unrecognized)},
		{"New directories", fmt.Sprintf("%d", len(summary.Report.NewDirectories))},
		{"Errors", fmt.Sprintf("%d", failureCount(result))},
	}
	if len(result.Pruned) > 0 {
		rows = append(rows, []string{"Pruned source directories", fmt.Sprintf("%d", len(result.Pruned))})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", shortID(result.RunID))
	b.WriteString(renderTable([]string{"Result", "Count"}, rows, 2))
	b.WriteString("\n")

	writePlanErrors(&b, result, colorize)
	if failures := summary.Report.Failures(); len(failures) > 0 {
		b.WriteString(paint(colorize, ansiRed, "Files not organized:") + "\n")
		for _, entry := range failures {
			fmt.Fprintf(&b, "  %s: %s\n", entry.Source, entry.Error)
		}
	}
	return b.String()
}

func writePlanErrors(b *strings.Builder, result *organizer.Result, colorize bool) {
	if len(result.PlanErrors) == 0 {
		return
	}
	b.WriteString(paint(colorize, ansiRed, "Directories not scanned:") + "\n")
	for _, err := range result.PlanErrors {
		fmt.Fprintf(b, "  %v\n", err)
	}
}

func describeEntry(entry organizer.ReportEntry, colorize bool) string {
	tag := paint(colorize, dispositionColor(entry.Disposition), "["+entry.Disposition.String()+"]")
	line := fmt.Sprintf("%s %s <- %s (%s)", filepath.Base(entry.Target), tag, entry.Source, humanize.IBytes(uint64(entry.Size)))
	if entry.Error != "" {
		line += " " + paint(colorize, ansiRed, entry.Error)
	}
	return line
}

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return path
	}
	return rel
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
