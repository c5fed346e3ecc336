package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mediaorg/internal/journal"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(state *cliState) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded organizer runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(state, func(store *journal.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list (0 for all)")

	historyCmd.AddCommand(newHistoryShowCommand(state))
	return historyCmd
}

func newHistoryShowCommand(state *cliState) *cobra.Command {
	var disposition string

	showCmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the operations of one run (a unique ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(state, func(store *journal.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, journal.ErrRunNotFound) || errors.Is(err, journal.ErrAmbiguousRun) {
						return fmt.Errorf("history show: %w", err)
					}
					return err
				}
				ops, err := store.Operations(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if disposition != "" {
					ops = filterOperations(ops, disposition)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRunDetail(run, ops))
				return nil
			})
		},
	}
	showCmd.Flags().StringVarP(&disposition, "disposition", "d", "", "Only list operations with this disposition (e.g. unrecognized)")
	return showCmd
}

func filterOperations(ops []journal.Operation, disposition string) []journal.Operation {
	kept := ops[:0:0]
	for _, op := range ops {
		if op.Disposition == disposition {
			kept = append(kept, op)
		}
	}
	return kept
}

func withJournal(state *cliState, fn func(*journal.Store) error) error {
	cfg, err := state.loadConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func renderRunTable(runs []journal.Run) string {
	printer := message.NewPrinter(language.English)
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatTime(run.StartedAt),
			string(run.Status),
			run.Mode,
			printer.Sprintf("%d", run.Totals.FilesMoved),
			humanize.IBytes(uint64(run.Totals.BytesMoved)),
			printer.Sprintf("%d", run.Totals.Skipped),
			printer.Sprintf("%d", run.Totals.Errors),
			run.SourceRoot + " -> " + run.TargetRoot,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Status", "Mode", "Files", "Data", "Skipped", "Errors", "Source -> Target"},
		rows,
		5, 6, 7, 8,
	)
}

func renderRunDetail(run journal.Run, ops []journal.Operation) string {
	printer := message.NewPrinter(language.English)
	header := printer.Sprintf("Run %s (%s, %s)\nSource: %s\nTarget: %s\nStarted: %s\nFinished: %s\nFiles: %d, data: %s, skipped: %d, errors: %d\n",
		run.ID, run.Status, run.Mode,
		run.SourceRoot, run.TargetRoot,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Totals.FilesMoved, humanize.IBytes(uint64(run.Totals.BytesMoved)), run.Totals.Skipped, run.Totals.Errors,
	)
	if len(ops) == 0 {
		return header + "No operations recorded\n"
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		detail := op.TargetPath
		if op.Error != "" {
			detail += " (" + op.Error + ")"
		}
		rows = append(rows, []string{
			printer.Sprintf("%d", op.Seq),
			string(op.Status),
			op.Disposition,
			op.SourcePath,
			detail,
			humanize.IBytes(uint64(op.SizeBytes)),
		})
	}
	return header + renderTable(
		[]string{"#", "Status", "Disposition", "Source", "Target", "Size"},
		rows,
		1, 6,
	) + "\n"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}
