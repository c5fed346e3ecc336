package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"mediaorg/internal/fileutil"
	"mediaorg/internal/journal"
	"mediaorg/internal/logging"
	"mediaorg/internal/services"
)

// Recorder persists executed operations.
type Recorder interface {
	RecordOperation(ctx context.Context, op journal.Operation) error
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	TargetRoot string
	Copy       bool // keep sources
	Observer   Observer
	Recorder   Recorder // nil disables journaling
}

// Summary aggregates an execution.
type Summary struct {
	FilesMoved int
	BytesMoved int64
	Skipped    int
	Errors     []*FileError
	Report     RunReport
}

// Failed reports whether any file could not be relocated.
func (s Summary) Failed() bool {
	return len(s.Errors) > 0
}

// Executor applies plans, or only records them in dry-run mode.
type Executor struct {
	fs     afero.Fs
	opts   ExecutorOptions
	logger *slog.Logger
}

// NewExecutor constructs an executor writing through fs.
func NewExecutor(fs afero.Fs, opts ExecutorOptions, logger *slog.Logger) *Executor {
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Executor{fs: fs, opts: opts, logger: logging.NewComponentLogger(logger, "executor")}
}

// Execute processes every plan in order. Per-file failures are collected in
// the summary and never stop the loop; only cancellation does, in which case
// the partial summary is returned with ctx.Err(). A dry run reads the target
// through a read-only view and mutates nothing.
func (e *Executor) Execute(ctx context.Context, plans []DestinationPlan, dryRun bool) (Summary, error) {
	ctx = services.WithPhase(ctx, "execute")
	logger := logging.WithContext(ctx, e.logger)
	runID, _ := services.RunIDFromContext(ctx)

	fs := e.fs
	if dryRun {
		fs = afero.NewReadOnlyFs(e.fs)
	}

	summary := Summary{Report: RunReport{RunID: runID, DryRun: dryRun, Operations: make([]ReportEntry, 0, len(plans))}}
	pendingFiles, pendingBytes := transferTotals(plans)
	e.opts.Observer.ExecutionStarted(pendingFiles, pendingBytes, dryRun)
	defer e.opts.Observer.ExecutionFinished()

	sampler := logging.NewProgressSampler(10)
	known := make(map[string]struct{})
	for i, plan := range plans {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		entry := ReportEntry{
			Source:      plan.File.SourcePath,
			Target:      plan.TargetPath,
			Disposition: plan.Disposition,
			Size:        plan.File.Size,
			Reason:      plan.Reason,
		}

		var err error
		status := journal.OpSkipped
		if plan.Disposition.Transfers() {
			newDirs := e.missingDirs(fs, filepath.Dir(plan.TargetPath), known)
			if !dryRun {
				err = e.transfer(fs, plan)
			}
			if err != nil {
				status = journal.OpFailed
				fileErr := &FileError{
					SourcePath: plan.File.SourcePath,
					TargetPath: plan.TargetPath,
					Err:        services.Wrap(services.ErrMove, "execute", e.verb(), plan.File.SourcePath, err),
				}
				summary.Errors = append(summary.Errors, fileErr)
				entry.Error = err.Error()
				logging.ErrorWithContext(logger, "file could not be relocated", "move_failed",
					logging.String("source", plan.File.SourcePath),
					logging.String("target", plan.TargetPath),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions and free space on the target"),
				)
			} else {
				status = journal.OpDone
				summary.FilesMoved++
				summary.BytesMoved += plan.File.Size
				for _, dir := range newDirs {
					known[dir] = struct{}{}
					summary.Report.NewDirectories = append(summary.Report.NewDirectories, dir)
				}
			}
		} else {
			summary.Skipped++
		}

		summary.Report.Operations = append(summary.Report.Operations, entry)
		if !dryRun {
			e.record(ctx, logger, i, plan, status, entry.Error)
		}
		e.opts.Observer.FileDone(plan, err)
		if sampler.ShouldLog(i+1, len(plans)) {
			logger.Info("execution progress",
				logging.Int("done", i+1),
				logging.Int("total", len(plans)),
				logging.Bytes("transferred", summary.BytesMoved),
			)
		}
	}

	summary.Report.CopiedFiles = summary.FilesMoved
	summary.Report.CopiedBytes = summary.BytesMoved
	return summary, nil
}

func (e *Executor) transfer(fs afero.Fs, plan DestinationPlan) error {
	if err := fs.MkdirAll(filepath.Dir(plan.TargetPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if e.opts.Copy {
		return fileutil.CopyFileVerified(fs, plan.File.SourcePath, plan.TargetPath)
	}
	method, err := fileutil.Move(fs, plan.File.SourcePath, plan.TargetPath)
	if err == nil && method == fileutil.MovedByCopy {
		e.logger.Debug("moved across filesystems", logging.String("source", plan.File.SourcePath), logging.String("method", method.String()))
	}
	return err
}

// missingDirs lists the directories between the target root and dir that
// neither exist nor were already reported, outermost first.
func (e *Executor) missingDirs(fs afero.Fs, dir string, known map[string]struct{}) []string {
	root := filepath.Clean(e.opts.TargetRoot)
	var missing []string
	for current := filepath.Clean(dir); current != root; {
		if _, ok := known[current]; ok {
			break
		}
		if _, err := fs.Stat(current); err == nil || !errors.Is(err, os.ErrNotExist) {
			break
		}
		missing = append(missing, current)
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
		missing[i], missing[j] = missing[j], missing[i]
	}
	return missing
}

func (e *Executor) record(ctx context.Context, logger *slog.Logger, seq int, plan DestinationPlan, status journal.OpStatus, errMessage string) {
	if e.opts.Recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	op := journal.Operation{
		RunID:       runID,
		Seq:         seq + 1,
		SourcePath:  plan.File.SourcePath,
		TargetPath:  plan.TargetPath,
		Disposition: plan.Disposition.String(),
		Status:      status,
		SizeBytes:   plan.File.Size,
		Error:       errMessage,
	}
	if err := e.opts.Recorder.RecordOperation(ctx, op); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal",
			logging.String("source", plan.File.SourcePath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is incomplete"),
		)
	}
}

func (e *Executor) verb() string {
	if e.opts.Copy {
		return "copy"
	}
	return "move"
}

func transferTotals(plans []DestinationPlan) (int, int64) {
	var files int
	var bytes int64
	for _, plan := range plans {
		if plan.Disposition.Transfers() {
			files++
			bytes += plan.File.Size
		}
	}
	return files, bytes
}
