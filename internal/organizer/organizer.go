package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"mediaorg/internal/config"
	"mediaorg/internal/fileutil"
	"mediaorg/internal/journal"
	"mediaorg/internal/logging"
	"mediaorg/internal/preflight"
	"mediaorg/internal/runlock"
	"mediaorg/internal/services"
	"mediaorg/internal/services/mediadate"
	"mediaorg/internal/services/pattern"
)

// Journal records run history.
type Journal interface {
	Recorder
	BeginRun(ctx context.Context, run journal.Run) error
	FinishRun(ctx context.Context, runID string, status journal.RunStatus, totals journal.Totals) error
}

// Dependencies allows injecting collaborators (used in tests). Zero values
// fall back to the host filesystem and configured defaults.
type Dependencies struct {
	Fs        afero.Fs
	Dates     mediadate.Extractor
	Formatter pattern.Formatter
	Observer  Observer
	Journal   Journal
}

// Request names the trees of a single run.
type Request struct {
	Source string
	Target string
	DryRun bool
}

// Result is the outcome of a run that got past validation.
type Result struct {
	RunID      string
	Source     string
	Target     string
	DryRun     bool
	Plans      []DestinationPlan
	Summary    Summary
	PlanErrors []error
	Pruned     []string
}

// Failed reports whether any file or directory could not be processed.
func (r *Result) Failed() bool {
	return r != nil && (len(r.PlanErrors) > 0 || r.Summary.Failed())
}

// Err joins every per-directory and per-file error of the run.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	errs := append([]error(nil), r.PlanErrors...)
	for _, fileErr := range r.Summary.Errors {
		errs = append(errs, fileErr)
	}
	return errors.Join(errs...)
}

// Organizer relocates media files from a source tree into a dated target tree.
type Organizer struct {
	cfg    *config.Config
	deps   Dependencies
	base   *slog.Logger
	logger *slog.Logger
}

// NewOrganizer constructs an organizer working on the host filesystem.
func NewOrganizer(cfg *config.Config, logger *slog.Logger) *Organizer {
	return NewOrganizerWithDependencies(cfg, logger, Dependencies{})
}

// NewOrganizerWithDependencies allows injecting collaborators.
func NewOrganizerWithDependencies(cfg *config.Config, logger *slog.Logger, deps Dependencies) *Organizer {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Dates == nil {
		deps.Dates = mediadate.New(deps.Fs, mediadate.Options{
			EXIF:      cfg.Dates.EXIF,
			QuickTime: cfg.Dates.QuickTime,
			Filename:  cfg.Dates.Filename,
			FileTime:  cfg.Dates.FileTime,
		})
	}
	if deps.Formatter == nil {
		deps.Formatter = pattern.Strftime{}
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{cfg: cfg, deps: deps, base: logger, logger: logging.NewComponentLogger(logger, "organizer")}
}

// Run plans and executes one organization pass. The returned error is
// reserved for conditions that prevent the run as a whole: invalid roots or
// patterns, lock contention, target root creation, journal access, and
// cancellation. Per-file and per-directory problems are reported through
// Result and never abort the run.
func (o *Organizer) Run(ctx context.Context, req Request) (*Result, error) {
	source, target, err := o.resolveRoots(req)
	if err != nil {
		return nil, err
	}
	if err := o.validateRoots(source, target, req.DryRun); err != nil {
		return nil, err
	}
	organize := o.cfg.Organize
	if err := pattern.ValidatePatterns(o.deps.Formatter, organize.TargetDirPattern, organize.TargetFilePattern); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "validate", "check patterns", "target patterns cannot produce a valid path", err)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("run started",
		logging.String("source", source),
		logging.String("target", target),
		logging.Bool("dry_run", req.DryRun),
		logging.String("mode", organize.Mode),
		logging.String("fingerprint", organize.Fingerprint),
	)
	started := time.Now()

	var recorder Journal
	if !req.DryRun {
		lock, err := runlock.Acquire(o.cfg.LockDir(), target)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "validate", "lock target", target, err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("release target lock failed", logging.Error(err))
			}
		}()

		if err := o.deps.Fs.MkdirAll(target, 0o755); err != nil {
			return nil, services.Wrap(services.ErrDirectoryAccess, "validate", "create target root", target, err)
		}

		recorder, err = o.openJournal()
		if err != nil {
			return nil, err
		}
		if store, ok := recorder.(*journal.Store); ok && o.deps.Journal == nil {
			defer store.Close()
		}
		if recorder != nil {
			run := journal.Run{
				ID:         runID,
				SourceRoot: source,
				TargetRoot: target,
				Mode:       organize.Mode,
				Status:     journal.RunRunning,
				StartedAt:  started,
			}
			if err := recorder.BeginRun(ctx, run); err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "validate", "begin journal run", runID, err)
			}
		}
	}

	result := &Result{RunID: runID, Source: source, Target: target, DryRun: req.DryRun}
	runErr := o.run(ctx, logger, source, target, req.DryRun, recorder, result)

	if recorder != nil {
		o.finishJournal(ctx, logger, recorder, result, runErr)
	}
	logger.Info("run finished",
		logging.Int("planned", len(result.Plans)),
		logging.Int("transferred", result.Summary.FilesMoved),
		logging.Bytes("bytes", result.Summary.BytesMoved),
		logging.Int("skipped", result.Summary.Skipped),
		logging.Int("errors", len(result.Summary.Errors)+len(result.PlanErrors)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, runErr
}

func (o *Organizer) run(ctx context.Context, logger *slog.Logger, source, target string, dryRun bool, recorder Journal, result *Result) error {
	organize := o.cfg.Organize
	fingerprints := NewFingerprinter(o.deps.Fs, organize.Fingerprint == config.FingerprintXXHash, o.base)
	resolver := NewConflictResolver(NewTargetIndex(o.deps.Fs, o.base), fingerprints, o.base)
	layout := Layout{
		SourceRoot:   source,
		TargetRoot:   target,
		DirPattern:   organize.TargetDirPattern,
		FilePattern:  organize.TargetFilePattern,
		Unrecognized: organize.Unrecognized,
	}
	walk := WalkOptions{SkipHidden: organize.SkipHidden, Exclude: o.excludes(source)}
	planner := NewPlanner(o.deps.Fs, layout, walk, o.deps.Dates, o.deps.Formatter, resolver, o.base)

	plans, planErr := planner.Plan(ctx)
	result.Plans = plans
	if err := ctx.Err(); err != nil {
		return err
	}
	result.PlanErrors = splitErrors(planErr)

	opts := ExecutorOptions{TargetRoot: target, Copy: o.cfg.CopyMode(), Observer: o.deps.Observer}
	if recorder != nil {
		opts.Recorder = recorder
	}
	summary, err := NewExecutor(o.deps.Fs, opts, o.base).Execute(ctx, plans, dryRun)
	result.Summary = summary
	if err != nil {
		return err
	}

	if !dryRun && organize.PruneEmptyDirs && !o.cfg.CopyMode() {
		skip := append([]string{target}, walk.Exclude...)
		pruned, err := fileutil.PruneEmptyDirs(o.deps.Fs, source, skip...)
		result.Pruned = pruned
		if err != nil {
			logging.WarnWithContext(logger, "prune empty source directories failed", "prune",
				logging.Error(err),
				logging.String(logging.FieldImpact, "empty directories remain in the source tree"),
			)
		}
	}
	return nil
}

func (o *Organizer) openJournal() (Journal, error) {
	if o.deps.Journal != nil {
		return o.deps.Journal, nil
	}
	if !o.cfg.Journal.Enabled {
		return nil, nil
	}
	store, err := journal.Open(o.cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "validate", "open journal", o.cfg.JournalPath(), err)
	}
	return store, nil
}

func (o *Organizer) finishJournal(ctx context.Context, logger *slog.Logger, recorder Journal, result *Result, runErr error) {
	status := journal.RunCompleted
	if runErr != nil || result.Failed() {
		status = journal.RunFailed
	}
	totals := journal.Totals{
		FilesMoved: result.Summary.FilesMoved,
		BytesMoved: result.Summary.BytesMoved,
		Skipped:    result.Summary.Skipped,
		Errors:     len(result.Summary.Errors) + len(result.PlanErrors),
	}
	if err := recorder.FinishRun(context.WithoutCancel(ctx), result.RunID, status, totals); err != nil {
		logging.WarnWithContext(logger, "journal finish failed", "journal",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run remains marked as running in history"),
		)
	}
}

func (o *Organizer) resolveRoots(req Request) (string, string, error) {
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Target) == "" {
		return "", "", services.Wrap(services.ErrValidation, "validate", "resolve roots", "source and target are required", nil)
	}
	source, err := filepath.Abs(req.Source)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, "validate", "resolve source", req.Source, err)
	}
	target, err := filepath.Abs(req.Target)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, "validate", "resolve target", req.Target, err)
	}
	return source, target, nil
}

// validateRoots runs the OS access checks on the host filesystem and an
// equivalent structural check through afero otherwise.
func (o *Organizer) validateRoots(source, target string, dryRun bool) error {
	if _, ok := o.deps.Fs.(*afero.OsFs); ok {
		roots := preflight.Roots{Source: source, Target: target}
		if !dryRun && o.cfg.Journal.Enabled && o.deps.Journal == nil {
			roots.StateDir = o.cfg.Paths.StateDir
		}
		if failed, ok := preflight.FirstFailure(preflight.RunAll(roots, dryRun)); ok {
			return services.Wrap(services.ErrValidation, "validate", "preflight", fmt.Sprintf("%s: %s", failed.Name, failed.Detail), nil)
		}
		return nil
	}

	info, err := o.deps.Fs.Stat(source)
	if err != nil {
		return services.Wrap(services.ErrValidation, "validate", "stat source", source, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "validate", "stat source", source+" is not a directory", nil)
	}
	if source == target {
		return services.Wrap(services.ErrValidation, "validate", "compare roots", "target is the same directory as source", nil)
	}
	for dir := target; ; dir = filepath.Dir(dir) {
		info, err := o.deps.Fs.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return services.Wrap(services.ErrValidation, "validate", "stat target", dir+" is not a directory", nil)
			}
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrValidation, "validate", "stat target", dir, err)
		}
		if filepath.Dir(dir) == dir {
			return nil
		}
	}
}

// excludes resolves configured source-relative exclusions to absolute paths.
// excludes resolves the configured exclude entries, which validation keeps
// relative, against the source root.
func (o *Organizer) excludes(source string) []string {
	var out []string
	for _, entry := range o.cfg.Organize.Exclude {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		out = append(out, filepath.Join(source, entry))
	}
	return out
}

func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
