package organizer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediaorg/internal/logging"
	"mediaorg/internal/services"
	"mediaorg/internal/services/mediadate"
	"mediaorg/internal/services/pattern"
)

// Layout describes where a run reads from and how it names destinations.
type Layout struct {
	SourceRoot   string
	TargetRoot   string
	DirPattern   string
	FilePattern  string
	Unrecognized string
}

// WalkOptions filters source traversal.
type WalkOptions struct {
	SkipHidden bool
	Exclude    []string // absolute directories not descended
}

// Planner walks the source tree and produces one DestinationPlan per regular file.
type Planner struct {
	fs        afero.Fs
	layout    Layout
	walk      WalkOptions
	dates     mediadate.Extractor
	formatter pattern.Formatter
	resolver  *ConflictResolver
	logger    *slog.Logger
}

// NewPlanner constructs a planner. The resolver carries the run's TargetIndex.
func NewPlanner(fs afero.Fs, layout Layout, walk WalkOptions, dates mediadate.Extractor, formatter pattern.Formatter, resolver *ConflictResolver, logger *slog.Logger) *Planner {
	return &Planner{
		fs:        fs,
		layout:    layout,
		walk:      walk,
		dates:     dates,
		formatter: formatter,
		resolver:  resolver,
		logger:    logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan returns plans in discovery order. Directories that cannot be listed
// are skipped and reported through the returned error (each wrapping
// services.ErrDirectoryAccess) alongside the partial plan. Cancellation stops
// the walk between files and is included in the returned error.
func (p *Planner) Plan(ctx context.Context) ([]DestinationPlan, error) {
	ctx = services.WithPhase(ctx, "plan")
	logger := logging.WithContext(ctx, p.logger)

	var plans []DestinationPlan
	var errs []error
	err := p.walkDir(ctx, p.layout.SourceRoot, &errs, func(path string, info os.FileInfo) {
		file := p.discover(logger, path, info)
		plan := p.plan(logger, file)
		attrs := append([]logging.Attr{
			logging.String("source", plan.File.SourcePath),
			logging.String("target", plan.TargetPath),
		}, logging.DecisionAttrs("disposition", plan.Disposition.String(), plan.Reason)...)
		logger.Debug("file planned", logging.Args(attrs...)...)
		plans = append(plans, plan)
	})
	if err != nil {
		errs = append(errs, err)
	}

	logger.Info("planning finished",
		logging.Int("files", len(plans)),
		logging.Int("unreadable_dirs", countDirErrors(errs)),
	)
	return plans, errors.Join(errs...)
}

func (p *Planner) discover(logger *slog.Logger, path string, info os.FileInfo) MediaFile {
	file := MediaFile{
		SourcePath: path,
		Size:       info.Size(),
		ModTime:    info.ModTime(),
	}
	ts, source, err := p.dates.CreationTime(path)
	if err != nil {
		logger.Debug("creation time unavailable", logging.String("source", path), logging.Error(err))
		return file
	}
	file.CreationTime = ts
	file.DateSource = source
	return file
}

func (p *Planner) plan(logger *slog.Logger, file MediaFile) DestinationPlan {
	if file.Dated() {
		target, err := p.datedTarget(file)
		if err == nil {
			return p.resolver.Resolve(file, target, false)
		}
		logging.WarnWithContext(logger, "pattern produced an invalid path; routing to unrecognized", "pattern_format",
			logging.String("source", file.SourcePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check target_dir_pattern and target_file_pattern"),
			logging.String(logging.FieldImpact, "file is placed in the unrecognized folder"),
		)
		plan := p.resolver.Resolve(file, p.unrecognizedTarget(file), true)
		if plan.Disposition == Unrecognized {
			plan.Reason = "pattern error: " + err.Error()
		}
		return plan
	}
	plan := p.resolver.Resolve(file, p.unrecognizedTarget(file), true)
	if plan.Disposition == Unrecognized {
		plan.Reason = "no creation time"
	}
	return plan
}

func (p *Planner) datedTarget(file MediaFile) (string, error) {
	dir, err := p.formatter.Dir(p.layout.DirPattern, file.CreationTime)
	if err != nil {
		return "", err
	}
	stem, err := p.formatter.File(p.layout.FilePattern, file.CreationTime)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.layout.TargetRoot, dir, stem+filepath.Ext(file.SourcePath)), nil
}

func (p *Planner) unrecognizedTarget(file MediaFile) string {
	return filepath.Join(p.layout.TargetRoot, p.layout.Unrecognized, filepath.Base(file.SourcePath))
}

func countDirErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if errors.Is(err, services.ErrDirectoryAccess) {
			n++
		}
	}
	return n
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
