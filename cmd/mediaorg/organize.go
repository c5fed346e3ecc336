package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/organizer"
	"mediaorg/internal/services"
)

// errRunFailed marks a run that finished but could not process every file.
// The report has already been printed when it is returned.
var errRunFailed = errors.New("run completed with errors")

type organizeOptions struct {
	dirPattern   string
	filePattern  string
	unrecognized string
	fingerprint  string
	dryRun       bool
	copyMode     bool
	pruneEmpty   bool
	jsonOutput   bool
}

func (o *organizeOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.dirPattern, "target-dir-pattern", "", "strftime pattern for destination directories (default from config, %Y/%m/%d)")
	flags.StringVar(&o.filePattern, "target-file-pattern", "", "strftime pattern for destination file names (default from config, %Y-%m-%dT%H%M%S)")
	flags.StringVar(&o.unrecognized, "unrecognized", "", "Folder under TARGET for files without a usable date")
	flags.StringVar(&o.fingerprint, "fingerprint", "", "Duplicate check: size or xxhash")
	flags.BoolVarP(&o.dryRun, "dry-run", "n", false, "Print the plan without touching any file")
	flags.BoolVar(&o.copyMode, "copy", false, "Copy files instead of moving them")
	flags.BoolVar(&o.pruneEmpty, "prune-empty", false, "Remove source directories left empty after moving")
	flags.BoolVar(&o.jsonOutput, "json", false, "Emit the run report as JSON")
}

// apply returns a copy of base with command-line overrides applied.
func (o *organizeOptions) apply(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Organize.Exclude = append([]string(nil), base.Organize.Exclude...)
	flags := cmd.Flags()
	if flags.Changed("target-dir-pattern") {
		cfg.Organize.TargetDirPattern = o.dirPattern
	}
	if flags.Changed("target-file-pattern") {
		cfg.Organize.TargetFilePattern = o.filePattern
	}
	if flags.Changed("unrecognized") {
		cfg.Organize.Unrecognized = strings.TrimSpace(o.unrecognized)
	}
	if flags.Changed("fingerprint") {
		cfg.Organize.Fingerprint = strings.ToLower(strings.TrimSpace(o.fingerprint))
	}
	if o.copyMode {
		cfg.Organize.Mode = config.ModeCopy
	}
	if flags.Changed("prune-empty") {
		cfg.Organize.PruneEmptyDirs = o.pruneEmpty
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "apply flags", "invalid option", err)
	}
	return &cfg, nil
}

func runOrganize(cmd *cobra.Command, state *cliState, opts *organizeOptions, source, target string) error {
	base, err := state.loadConfig()
	if err != nil {
		return err
	}
	cfg, err := opts.apply(cmd, base)
	if err != nil {
		return err
	}
	logger, err := state.logger(cmd, cfg)
	if err != nil {
		return err
	}

	progress := newProgressObserver(cmd.ErrOrStderr(), !opts.jsonOutput)
	org := organizer.NewOrganizerWithDependencies(cfg, logger, organizer.Dependencies{Observer: progress})
	result, err := org.Run(cmd.Context(), organizer.Request{Source: source, Target: target, DryRun: opts.dryRun})
	if result == nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(newRunOutput(result)); encErr != nil {
			return encErr
		}
	case result.DryRun:
		fmt.Fprint(out, renderDryRunReport(result, shouldColorize(out)))
	default:
		fmt.Fprint(out, renderRunSummary(result, shouldColorize(out)))
	}
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("%w: %d of %d files not processed", errRunFailed, failureCount(result), len(result.Plans))
	}
	return nil
}

func failureCount(result *organizer.Result) int {
	return len(result.Summary.Errors) + len(result.PlanErrors)
}

// runOutput is the --json document.
type runOutput struct {
	organizer.RunReport
	Skipped int        `json:"skipped"`
	Pruned  []string   `json:"pruned_directories,omitempty"`
	Errors  []runError `json:"errors,omitempty"`
}

type runError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newRunOutput(result *organizer.Result) runOutput {
	out := runOutput{
		RunReport: result.Summary.Report,
		Skipped:   result.Summary.Skipped,
		Pruned:    result.Pruned,
	}
	if out.Operations == nil {
		out.Operations = []organizer.ReportEntry{}
	}
	for _, err := range result.PlanErrors {
		out.Errors = append(out.Errors, runError{Kind: services.Kind(err), Message: err.Error()})
	}
	for _, err := range result.Summary.Errors {
		out.Errors = append(out.Errors, runError{Kind: services.Kind(err), Message: err.Error()})
	}
	return out
}
