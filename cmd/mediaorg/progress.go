package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"mediaorg/internal/organizer"
)

// progressObserver draws a byte-based progress bar while files are
// transferred. It stays silent for dry runs and non-terminal writers.
type progressObserver struct {
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

func newProgressObserver(w io.Writer, enabled bool) *progressObserver {
	return &progressObserver{w: w, enabled: enabled && isTerminal(w)}
}

func (p *progressObserver) ExecutionStarted(files int, bytes int64, dryRun bool) {
	if !p.enabled || dryRun || files == 0 {
		return
	}
	p.bar = progressbar.NewOptions64(bytes,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("organizing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *progressObserver) FileDone(plan organizer.DestinationPlan, _ error) {
	if p.bar == nil || !plan.Disposition.Transfers() {
		return
	}
	_ = p.bar.Add64(plan.File.Size)
}

func (p *progressObserver) ExecutionFinished() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
