package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"stackit.dev/uprebase/internal/git"
)

const progressBarWidth = 30

// FetchProgress renders transfer statistics while a fetch runs. On a terminal
// it redraws a single line with a progress bar; otherwise it prints one line
// per distinct update.
type FetchProgress struct {
	writer io.Writer
	tty    bool
	bar    progress.Model
	last   string
}

// NewFetchProgress creates a renderer writing to w
func NewFetchProgress(w io.Writer) *FetchProgress {
	return &FetchProgress{
		writer: w,
		tty:    isTerminal(w),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
	}
}

// Update renders one progress event. It is meant to be passed as a
// git.ProgressFunc; the final event of a transfer ends the progress line.
func (p *FetchProgress) Update(stats git.TransferStats) {
	if stats.Phase == git.PhaseDone {
		if stats.TotalObjects > 0 {
			p.Done(stats)
		}
		return
	}

	line := DescribeTransfer(stats)
	if line == "" || line == p.last {
		return
	}
	p.last = line

	if !p.tty {
		_, _ = fmt.Fprintln(p.writer, line)
		return
	}
	_, _ = fmt.Fprintf(p.writer, "\r\033[K%s %s", p.bar.ViewAs(transferPercent(stats)), line)
}

// Done prints the final counters and ends the progress line
func (p *FetchProgress) Done(stats git.TransferStats) {
	line := fmt.Sprintf("Received %d/%d objects in %s",
		stats.IndexedObjects, stats.TotalObjects, humanize.Bytes(stats.ReceivedBytes))
	if p.tty {
		_, _ = fmt.Fprintf(p.writer, "\r\033[K%s\n", ColorDim(line))
		return
	}
	_, _ = fmt.Fprintln(p.writer, line)
}

// DescribeTransfer formats transfer statistics as a single line. Until every
// object has arrived it reports object and byte counts; afterwards it reports
// delta resolution.
func DescribeTransfer(stats git.TransferStats) string {
	switch {
	case stats.ObjectsComplete():
		return fmt.Sprintf("Resolving deltas %d/%d", stats.IndexedDeltas, stats.TotalDeltas)
	case stats.TotalObjects > 0:
		return fmt.Sprintf("Received %d/%d objects (%d) in %s",
			stats.ReceivedObjects, stats.TotalObjects, stats.IndexedObjects, humanize.Bytes(stats.ReceivedBytes))
	default:
		return ""
	}
}

func transferPercent(stats git.TransferStats) float64 {
	if stats.ObjectsComplete() {
		if stats.TotalDeltas == 0 {
			return 1
		}
		return float64(stats.IndexedDeltas) / float64(stats.TotalDeltas)
	}
	if stats.TotalObjects == 0 {
		return 0
	}
	return float64(stats.ReceivedObjects) / float64(stats.TotalObjects)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
