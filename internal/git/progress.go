package git

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// TransferPhase names the stage a fetch is in
type TransferPhase string

const (
	PhaseCounting    TransferPhase = "counting"
	PhaseCompressing TransferPhase = "compressing"
	PhaseReceiving   TransferPhase = "receiving"
	PhaseResolving   TransferPhase = "resolving"
	PhaseDone        TransferPhase = "done"
)

// TransferStats holds the counters of a single fetch
type TransferStats struct {
	Phase           TransferPhase
	ReceivedObjects int
	TotalObjects    int
	IndexedObjects  int
	IndexedDeltas   int
	TotalDeltas     int
	ReceivedBytes   uint64
}

// ObjectsComplete reports whether every object has arrived, at which point
// only delta resolution is left.
func (s TransferStats) ObjectsComplete() bool {
	return s.TotalObjects > 0 && s.ReceivedObjects >= s.TotalObjects
}

// ProgressFunc receives a copy of the transfer counters on every update.
// It runs on the fetching goroutine and must return quickly.
type ProgressFunc func(TransferStats)

var (
	percentLine = regexp.MustCompile(`^([A-Za-z ]+):\s+\d+% \((\d+)/(\d+)\)(?:,\s*([\d.]+ [KMGTP]?i?B))?`)
	totalLine   = regexp.MustCompile(`^Total (\d+) \(delta (\d+)\)`)
	countLine   = regexp.MustCompile(`^Enumerating objects: (\d+)`)
)

// progressWriter turns the remote's sideband progress text into TransferStats.
// Anything it cannot parse is ignored; it never fails the transfer.
type progressWriter struct {
	stats  TransferStats
	buf    []byte
	report ProgressFunc
}

func newProgressWriter(report ProgressFunc) *progressWriter {
	return &progressWriter{report: report}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
		if line != "" && w.parse(line) {
			w.emit()
		}
	}
	return len(p), nil
}

func (w *progressWriter) parse(line string) bool {
	line = strings.TrimPrefix(line, "remote: ")

	if m := countLine.FindStringSubmatch(line); m != nil {
		w.stats.Phase = PhaseCounting
		w.stats.TotalObjects = atoi(m[1])
		return true
	}

	if m := totalLine.FindStringSubmatch(line); m != nil {
		w.stats.TotalObjects = atoi(m[1])
		w.stats.TotalDeltas = atoi(m[2])
		return true
	}

	m := percentLine.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	current, total := atoi(m[2]), atoi(m[3])
	switch strings.TrimSpace(m[1]) {
	case "Counting objects":
		w.stats.Phase = PhaseCounting
		w.stats.TotalObjects = total
	case "Compressing objects":
		w.stats.Phase = PhaseCompressing
	case "Receiving objects":
		w.stats.Phase = PhaseReceiving
		w.stats.ReceivedObjects = current
		w.stats.TotalObjects = total
		if m[4] != "" {
			if n, err := humanize.ParseBytes(m[4]); err == nil {
				w.stats.ReceivedBytes = n
			}
		}
	case "Indexing objects":
		w.stats.IndexedObjects = current
	case "Resolving deltas":
		w.stats.Phase = PhaseResolving
		w.stats.IndexedDeltas = current
		w.stats.TotalDeltas = total
	default:
		return false
	}
	return true
}

// complete marks every counted object as received and indexed once the
// transfer has finished and reports the final state.
func (w *progressWriter) complete() TransferStats {
	w.stats.Phase = PhaseDone
	if w.stats.ReceivedObjects < w.stats.TotalObjects {
		w.stats.ReceivedObjects = w.stats.TotalObjects
	}
	if w.stats.IndexedObjects < w.stats.ReceivedObjects {
		w.stats.IndexedObjects = w.stats.ReceivedObjects
	}
	if w.stats.IndexedDeltas < w.stats.TotalDeltas {
		w.stats.IndexedDeltas = w.stats.TotalDeltas
	}
	w.emit()
	return w.stats
}

func (w *progressWriter) emit() {
	if w.report == nil {
		return
	}
	// Reporter panics are swallowed.
	defer func() { _ = recover() }()
	w.report(w.stats)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
