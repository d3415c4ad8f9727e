package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stackit.dev/uprebase/internal/git"
)

func TestDescribeTransfer(t *testing.T) {
	tests := []struct {
		name  string
		stats git.TransferStats
		want  string
	}{
		{
			name:  "nothing known yet",
			stats: git.TransferStats{},
			want:  "",
		},
		{
			name:  "objects still arriving",
			stats: git.TransferStats{ReceivedObjects: 3, TotalObjects: 10, IndexedObjects: 2, ReceivedBytes: 2048},
			want:  "Received 3/10 objects (2) in 2.0 kB",
		},
		{
			name:  "resolving deltas once objects are in",
			stats: git.TransferStats{ReceivedObjects: 10, TotalObjects: 10, IndexedDeltas: 1, TotalDeltas: 4},
			want:  "Resolving deltas 1/4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DescribeTransfer(tt.stats))
		})
	}
}

func TestFetchProgress(t *testing.T) {
	t.Run("prints one line per distinct update when not a terminal", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewFetchProgress(&buf)

		p.Update(git.TransferStats{ReceivedObjects: 1, TotalObjects: 2})
		p.Update(git.TransferStats{ReceivedObjects: 1, TotalObjects: 2})
		p.Update(git.TransferStats{ReceivedObjects: 2, TotalObjects: 2, TotalDeltas: 1})
		p.Done(git.TransferStats{IndexedObjects: 2, TotalObjects: 2})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Equal(t, []string{
			"Received 1/2 objects (0) in 0 B",
			"Resolving deltas 0/1",
			"Received 2/2 objects in 0 B",
		}, lines)
	})

	t.Run("final event prints totals once objects were transferred", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewFetchProgress(&buf)

		p.Update(git.TransferStats{Phase: git.PhaseDone})
		require.Empty(t, buf.String())

		p.Update(git.TransferStats{Phase: git.PhaseDone, TotalObjects: 3, IndexedObjects: 3, ReceivedBytes: 1500})
		require.Equal(t, "Received 3/3 objects in 1.5 kB\n", buf.String())
	})
}
