package git

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressWriter(t *testing.T) {
	t.Run("parses sideband lines", func(t *testing.T) {
		var updates []TransferStats
		w := newProgressWriter(func(s TransferStats) { updates = append(updates, s) })

		lines := []string{
			"Enumerating objects: 5, done.\n",
			"remote: Counting objects: 100% (5/5), done.\n",
			"Compressing objects:  66% (2/3)\rCompressing objects: 100% (3/3), done.\n",
			"Total 5 (delta 1), reused 0 (delta 0), pack-reused 0\n",
			"Receiving objects:  60% (3/5), 1.50 KiB | 1.00 MiB/s\r",
			"hello there\n",
			"Resolving del",
			"tas: 100% (1/1), done.\n",
		}
		for _, l := range lines {
			n, err := w.Write([]byte(l))
			require.NoError(t, err)
			require.Equal(t, len(l), n)
		}

		require.Len(t, updates, 7)
		require.Equal(t, PhaseCounting, updates[0].Phase)
		require.Equal(t, 5, updates[0].TotalObjects)
		require.Equal(t, PhaseCompressing, updates[3].Phase)
		require.Equal(t, 1, updates[4].TotalDeltas)

		receiving := updates[5]
		require.Equal(t, PhaseReceiving, receiving.Phase)
		require.Equal(t, 3, receiving.ReceivedObjects)
		require.Equal(t, uint64(1536), receiving.ReceivedBytes)
		require.False(t, receiving.ObjectsComplete())

		resolving := updates[6]
		require.Equal(t, PhaseResolving, resolving.Phase)
		require.Equal(t, 1, resolving.IndexedDeltas)

		final := w.complete()
		require.Len(t, updates, 8)
		require.Equal(t, PhaseDone, final.Phase)
		require.Equal(t, 5, final.ReceivedObjects)
		require.Equal(t, 5, final.IndexedObjects)
		require.True(t, final.ObjectsComplete())
		require.Equal(t, final, updates[7])
	})

	t.Run("nil reporter", func(t *testing.T) {
		w := newProgressWriter(nil)
		_, err := w.Write([]byte("Counting objects: 100% (2/2), done.\n"))
		require.NoError(t, err)
		require.Equal(t, 2, w.complete().TotalObjects)
	})

	t.Run("panicking reporter does not break the transfer", func(t *testing.T) {
		w := newProgressWriter(func(TransferStats) { panic("boom") })
		require.NotPanics(t, func() {
			_, err := w.Write([]byte("Enumerating objects: 3, done.\n"))
			require.NoError(t, err)
			w.complete()
		})
	})
}
