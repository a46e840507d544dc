package neat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnovationHistoryStableIDs(t *testing.T) {
	h := NewInnovationHistory()

	first := h.GetInnovationNumber(0, 3)
	second := h.GetInnovationNumber(1, 3)
	third := h.GetInnovationNumber(3, 0)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, third, "reversed pair is a different edge")

	assert.Equal(t, first, h.GetInnovationNumber(0, 3))
	assert.Equal(t, second, h.GetInnovationNumber(1, 3))
	assert.Equal(t, 3, h.Len())
}

func TestInnovationHistorySnapshotRestore(t *testing.T) {
	h := NewInnovationHistory()
	h.GetInnovationNumber(0, 1)
	h.GetInnovationNumber(0, 2)

	snap := h.Snapshot()
	h.GetInnovationNumber(5, 6) // not part of the snapshot

	restored := NewInnovationHistory()
	restored.Restore(snap)

	assert.Equal(t, 2, restored.Len())
	assert.Equal(t, 1, restored.GetInnovationNumber(0, 2))
	assert.Equal(t, 2, restored.GetInnovationNumber(7, 8), "counter continues after restored ids")

	// Mutating the snapshot must not leak into the restored history.
	snap.Numbers[ConnectionKey{Source: 9, Target: 9}] = 42
	assert.Equal(t, 3, restored.Len())
}

func TestInnovationHistoryConcurrentUse(t *testing.T) {
	h := NewInnovationHistory()

	var wg sync.WaitGroup
	results := make([][]int, 8)
	for w := 0; w < len(results); w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results[w] = append(results[w], h.GetInnovationNumber(i, i+1))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, 50, h.Len())
	for w := 1; w < len(results); w++ {
		assert.Equal(t, results[0], results[w])
	}
}
