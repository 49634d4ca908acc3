package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7StrictlyIncreasing(t *testing.T) {
	gen := NewUUIDv7()
	prev := gen.Next()
	for i := 0; i < 5000; i++ {
		next := gen.Next()
		require.Greater(t, next, prev, "identity %d did not sort after its predecessor", i)
		prev = next
	}
}

func TestSequenceFormat(t *testing.T) {
	seq := NewSequence("sec")
	assert.Equal(t, "sec-000000000001", seq.Next())
	assert.Equal(t, "sec-000000000002", seq.Next())

	bare := NewSequence("")
	assert.Equal(t, "000000000001", bare.Next())
}

func TestSequenceUniqueAcrossGoroutines(t *testing.T) {
	seq := NewSequence("doc")
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				id := seq.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 2000)
}
