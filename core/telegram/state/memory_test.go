package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore[int](4)
	v, ok := s.Get(42)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestMemoryStoreUpsertAndRemove(t *testing.T) {
	s := NewMemoryStore[string](0)

	got := s.Upsert(1, func(cur string, ok bool) string {
		assert.False(t, ok)
		return "a"
	})
	assert.Equal(t, "a", got)

	got = s.Upsert(1, func(cur string, ok bool) string {
		assert.True(t, ok)
		return cur + "b"
	})
	assert.Equal(t, "ab", got)

	v, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "ab", v)
	assert.Equal(t, 1, s.Len())

	assert.True(t, s.Remove(1))
	assert.False(t, s.Remove(1))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreUpdateDropsEntry(t *testing.T) {
	s := NewMemoryStore[int](2)
	s.Upsert(7, func(int, bool) int { return 1 })

	next, kept := s.Update(7, func(cur int, ok bool) (int, bool) {
		return cur + 1, false
	})
	assert.Equal(t, 2, next)
	assert.False(t, kept)
	_, ok := s.Get(7)
	assert.False(t, ok)
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore[int](8)
	for i := int64(0); i < 100; i++ {
		v := int(i)
		s.Upsert(i, func(int, bool) int { return v })
	}
	removed := s.Sweep(func(_ int64, v int) bool { return v%2 == 0 })
	assert.Equal(t, 50, removed)
	assert.Equal(t, 50, s.Len())
}

func TestMemoryStoreSerializesSameKey(t *testing.T) {
	s := NewMemoryStore[int](16)
	const workers, perWorker = 16, 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Upsert(99, func(cur int, _ bool) int { return cur + 1 })
			}
		}()
	}
	wg.Wait()

	v, ok := s.Get(99)
	require.True(t, ok)
	assert.Equal(t, workers*perWorker, v)
}
