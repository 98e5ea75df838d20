package state

import "sync"

type shard[V any] struct {
	mu       sync.Mutex
	sessions map[int64]V
}

type memoryStore[V any] struct {
	shards []*shard[V]
}

// NewMemoryStore constructs an in-memory Store split into n independently locked shards.
func NewMemoryStore[V any](n int) Store[V] {
	if n <= 0 {
		n = DefaultShards
	}
	s := &memoryStore[V]{shards: make([]*shard[V], n)}
	for i := range s.shards {
		s.shards[i] = &shard[V]{sessions: make(map[int64]V)}
	}
	return s
}

func (m *memoryStore[V]) shardFor(userID int64) *shard[V] {
	h := uint64(userID)
	// fibonacci hashing spreads sequential IDs across shards
	h *= 0x9E3779B97F4A7C15
	return m.shards[(h>>32)%uint64(len(m.shards))]
}

// Get returns the stored value for a user, if any.
func (m *memoryStore[V]) Get(userID int64) (V, bool) {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v, ok := sh.sessions[userID]
	return v, ok
}

// Upsert applies fn to the current value and stores the result, creating the entry if necessary.
func (m *memoryStore[V]) Upsert(userID int64, fn MutateFunc[V]) V {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur, ok := sh.sessions[userID]
	next := fn(cur, ok)
	sh.sessions[userID] = next
	return next
}

// Update applies fn under the shard lock and either stores or removes the result.
// It returns the value produced by fn and whether it was kept.
func (m *memoryStore[V]) Update(userID int64, fn UpdateFunc[V]) (V, bool) {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur, ok := sh.sessions[userID]
	next, keep := fn(cur, ok)
	if keep {
		sh.sessions[userID] = next
	} else {
		delete(sh.sessions, userID)
	}
	return next, keep
}

// Remove deletes the entry for a user and reports whether one existed.
func (m *memoryStore[V]) Remove(userID int64) bool {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.sessions[userID]
	delete(sh.sessions, userID)
	return ok
}

// Len counts entries across all shards. The result is a snapshot.
func (m *memoryStore[V]) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// Sweep removes every entry for which match returns true, one shard at a time.
func (m *memoryStore[V]) Sweep(match func(userID int64, v V) bool) int {
	removed := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		for id, v := range sh.sessions {
			if match(id, v) {
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}
