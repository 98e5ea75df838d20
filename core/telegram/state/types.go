package state

// DefaultShards is used when NewMemoryStore receives a non-positive shard count.
const DefaultShards = 32

// MutateFunc receives the current value (ok=false when absent) and returns the
// value to store.
type MutateFunc[V any] func(cur V, ok bool) V

// UpdateFunc receives the current value (ok=false when absent) and returns the
// next value together with keep. When keep is false the entry is removed.
type UpdateFunc[V any] func(cur V, ok bool) (next V, keep bool)

// Store is a keyed map from Telegram user ID to per-user session data.
// Implementations must make calls for the same user linearizable.
type Store[V any] interface {
	Get(userID int64) (V, bool)
	Upsert(userID int64, fn MutateFunc[V]) V
	Update(userID int64, fn UpdateFunc[V]) (V, bool)
	Remove(userID int64) bool

	Len() int
	Sweep(match func(userID int64, v V) bool) int
}
