package utils

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"

	"github.com/galleon-dao/galleon-core/utils/key"
)

// Counter is a stateful counter that works with the kv store and starts from 1,
// so the zero value of the counted type stays available as a "not set" marker
type Counter[T constraints.Unsigned] struct {
	key   key.Key
	store KVStore
}

// NewCounter is the constructor for counter
func NewCounter[T constraints.Unsigned](key key.Key, store KVStore) Counter[T] {
	return Counter[T]{
		key:   key,
		store: store,
	}
}

// Incr increments the counter and returns the new value
func (c Counter[T]) Incr() T {
	var count T
	if bz := c.store.GetRaw(c.key); bz != nil {
		count = T(binary.BigEndian.Uint64(bz))
	}
	count++

	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(count))
	c.store.SetRaw(c.key, bz)

	return count
}

// Curr returns the current value of the counter
func (c Counter[T]) Curr() T {
	if bz := c.store.GetRaw(c.key); bz != nil {
		return T(binary.BigEndian.Uint64(bz))
	}
	return 0
}
