package utils

import (
	"encoding/json"
	"fmt"
	"io"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cometbft/cometbft/libs/log"

	"github.com/galleon-dao/galleon-core/utils/key"
)

// KVStore is a wrapper around the cosmos KV store that provides typed access
// through store keys. Values are persisted in their canonical JSON encoding,
// matching the state layout of the contracts this module set models.
type KVStore struct {
	storetypes.KVStore
}

// NewNormalizedStore returns a new KVStore
func NewNormalizedStore(store storetypes.KVStore) KVStore {
	return KVStore{KVStore: store}
}

// Set marshals the value and stores it under the given key
func (store KVStore) Set(k key.Key, value any) {
	store.KVStore.Set(k.Bytes(), mustMarshal(value))
}

// Get unmarshals the value stored under the given key into the given pointer.
// Returns false if the key does not exist.
func (store KVStore) Get(k key.Key, value any) bool {
	bz := store.KVStore.Get(k.Bytes())
	if bz == nil {
		return false
	}

	mustUnmarshal(bz, value)
	return true
}

// SetRaw stores the raw bytes under the given key
func (store KVStore) SetRaw(k key.Key, value []byte) {
	store.KVStore.Set(k.Bytes(), value)
}

// GetRaw returns the raw bytes stored under the given key, or nil if the key does not exist
func (store KVStore) GetRaw(k key.Key) []byte {
	return store.KVStore.Get(k.Bytes())
}

// Has returns true if the given key exists
func (store KVStore) Has(k key.Key) bool {
	return store.KVStore.Has(k.Bytes())
}

// Delete deletes the value stored under the given key, if it exists
func (store KVStore) Delete(k key.Key) {
	store.KVStore.Delete(k.Bytes())
}

// Iterator returns an Iterator that can handle a structured Key.
// The end of the iterator range is the prefix's increment, so only keys below the given prefix are traversed.
func (store KVStore) Iterator(prefix key.Key) Iterator {
	iter := sdk.KVStorePrefixIterator(store.KVStore, append(prefix.Bytes(), []byte(key.DefaultDelimiter)...))
	return iterator{Iterator: iter}
}

// Iterator is an easier and safer to use sdk store iterator
type Iterator interface {
	storetypes.Iterator

	// UnmarshalValue unmarshals the value the iterator currently points to into the given pointer
	UnmarshalValue(value any)
	// GetKey returns the full key the iterator currently points to
	GetKey() []byte
}

type iterator struct {
	storetypes.Iterator
}

func (i iterator) UnmarshalValue(value any) {
	mustUnmarshal(i.Value(), value)
}

func (i iterator) GetKey() []byte {
	return i.Key()
}

// CloseLogError closes the given iterator and logs the error if it fails
func CloseLogError(iter io.Closer, logger log.Logger) {
	if err := iter.Close(); err != nil {
		logger.Error(fmt.Sprintf("failed to close kv store iterator: %v", err))
	}
}

func mustMarshal(value any) []byte {
	bz, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return bz
}

func mustUnmarshal(bz []byte, value any) {
	if err := json.Unmarshal(bz, value); err != nil {
		panic(err)
	}
}
