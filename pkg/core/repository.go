package core

import "context"

// Storage keys of the persisted document.
const (
	StorageKey       = "onotes.data"
	LegacyStorageKey = "onotes.notes"
)

// Repository defines the contract for the key-value storage backing the Store.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (Filesystem, diskv, SQLite, memory).
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error

	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// Watchable is implemented by repositories that can report external changes
// to a key (e.g. another process editing the data file).
type Watchable interface {
	// Watch emits an EventReload each time key changes outside this process.
	Watch(ctx context.Context, key string) (<-chan Event, error)
}
