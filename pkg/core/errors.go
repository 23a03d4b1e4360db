package core

import "errors"

// Common errors.
var (
	ErrReadOnly     = errors.New("repository is in read-only mode")
	ErrNotHydrated  = errors.New("store is not hydrated yet")
	ErrNotFound     = errors.New("not found")
	ErrKeyNotFound  = errors.New("key not found")
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrNotWatchable = errors.New("repository does not support watching")
)
