// Package memory provides a map-backed core.Repository for tests and
// ephemeral stores.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/onotes/pkg/core"
)

// Repository keeps values in memory. Values are copied on the way in and out.
type Repository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string][]byte)}
}

func (r *Repository) Initialize(ctx context.Context) error { return nil }

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = slices.Clone(value)
	return nil
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]int{"keys": len(r.data)}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
