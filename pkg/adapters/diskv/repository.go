// Package diskv stores documents in a diskv key-value directory with an
// in-memory read cache.
package diskv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/introspection"
	"github.com/peterbourgon/diskv/v3"

	"github.com/aretw0/onotes/pkg/core"
)

// Config holds the configuration for the diskv repository.
type Config struct {
	Path         string
	CacheSizeMax uint64 // bytes; defaults to 1MB
}

// Repository implements core.Repository on top of diskv.
type Repository struct {
	Path string
	d    *diskv.Diskv
}

// NewRepository creates a diskv-backed repository rooted at cfg.Path.
// Dotted keys ("onotes.data") are laid out as nested directories.
func NewRepository(cfg Config) *Repository {
	if cfg.CacheSizeMax == 0 {
		cfg.CacheSizeMax = 1024 * 1024 // 1MB
	}
	return &Repository{
		Path: cfg.Path,
		d: diskv.New(diskv.Options{
			BasePath:          cfg.Path,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      cfg.CacheSizeMax,
		}),
	}
}

func (r *Repository) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.d.Has(key) {
		return nil, core.ErrKeyNotFound
	}
	val, err := r.d.Read(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, nil
}

func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.d.Write(key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys.
func (r *Repository) Keys(ctx context.Context) []string {
	var keys []string
	for k := range r.d.Keys(ctx.Done()) {
		keys = append(keys, k)
	}
	return keys
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, ".")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), ".")
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return map[string]string{"path": r.Path}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "diskv"
}

var _ core.Repository = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
