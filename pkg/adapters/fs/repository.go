// Package fs stores each key as one file in a data directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/onotes/pkg/core"
)

// Repository implements core.Repository using the filesystem.
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
	lastChange    *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Extension    string // e.g. ".json" or ".yaml"; defaults to ".json"
	MustExist    bool
	ReadOnly     bool
	Debounce     time.Duration // watcher debounce window; defaults to 50ms
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher runtime errors
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Extension == "" {
		config.Extension = ".json"
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the data directory exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
		return nil
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Filename returns the file backing key.
func (r *Repository) Filename(key string) string {
	return filepath.Join(r.Path, key+r.config.Extension)
}

// Get reads the file backing key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.Filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces the file backing key.
func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(r.Filename(key), value, 0644); err != nil {
		return err
	}
	r.recordWrite()
	r.config.Logger.Debug("document written", "key", key, "bytes", len(value))
	return nil
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
