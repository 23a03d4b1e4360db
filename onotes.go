package onotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/onotes/internal/platform"
	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/reminders"
)

// --- Types ---

// Store is the notes and reminders store.
type Store = core.Store

// Snapshot is an immutable view of the store.
type Snapshot = core.Snapshot

// Config is the file and environment configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring onotes.
type Option = platform.Option

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the document encoding, "json" or "yaml".
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithEventBuffer allows specifying the size of the store's event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithDebounce sets the file watcher debounce window.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler registers a callback for watcher runtime errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// LoadConfig merges defaults, the YAML file at path and ONOTES_* variables.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Factory ---

// New creates a Store without loading it.
func New(path string, opts ...Option) (*core.Store, error) {
	return platform.New(path, opts...)
}

// Open creates a Store and loads it. On a load failure the store is still
// returned, hydrated empty, together with the error.
func Open(path string, opts ...Option) (*core.Store, error) {
	store, err := platform.New(path, opts...)
	if err != nil {
		return nil, err
	}
	return store, store.Load(context.Background())
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// NewRuntime creates the reminder runtime that delivers store reminders to sink.
func NewRuntime(store *core.Store, sink reminders.Sink, opts ...reminders.RuntimeOption) *reminders.Runtime {
	return reminders.NewRuntime(store, sink, opts...)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindConfig looks upwards from startDir for an onotes config file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}
