package reminders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/onotes/pkg/core"
)

// Source is the part of the Store the Runtime depends on.
type Source interface {
	Snapshot() core.Snapshot
	Hydrated() bool
	Watch(ctx context.Context) (<-chan core.Event, error)
}

// Runtime serialises store changes and timer callbacks on a single goroutine
// and feeds them to an Engine.
type Runtime struct {
	source   Source
	engine   *Engine
	logger   *slog.Logger
	queue    chan func()
	done     chan struct{}
	onResult func(core.Event, Result)
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	sched    Scheduler
	logger   *slog.Logger
	table    *TimerTable
	onResult func(core.Event, Result)
	queue    int
}

// WithScheduler sets the clock and timer source. Defaults to SystemScheduler.
func WithScheduler(s Scheduler) RuntimeOption {
	return func(c *runtimeConfig) { c.sched = s }
}

// WithRuntimeLogger sets the logger of the runtime and its engine.
func WithRuntimeLogger(logger *slog.Logger) RuntimeOption {
	return func(c *runtimeConfig) { c.logger = logger }
}

// WithRuntimeTimerTable injects the engine's timer table.
func WithRuntimeTimerTable(t *TimerTable) RuntimeOption {
	return func(c *runtimeConfig) { c.table = t }
}

// WithReconcileHook is called on the loop goroutine after every reconcile
// pass, with the event that triggered it (EventHydrate for the initial pass).
func WithReconcileHook(fn func(core.Event, Result)) RuntimeOption {
	return func(c *runtimeConfig) { c.onResult = fn }
}

// NewRuntime creates a runtime that delivers reminders of source into sink.
func NewRuntime(source Source, sink Sink, opts ...RuntimeOption) *Runtime {
	cfg := runtimeConfig{
		sched:  SystemScheduler{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:  64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Runtime{
		source:   source,
		logger:   cfg.logger,
		queue:    make(chan func(), cfg.queue),
		done:     make(chan struct{}),
		onResult: cfg.onResult,
	}
	r.engine = NewEngine(sink, loopScheduler{base: cfg.sched, post: r.post},
		WithLogger(cfg.logger),
		WithTimerTable(cfg.table),
	)
	return r
}

// Engine returns the engine driven by the runtime.
func (r *Runtime) Engine() *Engine {
	return r.engine
}

// Done is closed when Run returns.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Start runs the loop in a tracked goroutine.
func (r *Runtime) Start(ctx context.Context) {
	lifecycle.Go(ctx, r.Run, lifecycle.WithErrorHandler(func(err error) {
		r.logger.Error("reminder runtime failed", "error", err)
	}))
}

// Run processes store events and timer callbacks until ctx is done.
// The first reconcile happens once the store is hydrated; on exit every
// pending timer is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.engine.Stop()

	events, err := r.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}

	if r.source.Hydrated() {
		r.reconcile(core.Event{Type: core.EventHydrate, Kind: core.KindStore})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if !r.source.Hydrated() {
				r.logger.Debug("event before hydration ignored", "event", e.String())
				continue
			}
			r.reconcile(e)
		case fn := <-r.queue:
			fn()
		}
	}
}

// reconcile always reads the latest snapshot, so coalesced or dropped events
// cannot leave the engine behind.
func (r *Runtime) reconcile(trigger core.Event) {
	res := r.engine.Reconcile(r.source.Snapshot())
	if r.onResult != nil {
		r.onResult(trigger, res)
	}
}

// post hands a timer callback to the loop. Callbacks arriving after Run has
// returned are dropped.
func (r *Runtime) post(fn func()) {
	select {
	case r.queue <- fn:
	case <-r.done:
	}
}

// loopScheduler runs callbacks of base on the runtime loop instead of the
// timer goroutine.
type loopScheduler struct {
	base Scheduler
	post func(func())
}

func (s loopScheduler) Now() time.Time { return s.base.Now() }

func (s loopScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.base.AfterFunc(d, func() { s.post(f) })
}
