package reminders

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
)

// Sink receives delivered notifications. *notify.Log satisfies it.
type Sink interface {
	Append(n notify.Notification) bool
}

// Result reports what one Reconcile pass did.
type Result struct {
	Delivered []string
	Scheduled []string
	Cancelled []string
}

// Empty reports whether the pass changed nothing.
func (r Result) Empty() bool {
	return len(r.Delivered) == 0 && len(r.Scheduled) == 0 && len(r.Cancelled) == 0
}

// Engine keeps scheduled timers in sync with the stored reminders so that
// every reminder is delivered exactly once per load cycle.
type Engine struct {
	mu     sync.Mutex
	sched  Scheduler
	sink   Sink
	table  *TimerTable
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimerTable injects the table the engine works on.
func WithTimerTable(t *TimerTable) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// NewEngine creates an Engine delivering into sink. A nil scheduler means
// SystemScheduler.
func NewEngine(sink Sink, sched Scheduler, opts ...EngineOption) *Engine {
	if sched == nil {
		sched = SystemScheduler{}
	}
	e := &Engine{
		sched:  sched,
		sink:   sink,
		table:  NewTimerTable(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile brings the timer table in line with snap:
//   - reminders already delivered are skipped;
//   - new reminders due now or earlier are delivered immediately, in
//     extraction order, without a timer;
//   - new future reminders get a timer;
//   - pending reminders no longer present are cancelled, not delivered.
//
// Pending reminders that are still present keep their timer; only their
// display data is refreshed.
func (e *Engine) Reconcile(snap core.Snapshot) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res Result
	current := Extract(snap, e.logger)
	now := e.sched.Now()
	active := make(map[string]bool, len(current))

	for _, p := range current {
		active[p.ID] = true
		if e.table.IsDelivered(p.ID) {
			continue
		}
		if ent, ok := e.table.pending[p.ID]; ok {
			if ent.reminder.When.Equal(p.When) {
				ent.reminder = p
				continue
			}
			// Same id with a new instant only happens on external edits.
			e.logger.Warn("reminder instant changed, rescheduling", "id", p.ID, "when", p.When)
			ent.timer.Stop()
			delete(e.table.pending, p.ID)
		}
		if !p.When.After(now) {
			e.deliver(p, now)
			res.Delivered = append(res.Delivered, p.ID)
			continue
		}
		e.schedule(p, p.When.Sub(now))
		res.Scheduled = append(res.Scheduled, p.ID)
	}

	for _, id := range e.table.PendingIDs() {
		if active[id] {
			continue
		}
		e.table.pending[id].timer.Stop()
		delete(e.table.pending, id)
		res.Cancelled = append(res.Cancelled, id)
	}

	if !res.Empty() {
		e.logger.Debug("reconciled",
			"delivered", len(res.Delivered),
			"scheduled", len(res.Scheduled),
			"cancelled", len(res.Cancelled),
		)
	}
	return res
}

func (e *Engine) schedule(p Pending, delay time.Duration) {
	e.table.seq++
	ent := &entry{reminder: p, seq: e.table.seq}
	e.table.pending[p.ID] = ent
	ent.timer = e.sched.AfterFunc(delay, func() { e.fire(p.ID, ent) })
	e.logger.Debug("reminder scheduled", "id", p.ID, "in", delay)
}

// fire delivers a due timer unless it was cancelled or replaced meanwhile.
// Every pending reminder due at the same instant is delivered with it, in
// scheduling order, so equal instants do not depend on which timer
// goroutine wins. Their own timers then find no entry and do nothing.
func (e *Engine) fire(id string, ent *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.table.pending[id]; !ok || cur != ent {
		e.logger.Debug("stale timer ignored", "id", id)
		return
	}
	batch := e.table.dueWith(ent)
	now := e.sched.Now()
	for _, b := range batch {
		e.deliver(b.reminder, now)
	}
}

func (e *Engine) deliver(p Pending, now time.Time) {
	e.table.markDelivered(p.ID)
	e.sink.Append(notify.Notification{
		ID:           notify.NewID(p.ID, now),
		ReminderID:   p.ID,
		NoteID:       p.NoteID,
		Title:        p.Title,
		DeliveredFor: p.When,
		DeliveredAt:  now,
	})
}

// Stop cancels every pending timer. Delivered state is kept; a new load
// cycle starts with a new Engine.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ent := range e.table.pending {
		ent.timer.Stop()
		delete(e.table.pending, id)
	}
}

// Pending returns the ids waiting on a timer.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.PendingIDs()
}

// Delivered returns the ids delivered in this cycle.
func (e *Engine) Delivered() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.DeliveredIDs()
}
