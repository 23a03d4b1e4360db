// Package notify holds the user-visible list of delivered reminders.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/introspection"
)

// Notification is one delivered reminder, visible until dismissed.
type Notification struct {
	ID           string    `json:"id"`
	ReminderID   string    `json:"reminderId"`
	NoteID       string    `json:"noteId,omitempty"`
	Title        string    `json:"title"`
	DeliveredFor time.Time `json:"deliveredFor"`
	DeliveredAt  time.Time `json:"deliveredAt"`
}

func (n Notification) String() string {
	return fmt.Sprintf("%s %q due %s", n.ReminderID, n.Title, n.DeliveredFor.Format(time.DateTime))
}

// NewID builds a notification id from the reminder id and the delivery time.
func NewID(reminderID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", reminderID, at.UnixMilli())
}

// Log is the ordered list of live notifications.
// It holds at most one notification per reminder. Dismissing or clearing
// never allows a reminder to be delivered again: that is tracked by the
// scheduling engine, not here.
type Log struct {
	mu      sync.RWMutex
	items   []Notification
	logger  *slog.Logger
	subMu   sync.Mutex
	subs    map[int]chan Notification
	nextSub int
	buffer  int
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the log's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBuffer sets the per-subscriber buffer of Watch.
func WithBuffer(size int) Option {
	return func(l *Log) {
		if size > 0 {
			l.buffer = size
		}
	}
}

// NewLog creates an empty notification log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:   make(map[int]chan Notification),
		buffer: 16,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds n unless a live notification for the same reminder exists.
// It reports whether n was added.
func (l *Log) Append(n Notification) bool {
	l.mu.Lock()
	if slices.ContainsFunc(l.items, func(o Notification) bool { return o.ReminderID == n.ReminderID }) {
		l.mu.Unlock()
		l.logger.Debug("notification already live", "reminder", n.ReminderID)
		return false
	}
	l.items = append(l.items, n)
	l.mu.Unlock()

	l.logger.Info("reminder delivered", "id", n.ID, "reminder", n.ReminderID, "title", n.Title)
	l.publish(n)
	return true
}

// Dismiss removes the notification with the given id.
func (l *Log) Dismiss(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(n Notification) bool { return n.ID == id })
	return len(l.items) != before
}

// Clear removes every notification.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// List returns the live notifications in delivery order.
func (l *Log) List() []Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Len returns the number of live notifications.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Watch streams notifications as they are appended. Slow consumers miss
// entries rather than block delivery; List stays authoritative.
func (l *Log) Watch(ctx context.Context) <-chan Notification {
	ch := make(chan Notification, l.buffer)

	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.subMu.Unlock()

	go func() {
		<-ctx.Done()
		l.subMu.Lock()
		delete(l.subs, id)
		close(ch)
		l.subMu.Unlock()
	}()
	return ch
}

func (l *Log) publish(n Notification) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- n:
		default:
			l.logger.Debug("dropping notification, subscriber not ready", "id", n.ID)
		}
	}
}

// LogState exposes internal state for observability.
type LogState struct {
	Live        int `json:"live"`
	Subscribers int `json:"subscribers"`
}

// State implements introspection.Introspectable.
func (l *Log) State() any {
	l.subMu.Lock()
	subs := len(l.subs)
	l.subMu.Unlock()
	return LogState{Live: l.Len(), Subscribers: subs}
}

// ComponentType implements introspection.Component.
func (l *Log) ComponentType() string {
	return "notification-log"
}

var _ introspection.Introspectable = (*Log)(nil)
var _ introspection.Component = (*Log)(nil)
