package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

const defaultEventBuffer = 100

// Store owns the notes, the standalone reminders and the custom order.
// It hydrates once from a Repository, persists after each mutation and
// publishes an Event for every change.
type Store struct {
	repo   Repository
	codec  Codec
	logger *slog.Logger
	key    string
	norm   normalizer

	// saveMu serialises mutation+persist sequences so writes reach the
	// repository in the same order they were applied in memory.
	saveMu      sync.Mutex
	mu          sync.RWMutex
	snap        Snapshot
	hydrated    bool
	lastWritten []byte

	subMu           sync.Mutex
	subs            map[int]chan Event
	nextSub         int
	eventBufferSize int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCodec sets the document format. Defaults to JSONCodec.
func WithCodec(c Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithEventBuffer sets the per-subscriber buffer size. Zero means default (100).
func WithEventBuffer(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// WithClock overrides the time source used for createdAt defaults.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.norm.now = now
		}
	}
}

// WithIDGenerator overrides the id generator (uuid by default).
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.norm.newID = gen
		}
	}
}

// WithStorageKey overrides the key the document is stored under.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// NewStore creates a Store backed by repo. It is empty and not hydrated until
// Load is called.
func NewStore(repo Repository, opts ...StoreOption) *Store {
	s := &Store{
		repo:            repo,
		codec:           JSONCodec{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		key:             StorageKey,
		norm:            normalizer{now: time.Now, newID: NewID},
		subs:            make(map[int]chan Event),
		eventBufferSize: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the stored document and marks the store hydrated.
// The store is hydrated even when reading fails, with an empty snapshot, so
// the application keeps working; the wrapped error is still returned.
func (s *Store) Load(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap, raw, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("failed to load stored notes", "key", s.key, "error", err)
		snap = Snapshot{}
	}

	s.mu.Lock()
	s.snap = snap
	s.hydrated = true
	s.lastWritten = raw
	s.mu.Unlock()

	s.logger.Debug("store hydrated", "notes", len(snap.Notes), "reminders", len(snap.Reminders))
	s.publish(Event{Type: EventHydrate, Kind: KindStore})

	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}
	return nil
}

// Reload re-reads storage after an external change. The in-memory state is
// kept when the stored document cannot be decoded.
func (s *Store) Reload(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if !s.Hydrated() {
		return ErrNotHydrated
	}

	snap, raw, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("failed to reload stored notes", "key", s.key, "error", err)
		return fmt.Errorf("failed to reload notes: %w", err)
	}

	s.mu.Lock()
	if raw != nil && bytes.Equal(raw, s.lastWritten) {
		s.mu.Unlock()
		return nil
	}
	s.snap = snap
	s.lastWritten = raw
	s.mu.Unlock()

	s.logger.Info("store reloaded", "notes", len(snap.Notes), "reminders", len(snap.Reminders))
	s.publish(Event{Type: EventReload, Kind: KindStore})
	return nil
}

// Follow reloads the store each time the repository reports an external
// change. It returns ErrNotWatchable if the repository cannot watch.
func (s *Store) Follow(ctx context.Context) error {
	w, ok := s.repo.(Watchable)
	if !ok {
		return ErrNotWatchable
	}
	events, err := w.Watch(ctx, s.key)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-events:
				if !ok {
					return nil
				}
				if err := s.Reload(ctx); err != nil && !errors.Is(err, ErrNotHydrated) {
					s.logger.Error("reload after external change failed", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("follow panic", "error", err)
	}))
	return nil
}

// read returns the decoded snapshot and the raw bytes it came from.
func (s *Store) read(ctx context.Context) (Snapshot, []byte, error) {
	data, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) && s.key == StorageKey {
		data, err = s.repo.Get(ctx, LegacyStorageKey)
		if err == nil {
			s.logger.Info("upgrading legacy notes", "key", LegacyStorageKey)
		}
	}
	if errors.Is(err, ErrKeyNotFound) {
		return Snapshot{}, nil, nil
	}
	if err != nil {
		return Snapshot{}, nil, err
	}

	snap, err := decodeDocument(s.codec, data)
	if err != nil {
		return Snapshot{}, nil, err
	}
	for i, n := range snap.Notes {
		snap.Notes[i] = s.norm.loaded(n)
	}
	for i := range snap.Reminders {
		snap.Reminders[i].NoteID = ""
	}
	return snap, data, nil
}

// Hydrated reports whether Load has completed.
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Note returns the note with the given id.
func (s *Store) Note(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.noteIndex(id); i >= 0 {
		return s.snap.Notes[i].Clone(), true
	}
	return Note{}, false
}

// Reminder looks up a reminder by id, embedded or standalone.
func (s *Store) Reminder(id string) (Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.snap.Notes {
		for _, r := range n.Reminders {
			if r.ID == id {
				r.NoteID = n.ID
				return r, true
			}
		}
	}
	if i := s.reminderIndex(id); i >= 0 {
		return s.snap.Reminders[i], true
	}
	return Reminder{}, false
}

func (s *Store) noteIndex(id string) int {
	return slices.IndexFunc(s.snap.Notes, func(n Note) bool { return n.ID == id })
}

func (s *Store) reminderIndex(id string) int {
	return slices.IndexFunc(s.snap.Reminders, func(r Reminder) bool { return r.ID == id })
}

// mutate applies fn to the live snapshot, publishes ev and persists.
// The in-memory change stands even when persisting fails.
func (s *Store) mutate(ctx context.Context, ev func() Event, fn func(snap *Snapshot) error) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		return ErrNotHydrated
	}
	if err := fn(&s.snap); err != nil {
		s.mu.Unlock()
		return err
	}
	data, encErr := encodeDocument(s.codec, s.snap)
	if encErr == nil {
		s.lastWritten = data
	}
	e := ev()
	s.mu.Unlock()

	s.publish(e)

	if encErr != nil {
		return encErr
	}
	if err := s.repo.Put(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist notes", "key", s.key, "error", err)
		return fmt.Errorf("failed to persist notes: %w", err)
	}
	return nil
}

func event(t EventType, k EventKind, id string) func() Event {
	return func() Event { return Event{Type: t, Kind: k, ID: id} }
}

// NoteInput carries the user-supplied fields of a new note.
type NoteInput struct {
	Title     string
	Body      string
	Folder    string
	Size      Size
	Todos     []string
	Reminders []time.Time
	CreatedAt time.Time
}

// AddNote creates a note and appends it to the custom order.
func (s *Store) AddNote(ctx context.Context, in NoteInput) (Note, error) {
	n := Note{
		Title:  in.Title,
		Body:   strings.TrimSpace(in.Body),
		Folder: in.Folder,
		Size:   in.Size,
	}
	if !in.CreatedAt.IsZero() {
		n.CreatedAt = At(in.CreatedAt)
	}
	for _, text := range in.Todos {
		n.Todos = append(n.Todos, Todo{Text: text})
	}
	for _, when := range in.Reminders {
		n.Reminders = append(n.Reminders, Reminder{When: At(when)})
	}
	n = s.norm.note(n)

	err := s.mutate(ctx, event(EventCreate, KindNote, n.ID), func(snap *Snapshot) error {
		snap.Notes = append(snap.Notes, n)
		snap.Order = append(snap.Order, n.ID)
		return nil
	})
	return n.Clone(), err
}

// UpdateNote replaces a note. Embedded reminders are replaced as a whole, so
// removing one from n.Reminders deletes it. An embedded reminder whose When
// changed gets a fresh id.
func (s *Store) UpdateNote(ctx context.Context, n Note) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	n = n.Clone()
	return s.mutate(ctx, event(EventModify, KindNote, n.ID), func(snap *Snapshot) error {
		i := s.noteIndex(n.ID)
		if i < 0 {
			return fmt.Errorf("note %s: %w", n.ID, ErrNotFound)
		}
		stored := snap.Notes[i]
		if !n.CreatedAt.Valid() {
			n.CreatedAt = stored.CreatedAt
		}
		for j, r := range n.Reminders {
			for _, old := range stored.Reminders {
				if r.ID != "" && old.ID == r.ID && !old.When.Equal(r.When) {
					n.Reminders[j].ID = s.norm.newID()
				}
			}
		}
		snap.Notes[i] = s.norm.note(n)
		return nil
	})
}

// DeleteNote removes a note, its reminders and its place in the order.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.mutate(ctx, event(EventDelete, KindNote, id), func(snap *Snapshot) error {
		i := s.noteIndex(id)
		if i < 0 {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		snap.Notes = slices.Delete(snap.Notes, i, i+1)
		snap.Order = slices.DeleteFunc(snap.Order, func(o string) bool { return o == id })
		return nil
	})
}

// AddTodo appends a checklist item to a note.
func (s *Store) AddTodo(ctx context.Context, noteID, text string) (Todo, error) {
	todo := Todo{ID: s.norm.newID(), Text: strings.TrimSpace(text)}
	err := s.mutate(ctx, event(EventModify, KindNote, noteID), func(snap *Snapshot) error {
		i := s.noteIndex(noteID)
		if i < 0 {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		snap.Notes[i].Todos = append(snap.Notes[i].Todos, todo)
		return nil
	})
	return todo, err
}

// ToggleTodo flips the done flag of a checklist item.
func (s *Store) ToggleTodo(ctx context.Context, noteID, todoID string) error {
	return s.mutate(ctx, event(EventModify, KindNote, noteID), func(snap *Snapshot) error {
		i := s.noteIndex(noteID)
		if i < 0 {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		todos := snap.Notes[i].Todos
		j := slices.IndexFunc(todos, func(t Todo) bool { return t.ID == todoID })
		if j < 0 {
			return fmt.Errorf("todo %s: %w", todoID, ErrNotFound)
		}
		todos[j].Done = !todos[j].Done
		return nil
	})
}

// ResizeNote moves the note one size up or down and returns the new size.
func (s *Store) ResizeNote(ctx context.Context, id string, grow bool) (Size, error) {
	var size Size
	err := s.mutate(ctx, event(EventModify, KindNote, id), func(snap *Snapshot) error {
		i := s.noteIndex(id)
		if i < 0 {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		size = snap.Notes[i].Size.Step(grow)
		snap.Notes[i].Size = size
		return nil
	})
	return size, err
}

// AddNoteReminder attaches a new reminder to a note.
func (s *Store) AddNoteReminder(ctx context.Context, noteID string, when time.Time) (Reminder, error) {
	r := Reminder{ID: s.norm.newID(), When: At(when), NoteID: noteID}
	err := s.mutate(ctx, event(EventModify, KindNote, noteID), func(snap *Snapshot) error {
		i := s.noteIndex(noteID)
		if i < 0 {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		snap.Notes[i].Reminders = append(snap.Notes[i].Reminders, r)
		return nil
	})
	return r, err
}

// RemoveNoteReminder deletes a reminder embedded in a note.
func (s *Store) RemoveNoteReminder(ctx context.Context, noteID, reminderID string) error {
	return s.mutate(ctx, event(EventModify, KindNote, noteID), func(snap *Snapshot) error {
		i := s.noteIndex(noteID)
		if i < 0 {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		before := len(snap.Notes[i].Reminders)
		snap.Notes[i].Reminders = slices.DeleteFunc(snap.Notes[i].Reminders, func(r Reminder) bool {
			return r.ID == reminderID
		})
		if len(snap.Notes[i].Reminders) == before {
			return fmt.Errorf("reminder %s: %w", reminderID, ErrNotFound)
		}
		return nil
	})
}

// ReminderInput carries the user-supplied fields of a standalone reminder.
type ReminderInput struct {
	Title      string
	Body       string
	When       time.Time
	TargetDate time.Time
}

func (in ReminderInput) reminder(when time.Time) Reminder {
	r := Reminder{Title: in.Title, Body: in.Body, When: At(when)}
	if !in.TargetDate.IsZero() {
		r.TargetDate = At(in.TargetDate)
	}
	return r
}

// AddReminder creates a standalone reminder.
func (s *Store) AddReminder(ctx context.Context, in ReminderInput) (Reminder, error) {
	r := s.norm.reminder(in.reminder(in.When))
	err := s.mutate(ctx, event(EventCreate, KindReminder, r.ID), func(snap *Snapshot) error {
		snap.Reminders = append(snap.Reminders, r)
		return nil
	})
	return r, err
}

// AddReminders creates one standalone reminder per instant in a single write.
func (s *Store) AddReminders(ctx context.Context, in ReminderInput, times []time.Time) ([]Reminder, error) {
	if len(times) == 0 {
		return nil, nil
	}
	created := make([]Reminder, 0, len(times))
	for _, when := range times {
		created = append(created, s.norm.reminder(in.reminder(when)))
	}
	err := s.mutate(ctx, event(EventCreate, KindReminder, created[0].ID), func(snap *Snapshot) error {
		snap.Reminders = append(snap.Reminders, created...)
		return nil
	})
	return created, err
}

// UpdateReminder replaces a standalone reminder and returns the stored value.
// Reminders are immutable once delivered, so changing When re-identifies the
// reminder: it is stored under a fresh id and the old id disappears.
func (s *Store) UpdateReminder(ctx context.Context, r Reminder) (Reminder, error) {
	if r.ID == "" {
		return Reminder{}, ErrEmptyID
	}
	r = s.norm.reminder(r)
	prev := r.ID
	ev := func() Event { return Event{Type: EventModify, Kind: KindReminder, ID: r.ID} }
	err := s.mutate(ctx, ev, func(snap *Snapshot) error {
		i := s.reminderIndex(prev)
		if i < 0 {
			return fmt.Errorf("reminder %s: %w", prev, ErrNotFound)
		}
		if !snap.Reminders[i].When.Equal(r.When) {
			r.ID = s.norm.newID()
		}
		snap.Reminders[i] = r
		return nil
	})
	if err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// DeleteReminder removes a standalone reminder.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	return s.mutate(ctx, event(EventDelete, KindReminder, id), func(snap *Snapshot) error {
		i := s.reminderIndex(id)
		if i < 0 {
			return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
		}
		snap.Reminders = slices.Delete(snap.Reminders, i, i+1)
		return nil
	})
}

// SetOrder replaces the custom order wholesale.
func (s *Store) SetOrder(ctx context.Context, ids []string) error {
	order := slices.Clone(ids)
	return s.mutate(ctx, event(EventOrder, KindOrder, ""), func(snap *Snapshot) error {
		snap.Order = order
		return nil
	})
}

// ReorderVisible merges a reordered visible subset into the full custom
// order (see MergeOrder) and persists the result.
func (s *Store) ReorderVisible(ctx context.Context, visible []string) ([]string, error) {
	var merged []string
	err := s.mutate(ctx, event(EventOrder, KindOrder, ""), func(snap *Snapshot) error {
		merged = MergeOrder(snap.Order, visible, snap.NoteIDs())
		snap.Order = merged
		return nil
	})
	return slices.Clone(merged), err
}

// Watch subscribes to store events. The channel is buffered and closed when
// ctx is done; events are dropped for a subscriber whose buffer is full, so
// consumers should re-read Snapshot rather than rely on every event.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, s.eventBufferSize)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, id)
		close(ch)
		s.subMu.Unlock()
	}()

	return ch, nil
}

func (s *Store) publish(e Event) {
	e.Timestamp = time.Now().Unix()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Debug("dropping event, subscriber not ready", "event", e.String())
		}
	}
}
