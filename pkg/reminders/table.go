package reminders

import (
	"cmp"
	"slices"
	"time"
)

// TimerTable is the scheduling state of one Engine: the reminders waiting on
// a timer and the reminders already delivered in this load cycle.
// An id is never both pending and delivered.
type TimerTable struct {
	pending   map[string]*entry
	delivered map[string]struct{}
	seq       uint64
}

// entry pairs a live timer with the reminder data it will deliver.
// Its address is the timer's identity: a callback only delivers if the table
// still holds the very entry it was created for.
type entry struct {
	timer    Timer
	reminder Pending
	seq      uint64
}

// NewTimerTable returns an empty table.
func NewTimerTable() *TimerTable {
	return &TimerTable{
		pending:   make(map[string]*entry),
		delivered: make(map[string]struct{}),
	}
}

// IsPending reports whether id waits on a timer.
func (t *TimerTable) IsPending(id string) bool {
	_, ok := t.pending[id]
	return ok
}

// IsDelivered reports whether id was delivered in this cycle.
func (t *TimerTable) IsDelivered(id string) bool {
	_, ok := t.delivered[id]
	return ok
}

// PendingIDs returns the pending ids, sorted.
func (t *TimerTable) PendingIDs() []string {
	ids := make([]string, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// DeliveredIDs returns the delivered ids, sorted.
func (t *TimerTable) DeliveredIDs() []string {
	ids := make([]string, 0, len(t.delivered))
	for id := range t.delivered {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NextDue returns the earliest pending instant.
func (t *TimerTable) NextDue() (time.Time, bool) {
	var next time.Time
	found := false
	for _, e := range t.pending {
		if !found || e.reminder.When.Before(next) {
			next = e.reminder.When
			found = true
		}
	}
	return next, found
}

// dueWith returns the pending entries sharing ent's instant, ent included,
// ordered by when they were scheduled.
func (t *TimerTable) dueWith(ent *entry) []*entry {
	var batch []*entry
	for _, e := range t.pending {
		if e.reminder.When.Equal(ent.reminder.When) {
			batch = append(batch, e)
		}
	}
	slices.SortFunc(batch, func(a, b *entry) int { return cmp.Compare(a.seq, b.seq) })
	return batch
}

func (t *TimerTable) markDelivered(id string) {
	delete(t.pending, id)
	t.delivered[id] = struct{}{}
}
