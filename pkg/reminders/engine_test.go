package reminders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
	"github.com/aretw0/onotes/pkg/reminders"
)

var t0 = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func at(id string, d time.Duration) core.Reminder {
	return core.Reminder{ID: id, Title: "r " + id, When: core.At(t0.Add(d))}
}

// countingScheduler records every AfterFunc/Stop and keeps the callbacks so
// tests can fire them out of band.
type countingScheduler struct {
	*reminders.VirtualScheduler
	scheduled int
	stopped   int
	callbacks []func()
}

type countingTimer struct {
	reminders.Timer
	s *countingScheduler
}

func (t countingTimer) Stop() bool {
	t.s.stopped++
	return t.Timer.Stop()
}

func (s *countingScheduler) AfterFunc(d time.Duration, f func()) reminders.Timer {
	s.scheduled++
	s.callbacks = append(s.callbacks, f)
	return countingTimer{Timer: s.VirtualScheduler.AfterFunc(d, f), s: s}
}

func setup() (*countingScheduler, *notify.Log, *reminders.Engine) {
	sched := &countingScheduler{VirtualScheduler: reminders.NewVirtualScheduler(t0)}
	log := notify.NewLog()
	return sched, log, reminders.NewEngine(log, sched)
}

func reminderIDs(log *notify.Log) []string {
	var ids []string
	for _, n := range log.List() {
		ids = append(ids, n.ReminderID)
	}
	return ids
}

func TestEngine_IdempotentDelivery(t *testing.T) {
	sched, log, engine := setup()
	snap := core.Snapshot{Reminders: []core.Reminder{at("past", -time.Minute), at("future", time.Hour)}}

	res := engine.Reconcile(snap)
	assert.Equal(t, []string{"past"}, res.Delivered)
	assert.Equal(t, []string{"future"}, res.Scheduled)

	for i := 0; i < 3; i++ {
		assert.True(t, engine.Reconcile(snap).Empty())
	}
	assert.Equal(t, 1, sched.scheduled)
	assert.Equal(t, []string{"past"}, reminderIDs(log))

	sched.Advance(time.Hour)
	assert.True(t, engine.Reconcile(snap).Empty())
	assert.Equal(t, []string{"past", "future"}, reminderIDs(log))
	assert.Equal(t, []string{"future", "past"}, engine.Delivered())
}

func TestEngine_DeletionVoidsPending(t *testing.T) {
	sched, log, engine := setup()
	withR := core.Snapshot{Reminders: []core.Reminder{at("r", 30 * time.Minute)}}

	engine.Reconcile(withR)
	require.Equal(t, []string{"r"}, engine.Pending())

	res := engine.Reconcile(core.Snapshot{})
	assert.Equal(t, []string{"r"}, res.Cancelled)
	assert.Empty(t, engine.Pending())
	assert.Zero(t, sched.Pending())

	sched.Advance(time.Hour)
	assert.Zero(t, log.Len())
	assert.Empty(t, engine.Delivered(), "cancelled reminders are not marked delivered")
}

func TestEngine_PastDueDeliversSynchronously(t *testing.T) {
	sched, log, engine := setup()
	snap := core.Snapshot{
		Notes: []core.Note{{ID: "n", Title: "note", Reminders: []core.Reminder{
			{ID: "b", When: core.At(t0.Add(-time.Hour))},
			{ID: "a", When: core.At(t0)},
		}}},
		Reminders: []core.Reminder{at("c", -2*time.Hour)},
	}

	res := engine.Reconcile(snap)
	assert.Equal(t, []string{"b", "a", "c"}, res.Delivered, "extraction order, equal time counts as due")
	assert.Zero(t, sched.scheduled, "no timer for past-due reminders")
	assert.Equal(t, []string{"b", "a", "c"}, reminderIDs(log))

	first := log.List()[0]
	assert.Equal(t, "n", first.NoteID)
	assert.Equal(t, "note", first.Title)
	assert.Equal(t, t0, first.DeliveredAt)
	assert.Equal(t, notify.NewID("b", t0), first.ID)
}

func TestEngine_DismissDoesNotRetrigger(t *testing.T) {
	_, log, engine := setup()
	snap := core.Snapshot{Reminders: []core.Reminder{at("r", -time.Second)}}

	engine.Reconcile(snap)
	require.Equal(t, 1, log.Len())

	require.True(t, log.Dismiss(log.List()[0].ID))
	engine.Reconcile(snap)
	assert.Zero(t, log.Len())

	engine.Reconcile(snap)
	log.Clear()
	engine.Reconcile(snap)
	assert.Zero(t, log.Len())
}

func TestEngine_UnrelatedEditKeepsTimer(t *testing.T) {
	sched, log, engine := setup()
	note := core.Note{ID: "n", Title: "before", Reminders: []core.Reminder{{ID: "r", When: core.At(t0.Add(time.Hour))}}}

	engine.Reconcile(core.Snapshot{Notes: []core.Note{note}})
	require.Equal(t, 1, sched.scheduled)

	note.Title = "after"
	note.Body = "edited"
	res := engine.Reconcile(core.Snapshot{Notes: []core.Note{note}})
	assert.True(t, res.Empty())
	assert.Equal(t, 1, sched.scheduled, "no reschedule")
	assert.Zero(t, sched.stopped, "no cancel")

	sched.Advance(time.Hour)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, "after", log.List()[0].Title, "display data is refreshed")
}

func TestEngine_StaleFireIgnored(t *testing.T) {
	sched, log, engine := setup()
	engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("r", time.Minute)}})
	require.Len(t, sched.callbacks, 1)

	engine.Reconcile(core.Snapshot{})
	// The timer raced with the cancellation and fires anyway.
	sched.callbacks[0]()
	assert.Zero(t, log.Len())

	// Re-adding the id schedules a fresh timer; the old callback stays void.
	engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("r", time.Minute)}})
	sched.callbacks[0]()
	assert.Zero(t, log.Len())

	sched.Advance(time.Minute)
	assert.Equal(t, []string{"r"}, reminderIDs(log))
}

func TestEngine_EqualInstantsFireInOrder(t *testing.T) {
	sched, log, engine := setup()
	snap := core.Snapshot{Reminders: []core.Reminder{
		at("c", time.Minute), at("a", time.Minute), at("later", time.Hour), at("b", time.Minute),
	}}
	engine.Reconcile(snap)
	require.Len(t, sched.callbacks, 4)

	// The timer for "b" wins the race to the lock.
	sched.callbacks[3]()
	assert.Equal(t, []string{"c", "a", "b"}, reminderIDs(log))
	assert.Equal(t, []string{"later"}, engine.Pending())

	sched.callbacks[0]()
	sched.callbacks[1]()
	assert.Equal(t, 3, log.Len())
	assert.True(t, engine.Reconcile(snap).Empty())

	sched.Advance(time.Hour)
	assert.Equal(t, []string{"c", "a", "b", "later"}, reminderIDs(log))
}

func TestEngine_ChangedInstantReschedules(t *testing.T) {
	sched, log, engine := setup()
	engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("r", time.Hour)}})

	res := engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("r", 2 * time.Hour)}})
	assert.Equal(t, []string{"r"}, res.Scheduled)
	assert.Equal(t, 1, sched.stopped)

	sched.Advance(time.Hour)
	assert.Zero(t, log.Len())
	sched.Advance(time.Hour)
	assert.Equal(t, 1, log.Len())
}

func TestEngine_StopCancelsTimers(t *testing.T) {
	sched, log, engine := setup()
	engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("a", time.Minute), at("b", time.Hour)}})
	require.Equal(t, 2, sched.Pending())

	engine.Stop()
	assert.Zero(t, sched.Pending())
	assert.Empty(t, engine.Pending())

	sched.Advance(2 * time.Hour)
	assert.Zero(t, log.Len())
}

func TestEngine_InjectedTimerTable(t *testing.T) {
	table := reminders.NewTimerTable()
	sched := reminders.NewVirtualScheduler(t0)
	engine := reminders.NewEngine(notify.NewLog(), sched, reminders.WithTimerTable(table))

	engine.Reconcile(core.Snapshot{Reminders: []core.Reminder{at("p", -time.Minute), at("f", time.Minute)}})
	assert.True(t, table.IsDelivered("p"))
	assert.True(t, table.IsPending("f"))
	assert.False(t, table.IsDelivered("f"))

	next, ok := table.NextDue()
	require.True(t, ok)
	assert.True(t, next.Equal(t0.Add(time.Minute)))

	state := engine.State().(reminders.EngineState)
	assert.Equal(t, 1, state.Pending)
	assert.Equal(t, 1, state.Delivered)
}
