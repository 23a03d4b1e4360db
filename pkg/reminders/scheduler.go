package reminders

import (
	"slices"
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback. *time.Timer satisfies it.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler is the clock and timer source of the Engine.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler uses the wall clock and time.AfterFunc. Timers due at the
// same instant run on separate goroutines in no particular order; the Engine
// delivers such reminders as one batch.
type SystemScheduler struct{}

func (SystemScheduler) Now() time.Time { return time.Now() }

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// VirtualScheduler is a manually advanced clock for deterministic tests.
// Callbacks run on the goroutine calling Advance, in due order.
type VirtualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*virtualTimer
}

type virtualTimer struct {
	s      *VirtualScheduler
	at     time.Time
	seq    int
	f      func()
	active bool
}

// NewVirtualScheduler returns a scheduler whose clock starts at start.
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{now: start}
}

func (s *VirtualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *VirtualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &virtualTimer{s: s, at: s.now.Add(d), seq: s.seq, f: f, active: true}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo moves the clock to t, running every callback due at or before t.
func (s *VirtualScheduler) AdvanceTo(t time.Time) {
	for {
		s.mu.Lock()
		next := s.nextDueLocked(t)
		if next == nil {
			if t.After(s.now) {
				s.now = t
			}
			s.mu.Unlock()
			return
		}
		next.active = false
		if next.at.After(s.now) {
			s.now = next.at
		}
		s.removeLocked(next)
		s.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *VirtualScheduler) nextDueLocked(limit time.Time) *virtualTimer {
	var next *virtualTimer
	for _, t := range s.timers {
		if t.at.After(limit) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *VirtualScheduler) removeLocked(t *virtualTimer) {
	s.timers = slices.DeleteFunc(s.timers, func(o *virtualTimer) bool { return o == t })
}

func (t *virtualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	t.s.removeLocked(t)
	return true
}
