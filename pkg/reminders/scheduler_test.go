package reminders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/onotes/pkg/reminders"
)

func TestVirtualScheduler(t *testing.T) {
	s := reminders.NewVirtualScheduler(t0)
	var fired []string

	s.AfterFunc(2*time.Minute, func() { fired = append(fired, "b") })
	s.AfterFunc(time.Minute, func() { fired = append(fired, "a") })
	s.AfterFunc(2*time.Minute, func() { fired = append(fired, "c") })
	stopped := s.AfterFunc(time.Minute, func() { fired = append(fired, "never") })

	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())
	assert.Equal(t, 3, s.Pending())

	s.Advance(90 * time.Second)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, t0.Add(90*time.Second), s.Now())

	s.Advance(time.Hour)
	assert.Equal(t, []string{"a", "b", "c"}, fired, "equal deadlines fire in scheduling order")
	assert.Zero(t, s.Pending())
}

func TestVirtualScheduler_CallbackSchedulesMore(t *testing.T) {
	s := reminders.NewVirtualScheduler(t0)
	var at []time.Time

	s.AfterFunc(time.Minute, func() {
		at = append(at, s.Now())
		s.AfterFunc(time.Minute, func() { at = append(at, s.Now()) })
	})

	s.Advance(5 * time.Minute)
	assert.Equal(t, []time.Time{t0.Add(time.Minute), t0.Add(2 * time.Minute)}, at)
}
