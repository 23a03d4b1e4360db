package core

import (
	"fmt"
	"slices"
	"time"
)

// Offset is a reminder preset relative to an event.
type Offset string

const (
	OffsetWeek   Offset = "week"
	OffsetDay    Offset = "day"
	OffsetEvent  Offset = "event"
	OffsetCustom Offset = "custom"
)

// Before returns how long before the event the offset fires.
func (o Offset) Before() (time.Duration, error) {
	switch o {
	case OffsetWeek:
		return 7 * 24 * time.Hour, nil
	case OffsetDay:
		return 24 * time.Hour, nil
	case OffsetEvent:
		return 0, nil
	default:
		return 0, fmt.Errorf("offset %q has no fixed duration", o)
	}
}

// ParseOffset validates an offset name.
func ParseOffset(s string) (Offset, error) {
	switch o := Offset(s); o {
	case OffsetWeek, OffsetDay, OffsetEvent, OffsetCustom:
		return o, nil
	default:
		return "", fmt.Errorf("unknown offset %q (want week, day, event or custom)", s)
	}
}

// PlanReminders turns a target instant and a set of presets into reminder
// instants. OffsetCustom uses custom, which is ignored when nil. Instants at
// or before now are dropped; the rest are returned sorted and deduplicated.
func PlanReminders(target time.Time, offsets []Offset, custom *time.Time, now time.Time) []time.Time {
	var out []time.Time
	for _, o := range offsets {
		var at time.Time
		if o == OffsetCustom {
			if custom == nil {
				continue
			}
			at = *custom
		} else {
			before, err := o.Before()
			if err != nil {
				continue
			}
			at = target.Add(-before)
		}
		if !at.After(now) {
			continue
		}
		out = append(out, at)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}
