package reminders

import (
	"time"

	"github.com/aretw0/introspection"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Pending   int        `json:"pending"`
	Delivered int        `json:"delivered"`
	NextDue   *time.Time `json:"next_due,omitempty"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := EngineState{
		Pending:   len(e.table.pending),
		Delivered: len(e.table.delivered),
	}
	if next, ok := e.table.NextDue(); ok {
		state.NextDue = &next
	}
	return state
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "reminder-engine"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
