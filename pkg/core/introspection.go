package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Hydrated        bool   `json:"hydrated"`
	Notes           int    `json:"notes"`
	Reminders       int    `json:"reminders"`
	Subscribers     int    `json:"subscribers"`
	EventBufferSize int    `json:"event_buffer_size"`
	RepositoryType  string `json:"repository_type"`
	Format          string `json:"format"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	state := StoreState{
		Hydrated:        s.hydrated,
		Notes:           len(s.snap.Notes),
		Reminders:       len(s.snap.Reminders),
		EventBufferSize: s.eventBufferSize,
		RepositoryType:  "unknown",
		Format:          s.codec.Name(),
	}
	for _, n := range s.snap.Notes {
		state.Reminders += len(n.Reminders)
	}
	s.mu.RUnlock()

	if s.repo != nil {
		state.RepositoryType = "repository"
		// Try to get component type if repository implements introspection.Component
		if comp, ok := s.repo.(introspection.Component); ok {
			state.RepositoryType = comp.ComponentType()
		}
	}

	s.subMu.Lock()
	state.Subscribers = len(s.subs)
	s.subMu.Unlock()

	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
