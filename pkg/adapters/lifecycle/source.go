package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"
)

type bridge[E lifecycle.Event] struct {
	events <-chan E
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source from a typed event channel, such as
// core.Store.Watch or notify.Log.Watch. The source closes its output when
// the input closes or the context passed to Start is cancelled.
func NewSource[E lifecycle.Event](events <-chan E) lifecycle.Source {
	return &bridge[E]{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *bridge[E]) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *bridge[E]) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
