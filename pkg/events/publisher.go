package events

import (
	"context"
	"sync"

	"bookcatalog/pkg/domain"
)

// Publisher emits catalog change events after a mutation has been committed.
type Publisher interface {
	Publish(ctx context.Context, event domain.BookEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.BookEvent) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// Recorder keeps published events in memory. Used in tests and for local runs.
type Recorder struct {
	mu     sync.Mutex
	events []domain.BookEvent
}

func (r *Recorder) Publish(_ context.Context, event domain.BookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.BookEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BookEvent(nil), r.events...)
}
