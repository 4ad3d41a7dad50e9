package audit

import (
	"context"
	"sync"
)

// InMemorySink keeps events in memory for development and tests.
type InMemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByEmail returns events for a registrant, oldest first.
func (s *InMemorySink) ListByEmail(_ context.Context, email string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, event := range s.events {
		if event.Email == email {
			out = append(out, event)
		}
	}
	return out, nil
}

// ListAll returns every recorded event, oldest first.
func (s *InMemorySink) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}
