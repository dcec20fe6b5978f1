package events

import (
	"context"
	"sync"
)

// InMemoryStore keeps the event trail in memory for tests and single-node
// deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func caseKey(productIdentifier, caseIdentifier string) string {
	return productIdentifier + "." + caseIdentifier
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := caseKey(event.ProductIdentifier, event.CaseIdentifier)
	s.events[k] = append(s.events[k], event)
	return nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, productIdentifier, caseIdentifier string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[caseKey(productIdentifier, caseIdentifier)]...), nil
}
