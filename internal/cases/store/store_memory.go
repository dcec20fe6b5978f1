package store

import (
	"context"
	"sync"
	"time"

	"portfolio/internal/cases"
)

// InMemoryStore keeps case records in a process-local map, guarded for
// concurrent access across distinct cases.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]cases.Case
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]cases.Case)}
}

func key(productIdentifier, caseIdentifier string) string {
	return productIdentifier + "." + caseIdentifier
}

func (s *InMemoryStore) Create(_ context.Context, record cases.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(record.ProductIdentifier, record.Identifier)
	if _, exists := s.records[k]; exists {
		return ErrDuplicate
	}
	s.records[k] = record
	return nil
}

// Update writes parameters and modification stamps onto the stored record.
// Lifecycle state and creation stamps are untouched; a change applied after a
// command executed must not carry the submitter's stale state back in.
func (s *InMemoryStore) Update(_ context.Context, record cases.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(record.ProductIdentifier, record.Identifier)
	stored, exists := s.records[k]
	if !exists {
		return ErrNotFound
	}
	stored.Parameters = record.Parameters
	stored.LastModifiedBy = record.LastModifiedBy
	stored.LastModifiedOn = record.LastModifiedOn
	s.records[k] = stored
	return nil
}

func (s *InMemoryStore) UpdateState(_ context.Context, productIdentifier, caseIdentifier string,
	state cases.State, modifiedBy string, modifiedOn time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(productIdentifier, caseIdentifier)
	record, exists := s.records[k]
	if !exists {
		return ErrNotFound
	}
	record.CurrentState = state
	record.LastModifiedBy = modifiedBy
	record.LastModifiedOn = &modifiedOn
	s.records[k] = record
	return nil
}

func (s *InMemoryStore) FindByIdentifier(_ context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[key(productIdentifier, caseIdentifier)]
	if !exists {
		return nil, ErrNotFound
	}
	copied := record
	return &copied, nil
}

func (s *InMemoryStore) FindAllForProduct(_ context.Context, productIdentifier string, includeClosed bool) ([]cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []cases.Case
	for _, record := range s.records {
		if record.ProductIdentifier != productIdentifier {
			continue
		}
		if !includeClosed && record.CurrentState == cases.StateClosed {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}
