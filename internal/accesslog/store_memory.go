package accesslog

import (
	"context"
	"sync"

	dErrors "custodia/pkg/domainerrors"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries []AccessLogEntry
	byID    map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]int)}
}

func (s *InMemoryStore) Append(_ context.Context, entry AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[entry.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "log entry already exists")
	}
	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, entryID string) (AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[entryID]
	if !ok {
		return AccessLogEntry{}, dErrors.New(dErrors.CodeNotFound, "log entry not found")
	}
	return s.entries[idx], nil
}

func (s *InMemoryStore) ListByController(_ context.Context, controllerID string) ([]AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AccessLogEntry
	for _, e := range s.entries {
		if e.ControllerID == controllerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID string) ([]AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AccessLogEntry
	for _, e := range s.entries {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out, nil
}
