package policygroup

import (
	"context"
	"sync"

	dErrors "custodia/pkg/domainerrors"
)

// InMemoryStore keeps policy groups and assignments in maps. One mutex
// serializes all mutation, which trivially satisfies the per-group
// serialization requirement; reads hand out clones.
type InMemoryStore struct {
	mu          sync.RWMutex
	groups      map[string]PolicyGroup       // groupID → group
	assignments map[string][]DataAssignment  // groupID → ordered assignments
	assigned    map[string]map[string]string // groupID → assignment key → key (dedupe set)
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		groups:      make(map[string]PolicyGroup),
		assignments: make(map[string][]DataAssignment),
		assigned:    make(map[string]map[string]string),
	}
}

func (s *InMemoryStore) Save(_ context.Context, group PolicyGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "policy group already exists")
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subjectID, groupID string) (PolicyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok || group.SubjectID != subjectID {
		return PolicyGroup{}, dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	return group.Clone(), nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID string) ([]PolicyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PolicyGroup
	for _, group := range s.groups {
		if group.SubjectID == subjectID {
			out = append(out, group.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, group PolicyGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.groups[group.ID]
	if !ok || existing.SubjectID != group.SubjectID {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, subjectID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok || group.SubjectID != subjectID {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	delete(s.groups, groupID)
	delete(s.assignments, groupID)
	delete(s.assigned, groupID)
	return nil
}

func (s *InMemoryStore) AddAssignments(_ context.Context, groupID string, assignments []DataAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}

	keys := s.assigned[groupID]
	if keys == nil {
		keys = make(map[string]string)
		s.assigned[groupID] = keys
	}
	for _, a := range assignments {
		a.PolicyGroupID = groupID
		key := a.Key()
		if _, dup := keys[key]; dup {
			continue
		}
		keys[key] = key
		s.assignments[groupID] = append(s.assignments[groupID], a)
	}
	return nil
}

func (s *InMemoryStore) ListAssignments(_ context.Context, groupID string) ([]DataAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]DataAssignment{}, s.assignments[groupID]...), nil
}

func (s *InMemoryStore) FindCovering(_ context.Context, subjectID, source string, item DataItem) ([]PolicyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := DataAssignment{Source: source, Item: item}.Key()

	var out []PolicyGroup
	for groupID, keys := range s.assigned {
		group, ok := s.groups[groupID]
		if !ok || group.SubjectID != subjectID {
			continue
		}
		if _, covered := keys[target]; covered {
			out = append(out, group.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryStore) IsProtected(ctx context.Context, subjectID, source string, item DataItem) (bool, error) {
	covering, err := s.FindCovering(ctx, subjectID, source, item)
	if err != nil {
		return false, err
	}
	return len(covering) > 0, nil
}
