package policygroup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "custodia/pkg/domainerrors"
)

// Service owns the policy group lifecycle. It validates input, keeps the
// version counter honest, and serializes mutation per group so concurrent
// edits and assignment merges never interleave.
type Service struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// groupLock returns the mutex serializing mutation for one group.
func (s *Service) groupLock(groupID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[groupID] = lock
	}
	return lock
}

// CreateInput carries the caller-editable fields of a policy group.
type CreateInput struct {
	Name           string
	Description    string
	Permissions    map[Action]bool
	Prohibitions   map[Action]bool
	Constraints    Constraints
	AIRestrictions AIRestrictions
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "policy group name must not be empty")
	}
	for action := range in.Permissions {
		if !KnownAction(action) {
			return dErrors.New(dErrors.CodeValidation, "unknown action in permissions: "+string(action))
		}
	}
	for action := range in.Prohibitions {
		if !KnownAction(action) {
			return dErrors.New(dErrors.CodeValidation, "unknown action in prohibitions: "+string(action))
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, subjectID string, in CreateInput) (PolicyGroup, error) {
	if err := in.validate(); err != nil {
		return PolicyGroup{}, err
	}

	now := time.Now().UTC()
	group := PolicyGroup{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		Name:           in.Name,
		Description:    in.Description,
		Permissions:    in.Permissions,
		Prohibitions:   in.Prohibitions,
		Constraints:    in.Constraints,
		AIRestrictions: in.AIRestrictions,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if group.Permissions == nil {
		group.Permissions = map[Action]bool{}
	}
	if group.Prohibitions == nil {
		group.Prohibitions = map[Action]bool{}
	}

	if err := s.store.Save(ctx, group); err != nil {
		return PolicyGroup{}, fmt.Errorf("save policy group: %w", err)
	}
	return group, nil
}

func (s *Service) Get(ctx context.Context, subjectID, groupID string) (PolicyGroup, error) {
	return s.store.Get(ctx, subjectID, groupID)
}

func (s *Service) List(ctx context.Context, subjectID string) ([]PolicyGroup, error) {
	return s.store.ListBySubject(ctx, subjectID)
}

// Update replaces the caller-editable fields and bumps the version counter.
// Already-issued decisions keep citing the version in force when they were
// made; only future evaluations see the new revision.
func (s *Service) Update(ctx context.Context, subjectID, groupID string, in CreateInput) (PolicyGroup, error) {
	if err := in.validate(); err != nil {
		return PolicyGroup{}, err
	}

	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	group, err := s.store.Get(ctx, subjectID, groupID)
	if err != nil {
		return PolicyGroup{}, err
	}

	group.Name = in.Name
	group.Description = in.Description
	group.Permissions = in.Permissions
	group.Prohibitions = in.Prohibitions
	group.Constraints = in.Constraints
	group.AIRestrictions = in.AIRestrictions
	group.Version++
	group.UpdatedAt = time.Now().UTC()
	if group.Permissions == nil {
		group.Permissions = map[Action]bool{}
	}
	if group.Prohibitions == nil {
		group.Prohibitions = map[Action]bool{}
	}

	if err := s.store.Update(ctx, group); err != nil {
		return PolicyGroup{}, fmt.Errorf("update policy group: %w", err)
	}
	return group, nil
}

// Delete removes the group and its assignments. Historical log entries keep
// referencing the deleted group ID as fact.
func (s *Service) Delete(ctx context.Context, subjectID, groupID string) error {
	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	return s.store.Delete(ctx, subjectID, groupID)
}

// Assign merges the given assignments into the group. The merge is additive
// and deduplicating: re-assigning an item is a no-op and previously assigned
// items are always preserved.
func (s *Service) Assign(ctx context.Context, subjectID, groupID string, assignments []DataAssignment) error {
	if len(assignments) == 0 {
		return dErrors.New(dErrors.CodeValidation, "assignments must not be empty")
	}
	for _, a := range assignments {
		if err := validateAssignment(a); err != nil {
			return err
		}
	}

	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	// Ownership check before touching assignments.
	if _, err := s.store.Get(ctx, subjectID, groupID); err != nil {
		return err
	}
	return s.store.AddAssignments(ctx, groupID, assignments)
}

// AssignAllUnprotected merges only the assignments whose target item has no
// covering group yet. Items already under any policy group are skipped, not
// re-bound.
func (s *Service) AssignAllUnprotected(ctx context.Context, subjectID, groupID string, assignments []DataAssignment) (int, error) {
	for _, a := range assignments {
		if err := validateAssignment(a); err != nil {
			return 0, err
		}
	}

	lock := s.groupLock(groupID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.Get(ctx, subjectID, groupID); err != nil {
		return 0, err
	}

	var unprotected []DataAssignment
	for _, a := range assignments {
		protected, err := s.store.IsProtected(ctx, subjectID, a.Source, a.Item)
		if err != nil {
			return 0, fmt.Errorf("check protection: %w", err)
		}
		if !protected {
			unprotected = append(unprotected, a)
		}
	}
	if len(unprotected) == 0 {
		return 0, nil
	}
	if err := s.store.AddAssignments(ctx, groupID, unprotected); err != nil {
		return 0, err
	}
	return len(unprotected), nil
}

// ListAssignments returns the group's assignments after an ownership check.
func (s *Service) ListAssignments(ctx context.Context, subjectID, groupID string) ([]DataAssignment, error) {
	if _, err := s.store.Get(ctx, subjectID, groupID); err != nil {
		return nil, err
	}
	return s.store.ListAssignments(ctx, groupID)
}

// ResolveCovering returns consistent snapshots of every group covering
// {source, item} for the subject. The evaluator treats the result as
// immutable input.
func (s *Service) ResolveCovering(ctx context.Context, subjectID, source string, item DataItem) ([]PolicyGroup, error) {
	return s.store.FindCovering(ctx, subjectID, source, item)
}

func validateAssignment(a DataAssignment) error {
	if strings.TrimSpace(a.Source) == "" {
		return dErrors.New(dErrors.CodeValidation, "assignment source must not be empty")
	}
	hasProperty := a.Item.Property != ""
	hasEntity := a.Item.TableName != "" && a.Item.RecordID != ""
	if hasProperty == hasEntity {
		return dErrors.New(dErrors.CodeValidation, "assignment item must be a property or an entity record, not both or neither")
	}
	return nil
}
