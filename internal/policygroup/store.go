package policygroup

import "context"

// Store persists policy groups and their data assignments. Implementations
// must serialize mutation per group so concurrent edits never produce a
// corrupted merge, and must return copies from read methods so callers hold
// consistent snapshots.
type Store interface {
	Save(ctx context.Context, group PolicyGroup) error
	Get(ctx context.Context, subjectID, groupID string) (PolicyGroup, error)
	ListBySubject(ctx context.Context, subjectID string) ([]PolicyGroup, error)
	Update(ctx context.Context, group PolicyGroup) error
	Delete(ctx context.Context, subjectID, groupID string) error

	// AddAssignments merges assignments into the group additively:
	// duplicates are no-ops and existing assignments are preserved.
	AddAssignments(ctx context.Context, groupID string, assignments []DataAssignment) error
	ListAssignments(ctx context.Context, groupID string) ([]DataAssignment, error)

	// FindCovering returns snapshots of every group of the subject whose
	// assignments cover {source, item}.
	FindCovering(ctx context.Context, subjectID, source string, item DataItem) ([]PolicyGroup, error)

	// IsProtected reports whether {source, item} has at least one assignment
	// among the subject's groups.
	IsProtected(ctx context.Context, subjectID, source string, item DataItem) (bool, error)
}
