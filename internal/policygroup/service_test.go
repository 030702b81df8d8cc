package policygroup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "custodia/pkg/domainerrors"
)

const subjectID = "12345678901"

func newTestService() *Service {
	return NewService(NewInMemoryStore())
}

func createGroup(t *testing.T, svc *Service, name string) PolicyGroup {
	t.Helper()
	group, err := svc.Create(context.Background(), subjectID, CreateInput{
		Name:        name,
		Permissions: map[Action]bool{ActionRead: true},
	})
	require.NoError(t, err)
	return group
}

func propertyAssignment(source, property string) DataAssignment {
	return DataAssignment{Source: source, Item: DataItem{Property: property}}
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService()

	group, err := svc.Create(context.Background(), subjectID, CreateInput{Name: "health data"})
	require.NoError(t, err)

	assert.NotEmpty(t, group.ID)
	assert.Equal(t, subjectID, group.SubjectID)
	assert.Equal(t, int64(1), group.Version)
	assert.NotNil(t, group.Permissions, "nil maps are normalized so lookups never panic")
	assert.NotNil(t, group.Prohibitions)
	assert.Equal(t, group.CreatedAt, group.UpdatedAt)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, subjectID, CreateInput{Name: "  "})
	assertValidation(t, err)

	_, err = svc.Create(ctx, subjectID, CreateInput{
		Name:        "bad actions",
		Permissions: map[Action]bool{"teleport": true},
	})
	assertValidation(t, err)

	_, err = svc.Create(ctx, subjectID, CreateInput{
		Name:         "bad prohibitions",
		Prohibitions: map[Action]bool{"teleport": true},
	})
	assertValidation(t, err)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var de dErrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, dErrors.CodeValidation, de.Code)
}

func TestUpdateBumpsVersion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "original")

	updated, err := svc.Update(ctx, subjectID, group.ID, CreateInput{
		Name:        "renamed",
		Permissions: map[Action]bool{ActionRead: true, ActionUse: true},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "renamed", updated.Name)
	assert.True(t, updated.UpdatedAt.After(group.UpdatedAt) || updated.UpdatedAt.Equal(group.UpdatedAt))
}

func TestGroupInvisibleToOtherSubjects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "private")

	_, err := svc.Get(ctx, "99988877766", group.ID)
	require.Error(t, err)
	var de dErrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, dErrors.CodeNotFound, de.Code, "other subjects see not-found, not forbidden")

	_, err = svc.Update(ctx, "99988877766", group.ID, CreateInput{Name: "hijack"})
	assert.Error(t, err)

	err = svc.Delete(ctx, "99988877766", group.ID)
	assert.Error(t, err)
}

func TestAssignIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "contact data")

	assignments := []DataAssignment{
		propertyAssignment("crm", "email"),
		propertyAssignment("crm", "phone"),
	}
	require.NoError(t, svc.Assign(ctx, subjectID, group.ID, assignments))

	// Re-assigning the same items is a no-op, case differences included.
	require.NoError(t, svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		propertyAssignment("CRM", "Email"),
	}))

	got, err := svc.ListAssignments(ctx, subjectID, group.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAssignMergePreservesExisting(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "contact data")

	require.NoError(t, svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
	}))
	require.NoError(t, svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
		propertyAssignment("billing", "iban"),
	}))

	got, err := svc.ListAssignments(ctx, subjectID, group.ID)
	require.NoError(t, err)
	require.Len(t, got, 2, "merge is additive, never replacing")
}

func TestAssignValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "g")

	err := svc.Assign(ctx, subjectID, group.ID, nil)
	assertValidation(t, err)

	err = svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		{Source: "", Item: DataItem{Property: "email"}},
	})
	assertValidation(t, err)

	// Neither property nor entity record.
	err = svc.Assign(ctx, subjectID, group.ID, []DataAssignment{{Source: "crm"}})
	assertValidation(t, err)

	// Both at once.
	err = svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		{Source: "crm", Item: DataItem{Property: "email", TableName: "orders", RecordID: "7"}},
	})
	assertValidation(t, err)
}

func TestAssignAllUnprotectedSkipsCoveredItems(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	strict := createGroup(t, svc, "strict")
	require.NoError(t, svc.Assign(ctx, subjectID, strict.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
	}))

	catchAll := createGroup(t, svc, "catch all")
	assigned, err := svc.AssignAllUnprotected(ctx, subjectID, catchAll.ID, []DataAssignment{
		propertyAssignment("crm", "email"), // already covered by strict
		propertyAssignment("crm", "phone"),
		propertyAssignment("billing", "iban"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, assigned)

	got, err := svc.ListAssignments(ctx, subjectID, catchAll.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.NotEqual(t, "property:email", a.Item.Key(), "covered items stay with their group")
	}
}

func TestResolveCovering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	g1 := createGroup(t, svc, "g1")
	g2 := createGroup(t, svc, "g2")
	require.NoError(t, svc.Assign(ctx, subjectID, g1.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
	}))
	require.NoError(t, svc.Assign(ctx, subjectID, g2.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
		{Source: "shop", Item: DataItem{TableName: "orders", RecordID: "42"}},
	}))

	covering, err := svc.ResolveCovering(ctx, subjectID, "crm", DataItem{Property: "email"})
	require.NoError(t, err)
	assert.Len(t, covering, 2, "every covering group participates in the decision")

	covering, err = svc.ResolveCovering(ctx, subjectID, "shop", DataItem{TableName: "Orders", RecordID: "42"})
	require.NoError(t, err)
	require.Len(t, covering, 1)
	assert.Equal(t, g2.ID, covering[0].ID)

	covering, err = svc.ResolveCovering(ctx, subjectID, "crm", DataItem{Property: "ssn"})
	require.NoError(t, err)
	assert.Empty(t, covering, "unassigned items have no covering group")
}

func TestDeleteRemovesAssignments(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	group := createGroup(t, svc, "doomed")

	require.NoError(t, svc.Assign(ctx, subjectID, group.ID, []DataAssignment{
		propertyAssignment("crm", "email"),
	}))
	require.NoError(t, svc.Delete(ctx, subjectID, group.ID))

	covering, err := svc.ResolveCovering(ctx, subjectID, "crm", DataItem{Property: "email"})
	require.NoError(t, err)
	assert.Empty(t, covering, "deleting the group releases its items")
}

func TestClonedSnapshotsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	group, err := svc.Create(ctx, subjectID, CreateInput{
		Name:        "snapshot",
		Permissions: map[Action]bool{ActionRead: true},
	})
	require.NoError(t, err)

	snapshot, err := svc.Get(ctx, subjectID, group.ID)
	require.NoError(t, err)
	snapshot.Permissions[ActionShare] = true

	fresh, err := svc.Get(ctx, subjectID, group.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Permissions[ActionShare], "mutating a snapshot never leaks into the store")
}
