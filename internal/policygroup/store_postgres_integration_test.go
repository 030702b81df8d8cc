//go:build integration

package policygroup_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"custodia/internal/policygroup"
	"custodia/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *policygroup.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = policygroup.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.postgres.Pool.Close()
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "data_assignments", "policy_groups")
	s.Require().NoError(err)
}

func newStoredGroup(subjectID string) policygroup.PolicyGroup {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return policygroup.PolicyGroup{
		ID:           uuid.NewString(),
		SubjectID:    subjectID,
		Name:         "group " + uuid.NewString(),
		Permissions:  map[policygroup.Action]bool{policygroup.ActionRead: true},
		Prohibitions: map[policygroup.Action]bool{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestSaveAndGetRoundTrip() {
	ctx := context.Background()
	group := newStoredGroup("12345678901")
	group.Constraints.Purpose = "marketing"
	exp := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	group.Constraints.Expiration = &exp
	group.Constraints.RequiresNotification = true
	group.AIRestrictions.Algorithm = "none"

	s.Require().NoError(s.store.Save(ctx, group))

	got, err := s.store.Get(ctx, "12345678901", group.ID)
	s.Require().NoError(err)
	s.Equal(group.Name, got.Name)
	s.Equal(group.Permissions, got.Permissions)
	s.Equal("marketing", got.Constraints.Purpose)
	s.Require().NotNil(got.Constraints.Expiration)
	s.True(exp.Equal(*got.Constraints.Expiration))
	s.True(got.Constraints.RequiresNotification)
}

func (s *PostgresStoreSuite) TestGetEnforcesOwnership() {
	ctx := context.Background()
	group := newStoredGroup("12345678901")
	s.Require().NoError(s.store.Save(ctx, group))

	_, err := s.store.Get(ctx, "99988877766", group.ID)
	s.Error(err)
}

func (s *PostgresStoreSuite) TestConcurrentAssignNeverLosesItems() {
	ctx := context.Background()
	group := newStoredGroup("12345678901")
	s.Require().NoError(s.store.Save(ctx, group))

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Everyone merges the same two shared items plus one of their own.
			assignments := []policygroup.DataAssignment{
				{Source: "crm", Item: policygroup.DataItem{Property: "email"}},
				{Source: "crm", Item: policygroup.DataItem{Property: "phone"}},
				{Source: "crm", Item: policygroup.DataItem{Property: "field-" + uuid.NewString()}},
			}
			s.NoError(s.store.AddAssignments(ctx, group.ID, assignments))
		}(i)
	}
	wg.Wait()

	got, err := s.store.ListAssignments(ctx, group.ID)
	s.Require().NoError(err)
	s.Len(got, goroutines+2, "shared items deduplicate, private items all land")
}

func (s *PostgresStoreSuite) TestFindCoveringMatchesCaseInsensitively() {
	ctx := context.Background()
	group := newStoredGroup("12345678901")
	s.Require().NoError(s.store.Save(ctx, group))
	s.Require().NoError(s.store.AddAssignments(ctx, group.ID, []policygroup.DataAssignment{
		{Source: "CRM", Item: policygroup.DataItem{Property: "Email"}},
	}))

	covering, err := s.store.FindCovering(ctx, "12345678901", "crm", policygroup.DataItem{Property: "email"})
	s.Require().NoError(err)
	s.Require().Len(covering, 1)
	s.Equal(group.ID, covering[0].ID)

	protected, err := s.store.IsProtected(ctx, "12345678901", "crm", policygroup.DataItem{Property: "email"})
	s.Require().NoError(err)
	s.True(protected)
}

func (s *PostgresStoreSuite) TestDeleteCascadesAssignments() {
	ctx := context.Background()
	group := newStoredGroup("12345678901")
	s.Require().NoError(s.store.Save(ctx, group))
	s.Require().NoError(s.store.AddAssignments(ctx, group.ID, []policygroup.DataAssignment{
		{Source: "crm", Item: policygroup.DataItem{Property: "email"}},
	}))

	s.Require().NoError(s.store.Delete(ctx, "12345678901", group.ID))

	protected, err := s.store.IsProtected(ctx, "12345678901", "crm", policygroup.DataItem{Property: "email"})
	s.Require().NoError(err)
	s.False(protected)
}

func (s *PostgresStoreSuite) TestUpdateNotFound() {
	ctx := context.Background()
	ghost := newStoredGroup("12345678901")
	s.Error(s.store.Update(ctx, ghost))
	s.Error(s.store.Delete(ctx, "12345678901", ghost.ID))
}
