//go:build integration

package accesslog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"custodia/internal/accesslog"
	"custodia/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *accesslog.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = accesslog.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.postgres.Pool.Close()
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "access_log")
	s.Require().NoError(err)
}

func newStoredEntry(controllerID, subjectID string, at time.Time) accesslog.AccessLogEntry {
	return accesslog.AccessLogEntry{
		ID:            uuid.NewString(),
		ControllerID:  controllerID,
		SubjectID:     subjectID,
		Action:        "read",
		Decision:      "PERMIT",
		Reason:        "action permitted by all covering policy groups",
		Purpose:       "customer relationship management",
		PolicyGroupID: "g1",
		PolicyVersion: 1,
		RequestTime:   at.UTC().Truncate(time.Microsecond),
		ClientIP:      "203.0.113.9",
		UserAgent:     "Firefox/131 (linux)",
	}
}

func (s *PostgresStoreSuite) TestAppendAndGetRoundTrip() {
	ctx := context.Background()
	entry := newStoredEntry("987654", "12345678901", time.Now())
	index := uint64(7)
	entry.BlockchainLogIndex = &index
	entry.BlockchainTxHash = "0xdeadbeef"

	s.Require().NoError(s.store.Append(ctx, entry))

	got, err := s.store.Get(ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(entry.Decision, got.Decision)
	s.Require().NotNil(got.BlockchainLogIndex)
	s.Equal(uint64(7), *got.BlockchainLogIndex)
	s.Equal("0xdeadbeef", got.BlockchainTxHash)
	s.True(entry.RequestTime.Equal(got.RequestTime))
}

func (s *PostgresStoreSuite) TestAppendWithoutAnchor() {
	ctx := context.Background()
	entry := newStoredEntry("987654", "12345678901", time.Now())

	s.Require().NoError(s.store.Append(ctx, entry))

	got, err := s.store.Get(ctx, entry.ID)
	s.Require().NoError(err)
	s.Nil(got.BlockchainLogIndex)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotent() {
	ctx := context.Background()
	entry := newStoredEntry("987654", "12345678901", time.Now())

	s.Require().NoError(s.store.Append(ctx, entry))
	s.Require().NoError(s.store.Append(ctx, entry), "replayed inserts are absorbed, not errors")

	entries, err := s.store.ListByController(ctx, "987654")
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PostgresStoreSuite) TestListOrdersNewestFirst() {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	oldest := newStoredEntry("987654", "12345678901", base)
	newest := newStoredEntry("987654", "12345678901", base.Add(30*time.Minute))
	s.Require().NoError(s.store.Append(ctx, oldest))
	s.Require().NoError(s.store.Append(ctx, newest))

	entries, err := s.store.ListByController(ctx, "987654")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(newest.ID, entries[0].ID)

	bySubject, err := s.store.ListBySubject(ctx, "12345678901")
	s.Require().NoError(err)
	s.Len(bySubject, 2)
}

func (s *PostgresStoreSuite) TestGetNotFound() {
	_, err := s.store.Get(context.Background(), uuid.NewString())
	s.Error(err)
}
