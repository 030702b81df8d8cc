//go:build integration

package verifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	platformredis "custodia/internal/platform/redis"
	"custodia/internal/verifier"
	"custodia/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *verifier.Cache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())

	client, err := platformredis.New(context.Background(), s.redis.URL)
	s.Require().NoError(err)
	s.cache = verifier.NewCache(client, time.Minute)
}

func (s *CacheSuite) TearDownSuite() {
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(context.Background())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestSetAndGetRoundTrip() {
	ctx := context.Background()
	result := verifier.VerificationResult{
		EntryID:    "entry-1",
		Verified:   true,
		Mismatches: []verifier.Mismatch{},
		VerifiedAt: time.Now().UTC().Truncate(time.Second),
	}

	s.cache.Set(ctx, result)

	got, ok := s.cache.Get(ctx, "entry-1")
	s.Require().True(ok)
	s.Equal(result.EntryID, got.EntryID)
	s.True(got.Verified)
}

func (s *CacheSuite) TestMissReturnsFalse() {
	_, ok := s.cache.Get(context.Background(), "never-verified")
	s.False(ok)
}

func (s *CacheSuite) TestTamperedResultCached() {
	ctx := context.Background()
	result := verifier.VerificationResult{
		EntryID: "entry-2",
		Mismatches: []verifier.Mismatch{
			{Field: "permitted", Stored: "false", OnChain: "true"},
		},
	}

	s.cache.Set(ctx, result)

	got, ok := s.cache.Get(ctx, "entry-2")
	s.Require().True(ok)
	s.True(got.Tampered())
}

func (s *CacheSuite) TestNilCacheIsInert() {
	var nilCache *verifier.Cache
	nilCache.Set(context.Background(), verifier.VerificationResult{EntryID: "x"})
	_, ok := nilCache.Get(context.Background(), "x")
	s.False(ok)
}
