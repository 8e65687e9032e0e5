//go:build integration

package digest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/store/digest"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *digest.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = digest.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestLastWhenEmpty() {
	_, err := s.store.Last(context.Background())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestRecordOverwrites() {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Record(ctx, digest.Record{Digest: "first", RunID: "r1", RecordedAt: at}))
	s.Require().NoError(s.store.Record(ctx, digest.Record{Digest: "second", RunID: "r2", RecordedAt: at.Add(time.Minute)}))

	rec, err := s.store.Last(ctx)
	s.Require().NoError(err)
	s.Equal("second", rec.Digest)
	s.Equal("r2", rec.RunID)
	s.True(rec.RecordedAt.Equal(at.Add(time.Minute)))
}

func (s *RedisStoreSuite) TestKeysAreIsolated() {
	ctx := context.Background()
	other := digest.NewRedis(s.redis.Client.Client, digest.WithKey("cpi:linkage:digest:other"))

	s.Require().NoError(s.store.Record(ctx, digest.Record{Digest: "main", RecordedAt: time.Now()}))

	_, err := other.Last(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
