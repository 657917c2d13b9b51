//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	platformredis "librisync/internal/platform/redis"
	"librisync/pkg/sentinel"
)

type RedisCacheSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *platformredis.Client
	cache     *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	opts, err := goredis.ParseURL(url)
	s.Require().NoError(err)

	s.client = &platformredis.Client{Client: goredis.NewClient(opts)}
	s.Require().NoError(s.client.Health(ctx))

	s.cache = NewRedis(s.client)
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	_ = testcontainers.TerminateContainer(s.container)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisCacheSuite) TestSetAndGet() {
	ctx := context.Background()

	err := s.cache.SetEx(ctx, UserKey(5), `{"id":5,"name":"alice"}`, time.Minute)
	s.Require().NoError(err)

	val, err := s.cache.Get(ctx, UserKey(5))
	s.Require().NoError(err)
	s.Equal(`{"id":5,"name":"alice"}`, val)
}

func (s *RedisCacheSuite) TestMissingKey() {
	_, err := s.cache.Get(context.Background(), UserKey(404))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestExpiry() {
	ctx := context.Background()

	require.NoError(s.T(), s.cache.SetEx(ctx, "short", "v", time.Second))

	val, err := s.cache.Get(ctx, "short")
	s.Require().NoError(err)
	s.Equal("v", val)

	s.Require().Eventually(func() bool {
		_, err := s.cache.Get(ctx, "short")
		return err != nil
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisCacheSuite) TestCachedKeysCount() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetEx(ctx, UserKey(1), "a", time.Minute))
	s.Require().NoError(s.cache.SetEx(ctx, AllUsersKey, "b", time.Minute))

	n, err := s.client.CachedKeys(ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}
