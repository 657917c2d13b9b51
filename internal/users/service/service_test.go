package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"librisync/internal/audit"
	"librisync/internal/platform/crypto"
	"librisync/internal/platform/logger"
	"librisync/internal/users/cache"
	"librisync/internal/users/metrics"
	"librisync/internal/users/models"
	"librisync/internal/users/store"
	"librisync/pkg/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	codec   *crypto.Codec
	store   *store.MemoryStore
	cache   *cache.MemoryCache
	now     time.Time
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	s.Require().NoError(err)
	s.codec, err = crypto.NewCodec(base64.StdEncoding.EncodeToString(key))
	s.Require().NoError(err)

	// Rows carry encrypted emails, like the relational store does.
	aliceEmail, err := s.codec.Encrypt("alice@example.com")
	s.Require().NoError(err)
	bobEmail, err := s.codec.Encrypt("bob@example.com")
	s.Require().NoError(err)

	s.store = store.NewMemory(
		models.User{ID: 5, Name: "alice", Email: aliceEmail},
		models.User{ID: 6, Name: "bob", Email: bobEmail},
	)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.cache = cache.NewMemory(cache.WithClock(func() time.Time { return s.now }))

	s.service, err = New(s.store, s.cache, s.codec, audit.NewRecorder(), logger.New("test"), metrics.New())
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestGetUser() {
	ctx := context.Background()

	s.Run("miss reads store, decrypts, and populates cache", func() {
		user, err := s.service.GetUser(ctx, 5)
		s.Require().NoError(err)
		s.Equal("alice", user.Name)
		s.Equal("alice@example.com", user.Email)
		s.Equal(int64(1), s.store.GetCalls())

		cached, err := s.cache.Get(ctx, cache.UserKey(5))
		s.Require().NoError(err)
		s.NotContains(cached, "alice@example.com", "cached snapshot keeps the email encrypted")
	})

	s.Run("second read within the TTL skips the store", func() {
		s.now = s.now.Add(4 * time.Minute)

		user, err := s.service.GetUser(ctx, 5)
		s.Require().NoError(err)
		s.Equal("alice@example.com", user.Email)
		s.Equal(int64(1), s.store.GetCalls(), "served from cache")
	})

	s.Run("read after the TTL falls back to the store", func() {
		s.now = s.now.Add(10 * time.Minute)

		user, err := s.service.GetUser(ctx, 5)
		s.Require().NoError(err)
		s.Equal("alice@example.com", user.Email)
		s.Equal(int64(2), s.store.GetCalls())
	})

	s.Run("unknown user returns not found", func() {
		_, err := s.service.GetUser(ctx, 999)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestGetUser_DecryptionFailureIsFatal() {
	ctx := context.Background()

	broken := store.NewMemory(models.User{ID: 7, Name: "mallory", Email: "not-a-token"})
	svc, err := New(broken, cache.NewMemory(), s.codec, audit.NewRecorder(), logger.New("test"), metrics.New())
	s.Require().NoError(err)

	_, err = svc.GetUser(ctx, 7)
	s.Require().ErrorIs(err, crypto.ErrDecrypt, "never return partially-decrypted data")
}

func (s *ServiceSuite) TestListUsers() {
	ctx := context.Background()

	s.Run("returns all users decrypted and caches one entry", func() {
		users, err := s.service.ListUsers(ctx)
		s.Require().NoError(err)
		s.Require().Len(users, 2)
		s.Equal("alice@example.com", users[0].Email)
		s.Equal("bob@example.com", users[1].Email)

		cached, err := s.cache.Get(ctx, cache.AllUsersKey)
		s.Require().NoError(err)
		s.NotContains(cached, "@example.com", "collection snapshot keeps emails encrypted")
	})

	s.Run("second list is served from cache", func() {
		_, err := s.service.ListUsers(ctx)
		s.Require().NoError(err)
		s.Equal(int64(1), s.store.ListCalls())
	})
}
