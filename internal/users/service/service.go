// Package service implements the Users read path: cache-aside over the
// relational store with PII encrypted everywhere except the response.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"librisync/internal/audit"
	"librisync/internal/platform/config"
	"librisync/internal/users/cache"
	"librisync/internal/users/metrics"
	"librisync/internal/users/models"
	"librisync/internal/users/store"
	"librisync/pkg/sentinel"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec de/encrypts PII fields. The platform crypto codec satisfies it.
type Codec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// Service serves user reads. The cache is consulted first; the relational
// store is the source of truth on a miss. Nothing here writes users, and
// nothing invalidates cache keys: staleness is bounded only by the TTL.
type Service struct {
	store   store.Store
	cache   cache.Cache
	codec   Codec
	audit   audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs the users service.
func New(st store.Store, c cache.Cache, codec Codec, auditPub audit.Publisher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("codec is required")
	}
	return &Service{
		store:   st,
		cache:   c,
		codec:   codec,
		audit:   auditPub,
		logger:  logger,
		metrics: m,
	}, nil
}

// GetUser returns one user with the email decrypted. A decryption failure
// anywhere is fatal to the read; partially-decrypted data is never returned.
func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	key := cache.UserKey(userID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		s.metrics.CacheHit()
		var user models.User
		if uerr := jsonCodec.UnmarshalFromString(cached, &user); uerr != nil {
			return nil, fmt.Errorf("decode cached user %d: %w", userID, uerr)
		}
		email, derr := s.codec.Decrypt(user.Email)
		if derr != nil {
			return nil, fmt.Errorf("cached user %d: %w", userID, derr)
		}
		user.Email = email
		return &user, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		// A failing cache only degrades the read path; fall through to the
		// store.
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	s.metrics.CacheMiss()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.codec.Decrypt(user.Email)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	s.cacheUser(ctx, key, *user)
	audit.Info(ctx, s.audit, fmt.Sprintf("User %d retrieved successfully", userID))

	user.Email = plaintext
	return user, nil
}

// ListUsers returns all users with emails decrypted, cached as one
// collection entry under users:all.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	if cached, err := s.cache.Get(ctx, cache.AllUsersKey); err == nil {
		s.metrics.CacheHit()
		var users []models.User
		if uerr := jsonCodec.UnmarshalFromString(cached, &users); uerr != nil {
			return nil, fmt.Errorf("decode cached users: %w", uerr)
		}
		return s.decryptAll(users)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "cache read failed", "key", cache.AllUsersKey, "error", err)
	}
	s.metrics.CacheMiss()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheUsers(ctx, users)

	return s.decryptAll(users)
}

// cacheUser stores a snapshot with the email still encrypted. Cache write
// failures degrade to an uncached read, they never fail the request.
func (s *Service) cacheUser(ctx context.Context, key string, snapshot models.User) {
	value, err := jsonCodec.MarshalToString(snapshot)
	if err != nil {
		s.logger.WarnContext(ctx, "encode user snapshot", "key", key, "error", err)
		return
	}
	if err := s.cache.SetEx(ctx, key, value, config.UserCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *Service) cacheUsers(ctx context.Context, snapshots []models.User) {
	value, err := jsonCodec.MarshalToString(snapshots)
	if err != nil {
		s.logger.WarnContext(ctx, "encode users snapshot", "error", err)
		return
	}
	if err := s.cache.SetEx(ctx, cache.AllUsersKey, value, config.UserCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", cache.AllUsersKey, "error", err)
	}
}

func (s *Service) decryptAll(users []models.User) ([]models.User, error) {
	out := make([]models.User, len(users))
	for i, u := range users {
		email, err := s.codec.Decrypt(u.Email)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", u.ID, err)
		}
		u.Email = email
		out[i] = u
	}
	return out, nil
}
