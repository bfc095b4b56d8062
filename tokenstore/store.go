// Package tokenstore persists the access/refresh credential pair in Redis.
//
// The pair lives under two independent keys but is treated as
// all-or-nothing: Save and Clear go through MULTI/EXEC pipelines, and Load
// reports a half-present pair as no session at all. Token contents are
// opaque; nothing here validates them.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps Redis failures so callers can distinguish storage
// trouble from an absent session.
var ErrUnavailable = errors.New("token storage unavailable")

// Store is a Redis-backed credential pair holder. Writes survive restarts.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a store namespaced by prefix.
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{redis: rdb, prefix: prefix}
}

func (s *Store) accessKey() string  { return s.prefix + ":access" }
func (s *Store) refreshKey() string { return s.prefix + ":refresh" }

// Save persists both halves of the pair in one transaction.
func (s *Store) Save(ctx context.Context, access, refresh string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey(), access, 0)
		pipe.Set(ctx, s.refreshKey(), refresh, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SaveAccess overwrites only the access half, leaving refresh untouched.
func (s *Store) SaveAccess(ctx context.Context, access string) error {
	if err := s.redis.Set(ctx, s.accessKey(), access, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load returns the stored pair. Both strings empty with a nil error means no
// session; a pair with either half missing is reported the same way, so a
// corrupted half-write can never look like a live session.
func (s *Store) Load(ctx context.Context) (string, string, error) {
	vals, err := s.redis.MGet(ctx, s.accessKey(), s.refreshKey()).Result()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	access, okA := vals[0].(string)
	refresh, okR := vals[1].(string)
	if !okA || !okR || access == "" || refresh == "" {
		return "", "", nil
	}
	return access, refresh, nil
}

// Clear removes both halves in a single DEL; a reader never observes one
// half surviving the other because of a Clear.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.accessKey(), s.refreshKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
