package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix   = "sess:"
	userIndexKeyPrefix = "user_sessions:"
)

// ErrSessionNotFound is returned when a session ID has no live record, either
// because it was terminated or because it expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the authority on which sessions are live. Unlike the read
// cache, its errors are surfaced: losing track of sessions is not something to
// fail silently over.
type SessionStore interface {
	// Save records a live session for the user with the given TTL.
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	// Get returns the user ID owning the session, or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (uint, error)
	// Delete terminates a session. Deleting an unknown session is a no-op.
	Delete(ctx context.Context, sessionID string) error
	// DeleteAllForUser terminates every session of a user except keepSessionID
	// (pass "" to terminate all of them).
	DeleteAllForUser(ctx context.Context, userID uint, keepSessionID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	key := sessionKeyPrefix + sessionID
	indexKey := userIndexKeyPrefix + strconv.FormatUint(uint64(userID), 10)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, userID, ttl)
	pipe.SAdd(ctx, indexKey, sessionID)
	// The index must outlive the longest-lived session it references, so its
	// TTL only ever moves forward: NX stamps a fresh index, GT extends an
	// existing one and leaves a longer TTL alone.
	pipe.ExpireNX(ctx, indexKey, ttl)
	pipe.ExpireGT(ctx, indexKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (uint, error) {
	key := sessionKeyPrefix + sessionID
	val, err := s.client.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	return uint(val), nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID

	// Look the owner up first so the user index can be pruned too. A missing
	// record means the session is already gone, which is fine.
	val, err := s.client.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	indexKey := userIndexKeyPrefix + strconv.FormatUint(val, 10)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, indexKey, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) DeleteAllForUser(ctx context.Context, userID uint, keepSessionID string) error {
	indexKey := userIndexKeyPrefix + strconv.FormatUint(uint64(userID), 10)

	sessionIDs, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range sessionIDs {
		if id == keepSessionID {
			continue
		}
		pipe.Del(ctx, sessionKeyPrefix+id)
		pipe.SRem(ctx, indexKey, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
