package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Store manages sessions in Redis. A session maps an opaque id to a user id.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL is how long a new session lives.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create stores a new session for userID and returns its ID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// GetUserID returns the user the session belongs to.
func (s *Store) GetUserID(ctx context.Context, id string) (int64, error) {
	userID, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}
