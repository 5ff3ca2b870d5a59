package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetTokenNotFound signals an unknown or expired reset token.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenStore holds short-lived password reset tokens.
type ResetTokenStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

const resetKeyPrefix = "crm:reset:"

// redisResetTokenStore keeps tokens in Redis with a TTL.
type redisResetTokenStore struct {
	client *redis.Client
}

// NewRedisResetTokenStore builds a Redis-backed token store.
func NewRedisResetTokenStore(client *redis.Client) ResetTokenStore {
	return &redisResetTokenStore{client: client}
}

func (s *redisResetTokenStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err()
}

func (s *redisResetTokenStore) Get(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrResetTokenNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *redisResetTokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, resetKeyPrefix+token).Err()
}

// memoryResetTokenStore backs tests and DSN-less development.
type memoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetEntry
}

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryResetTokenStore builds an in-memory token store.
func NewMemoryResetTokenStore() ResetTokenStore {
	return &memoryResetTokenStore{tokens: make(map[string]resetEntry)}
}

func (s *memoryResetTokenStore) Put(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryResetTokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return "", ErrResetTokenNotFound
	}
	return entry.userID, nil
}

func (s *memoryResetTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
