package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/crm-service/internal/domain"
)

const slotKey = "crm:session"

// RedisSlot persists the session slot in Redis so it survives restarts.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot builds a Redis-backed slot. A zero ttl means the session
// only ends on explicit logout.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (s *RedisSlot) Current(ctx context.Context) (*domain.User, error) {
	raw, err := s.client.Get(ctx, slotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisSlot) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return s.Clear(ctx)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, slotKey, raw, s.ttl).Err()
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	return s.client.Del(ctx, slotKey).Err()
}
