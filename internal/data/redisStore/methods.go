package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// ListPush appends to the tail; RPUSH is atomic, so concurrent appends for
// the same key never lose entries.
func (s *Store) ListPush(ctx context.Context, key string, value interface{}) error {
	return s.client.RPush(ctx, key, value).Err()
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

// ListGetAll returns the whole list in insertion (chronological) order.
// A missing key yields an empty slice.
func (s *Store) ListGetAll(ctx context.Context, key string) ([]string, error) {
	result, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	return result, err
}
