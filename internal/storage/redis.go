package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/liamwears/moviefinder/internal/database"
)

const redisKeyPrefix = "moviefinder:collection:"

// RedisStorage stores values as plain redis strings without expiry
type RedisStorage struct {
	client *database.RedisClient
}

// NewRedisStorage creates a redis backend
func NewRedisStorage(client *database.RedisClient) *RedisStorage {
	return &RedisStorage{client: client}
}

// Get reads the value stored under key
func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

// Set writes the value stored under key
func (s *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Health pings redis
func (s *RedisStorage) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}
