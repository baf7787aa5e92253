// Package cache provides the redis-backed expiring key/value registry and
// the process-wide ingestion semaphore.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewCache connects a redis client and verifies it with a ping.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// KeyValueStore implements repository.IKeyValueStore over redis with TTLs.
type KeyValueStore struct {
	client *redis.Client
	prefix string
}

func NewKeyValueStore(client *redis.Client, prefix string) *KeyValueStore {
	return &KeyValueStore{client: client, prefix: prefix}
}

func (s *KeyValueStore) key(k string) string { return s.prefix + ":" + k }

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// semaphoreTTL caps how long an abandoned request can hold the ingestion
// flag before redis expires it.
const semaphoreTTL = 10 * time.Minute

// SemaphoreStore implements repository.ISemaphoreStore with an atomic SET NX,
// so two pollers can never both observe the flag as free and proceed.
type SemaphoreStore struct {
	client *redis.Client
}

func NewSemaphoreStore(client *redis.Client) *SemaphoreStore {
	return &SemaphoreStore{client: client}
}

func (s *SemaphoreStore) TryAcquire(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, key, "1", semaphoreTTL).Result()
}

func (s *SemaphoreStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
