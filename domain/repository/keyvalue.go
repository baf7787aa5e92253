package repository

import (
	"context"
	"time"
)

// IKeyValueStore is an expiring key/value registry (token cache, ingest tokens).
type IKeyValueStore interface {
	// Get returns (value, true, nil) on a hit and ("", false, nil) on a miss
	// or an expired key.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ISemaphoreStore is the process-wide ingestion flag shared across requests.
// TryAcquire atomically sets the flag and reports whether this caller won it.
type ISemaphoreStore interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
