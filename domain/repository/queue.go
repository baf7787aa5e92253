package repository

import (
	"context"
	"time"

	"video-sync/domain/model"
)

// ITaskQueue is a named, lease-based queue with at-least-once delivery.
// Claim leases one item; Complete removes it; Release returns the lease so
// the item is redelivered. Enqueue is a no-op for a pending duplicate
// idempotency key.
type ITaskQueue interface {
	Enqueue(ctx context.Context, task model.SyncTask) error
	Claim(ctx context.Context, queue model.TaskKind, lease time.Duration) (*model.SyncTask, error)
	Complete(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
	Count(ctx context.Context, queue model.TaskKind) (int, error)
	Clear(ctx context.Context, queue model.TaskKind) error
}
