package persistence

import (
	"context"
	"database/sql"
	"time"

	"video-sync/domain/model"
)

// TaskQueue is the Postgres-backed lease queue. Claim uses SKIP LOCKED so
// overlapping cron runs never hand the same item to two workers; an expired
// lease makes the item claimable again (at-least-once delivery).
type TaskQueue struct{ db *sql.DB }

func NewTaskQueue(db *sql.DB) *TaskQueue { return &TaskQueue{db: db} }

func (q *TaskQueue) Enqueue(ctx context.Context, task model.SyncTask) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO sync_task (queue, idempotency_key, payload, created)
		 VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (queue, idempotency_key) DO NOTHING`,
		string(task.Queue), task.IdempotencyKey, []byte(task.Payload))
	return err
}

func (q *TaskQueue) Claim(ctx context.Context, queue model.TaskKind, lease time.Duration) (*model.SyncTask, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE sync_task SET leased_until=NOW()+$2::interval, attempts=attempts+1
		 WHERE id = (
			SELECT id FROM sync_task
			WHERE queue=$1 AND (leased_until IS NULL OR leased_until < NOW())
			ORDER BY id LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, queue, idempotency_key, payload, attempts, leased_until, created`,
		string(queue), lease.String())

	task := &model.SyncTask{}
	var leasedUntil sql.NullTime
	var payload []byte
	err := row.Scan(&task.ID, &task.Queue, &task.IdempotencyKey, &payload, &task.Attempts, &leasedUntil, &task.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	task.Payload = payload
	if leasedUntil.Valid {
		t := leasedUntil.Time
		task.LeasedUntil = &t
	}
	return task, nil
}

func (q *TaskQueue) Complete(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sync_task WHERE id=$1`, id)
	return err
}

func (q *TaskQueue) Release(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE sync_task SET leased_until=NULL WHERE id=$1`, id)
	return err
}

func (q *TaskQueue) Count(ctx context.Context, queue model.TaskKind) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sync_task WHERE queue=$1`, string(queue)).Scan(&n)
	return n, err
}

func (q *TaskQueue) Clear(ctx context.Context, queue model.TaskKind) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sync_task WHERE queue=$1`, string(queue))
	return err
}
