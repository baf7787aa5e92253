package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskKind names one queue. Workers drain queues in the order of SyncQueueOrder.
type TaskKind string

const (
	TaskClientSync        TaskKind = "client_sync"
	TaskPlayerSync        TaskKind = "player_sync"
	TaskPlayerDelete      TaskKind = "player_delete"
	TaskCustomFieldSync   TaskKind = "custom_field_sync"
	TaskCustomFieldDelete TaskKind = "custom_field_delete"
	TaskVideoPageSync     TaskKind = "video_page_sync"
	TaskVideoSync         TaskKind = "video_sync"
	TaskCaptionTrackSync  TaskKind = "caption_track_sync"
	TaskCaptionTrackDel   TaskKind = "caption_track_delete"
	TaskVideoDelete       TaskKind = "video_delete"
	TaskPlaylistPageSync  TaskKind = "playlist_page_sync"
	TaskPlaylistSync      TaskKind = "playlist_sync"
	TaskPlaylistDelete    TaskKind = "playlist_delete"
	TaskSubscriptionSync  TaskKind = "subscription_sync"
	TaskSubscriptionDel   TaskKind = "subscription_delete"
)

// SyncQueueOrder is the drain order of a sync run. The edges that matter:
// ClientSync discovers everything else; sync queues run before their delete
// queues; CustomFieldSync precedes VideoSync (field validation); VideoSync
// precedes caption-track queues and VideoDelete; VideoDelete precedes
// PlaylistDelete so a playlist referencing a vanished video retries instead
// of silently dropping the reference.
var SyncQueueOrder = []TaskKind{
	TaskClientSync,
	TaskPlayerSync,
	TaskPlayerDelete,
	TaskCustomFieldSync,
	TaskCustomFieldDelete,
	TaskVideoPageSync,
	TaskVideoSync,
	TaskCaptionTrackSync,
	TaskCaptionTrackDel,
	TaskVideoDelete,
	TaskPlaylistPageSync,
	TaskPlaylistSync,
	TaskPlaylistDelete,
	TaskSubscriptionSync,
	TaskSubscriptionDel,
}

// SyncTask is one queue item. IdempotencyKey dedupes pending enqueues so
// at-least-once delivery of a parent task cannot multiply children.
type SyncTask struct {
	ID             int64           `json:"id"`
	Queue          TaskKind        `json:"queue"`
	IdempotencyKey string          `json:"idempotency_key"`
	Payload        json.RawMessage `json:"payload"`
	Attempts       int             `json:"attempts"`
	LeasedUntil    *time.Time      `json:"leased_until"`
	Created        time.Time       `json:"created"`
}

// NewSyncTask marshals payload and derives the idempotency key from the
// queue plus the supplied discriminator (usually the remote id).
func NewSyncTask(queue TaskKind, key string, payload any) (SyncTask, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SyncTask{}, fmt.Errorf("marshal %s payload: %w", queue, err)
	}
	return SyncTask{
		Queue:          queue,
		IdempotencyKey: fmt.Sprintf("%s:%s", queue, key),
		Payload:        raw,
	}, nil
}

// ClientSyncPayload drives the per-profile discovery task.
type ClientSyncPayload struct {
	ProfileID int64 `json:"profile_id"`
}

// PageSyncPayload drives one page of a remote listing.
type PageSyncPayload struct {
	ProfileID int64 `json:"profile_id"`
	Offset    int   `json:"offset"`
	Limit     int   `json:"limit"`
}

// EntitySyncPayload carries a decoded remote object to its typed worker.
// Object holds the kind-specific remote DTO.
type EntitySyncPayload struct {
	ProfileID int64           `json:"profile_id"`
	Object    json.RawMessage `json:"object"`
}

// CaptionSyncPayload carries a remote text track together with the remote id
// of its parent video, which must already exist locally.
type CaptionSyncPayload struct {
	ProfileID     int64           `json:"profile_id"`
	VideoRemoteID string          `json:"video_remote_id"`
	Object        json.RawMessage `json:"object"`
}

// DeleteCheckPayload drives a delete-detection probe for one local record.
type DeleteCheckPayload struct {
	ProfileID int64  `json:"profile_id"`
	LocalID   int64  `json:"local_id"`
	RemoteID  string `json:"remote_id"`
	// VideoRemoteID is set for caption tracks, whose existence is probed
	// through their parent video.
	VideoRemoteID string `json:"video_remote_id,omitempty"`
}
