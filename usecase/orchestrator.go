package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

// RunReport is returned to the batch driver so it can decide whether to
// re-invoke Run for the remaining depth.
type RunReport struct {
	Remaining    map[model.TaskKind]int `json:"remaining"`
	Processed    int                    `json:"processed"`
	FullyHandled bool                   `json:"fully_handled"`
}

// ISyncOrchestrator drives the ordered queue pipeline.
type ISyncOrchestrator interface {
	Run(ctx context.Context) (*RunReport, error)
	EnqueueClientSyncs(ctx context.Context) (int, error)
	Status(ctx context.Context) (map[model.TaskKind]int, error)
	Clear(ctx context.Context) error
}

// workerFunc consumes one task and returns its follow-up tasks; only the
// orchestrator enqueues, keeping workers free of queue side effects.
type workerFunc func(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error)

// Options tunes the per-invocation budgets.
type Options struct {
	// Budget caps items per queue per Run so one invocation stays bounded.
	Budget   int
	PageSize int
	Lease    time.Duration
}

// SyncOrchestrator drains the named queues in dependency order. Delivery is
// at-least-once: a failed item keeps its row and is redelivered after its
// lease expires, except 401s and configuration errors, which retrying cannot
// fix.
type SyncOrchestrator struct {
	queue      repository.ITaskQueue
	profiles   repository.IProfileStore
	auth       IAuthenticator
	reconciler *Reconciler
	deletes    *DeleteChecker

	videos    repository.IVideoStore
	playlists repository.IPlaylistStore
	players   repository.IPlayerStore
	fields    repository.ICustomFieldStore
	tracks    repository.ICaptionTrackStore
	subs      repository.ISubscriptionStore

	opts    Options
	workers map[model.TaskKind]workerFunc
}

func NewSyncOrchestrator(
	queue repository.ITaskQueue,
	profiles repository.IProfileStore,
	auth IAuthenticator,
	reconciler *Reconciler,
	deletes *DeleteChecker,
	videos repository.IVideoStore,
	playlists repository.IPlaylistStore,
	players repository.IPlayerStore,
	fields repository.ICustomFieldStore,
	tracks repository.ICaptionTrackStore,
	subs repository.ISubscriptionStore,
	opts Options,
) *SyncOrchestrator {
	if opts.Budget <= 0 {
		opts.Budget = 5
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Lease <= 0 {
		opts.Lease = 2 * time.Minute
	}
	o := &SyncOrchestrator{
		queue:      queue,
		profiles:   profiles,
		auth:       auth,
		reconciler: reconciler,
		deletes:    deletes,
		videos:     videos,
		playlists:  playlists,
		players:    players,
		fields:     fields,
		tracks:     tracks,
		subs:       subs,
		opts:       opts,
	}
	o.workers = map[model.TaskKind]workerFunc{
		model.TaskClientSync:        o.clientSync,
		model.TaskPlayerSync:        o.playerSync,
		model.TaskPlayerDelete:      o.playerDelete,
		model.TaskCustomFieldSync:   o.customFieldSync,
		model.TaskCustomFieldDelete: o.customFieldDelete,
		model.TaskVideoPageSync:     o.videoPageSync,
		model.TaskVideoSync:         o.videoSync,
		model.TaskCaptionTrackSync:  o.captionTrackSync,
		model.TaskCaptionTrackDel:   o.captionTrackDelete,
		model.TaskVideoDelete:       o.videoDelete,
		model.TaskPlaylistPageSync:  o.playlistPageSync,
		model.TaskPlaylistSync:      o.playlistSync,
		model.TaskPlaylistDelete:    o.playlistDelete,
		model.TaskSubscriptionSync:  o.subscriptionSync,
		model.TaskSubscriptionDel:   o.subscriptionDelete,
	}
	return o
}

// EnqueueClientSyncs seeds one discovery task per credential profile.
func (o *SyncOrchestrator) EnqueueClientSyncs(ctx context.Context) (int, error) {
	profiles, err := o.profiles.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range profiles {
		task, err := model.NewSyncTask(model.TaskClientSync, fmt.Sprint(p.ID), model.ClientSyncPayload{ProfileID: p.ID})
		if err != nil {
			return 0, err
		}
		if err := o.queue.Enqueue(ctx, task); err != nil {
			return 0, err
		}
	}
	return len(profiles), nil
}

// Run drains every queue in SyncQueueOrder, bounded per queue by the budget.
func (o *SyncOrchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{Remaining: map[model.TaskKind]int{}, FullyHandled: true}
	for _, kind := range model.SyncQueueOrder {
		processed, handled := o.drain(ctx, kind)
		report.Processed += processed
		if !handled {
			report.FullyHandled = false
		}
	}
	for _, kind := range model.SyncQueueOrder {
		n, err := o.queue.Count(ctx, kind)
		if err != nil {
			return report, err
		}
		if n > 0 {
			report.Remaining[kind] = n
			report.FullyHandled = false
		}
	}
	return report, nil
}

// drain processes up to Budget items of one queue. It stops early on the
// first retryable failure so the caller re-schedules instead of spinning.
func (o *SyncOrchestrator) drain(ctx context.Context, kind model.TaskKind) (int, bool) {
	worker := o.workers[kind]
	processed := 0
	for i := 0; i < o.opts.Budget; i++ {
		task, err := o.queue.Claim(ctx, kind, o.opts.Lease)
		if err != nil {
			logger.GetLogger().WithField("queue", kind).WithField("error", err).Error("claim failed")
			return processed, false
		}
		if task == nil {
			return processed, true
		}

		followUps, err := worker(ctx, task)
		switch {
		case err == nil:
			for _, f := range followUps {
				if enqErr := o.queue.Enqueue(ctx, f); enqErr != nil {
					logger.GetLogger().WithField("error", enqErr).Error("failed enqueueing follow-up task")
				}
			}
			if err := o.queue.Complete(ctx, task.ID); err != nil {
				logger.GetLogger().WithField("error", err).Error("failed completing task")
			}
			processed++

		case IsRemoteUnauthorized(err), isAuthenticationError(err):
			// The credential is broken, not the item; requeueing would loop.
			logger.GetLogger().WithField("queue", kind).WithField("error", err).
				Error("dropping task after authorization failure")
			_ = o.queue.Complete(ctx, task.ID)
			processed++

		case IsConfigurationError(err):
			logger.GetLogger().WithField("queue", kind).WithField("error", err).
				Error("dropping task after configuration error")
			_ = o.queue.Complete(ctx, task.ID)
			processed++

		default:
			logger.GetLogger().WithField("queue", kind).WithField("error", err).
				Warn("releasing task for redelivery")
			_ = o.queue.Release(ctx, task.ID)
			return processed, false
		}
	}
	return processed, true
}

func (o *SyncOrchestrator) Status(ctx context.Context) (map[model.TaskKind]int, error) {
	out := map[model.TaskKind]int{}
	for _, kind := range model.SyncQueueOrder {
		n, err := o.queue.Count(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}

func (o *SyncOrchestrator) Clear(ctx context.Context) error {
	for _, kind := range model.SyncQueueOrder {
		if err := o.queue.Clear(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

func isAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

func (o *SyncOrchestrator) clientFor(ctx context.Context, profileID int64) (repository.IVideoCloud, *model.CredentialProfile, error) {
	profile, err := o.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, &ConfigurationError{Message: fmt.Sprintf("credential profile %d not found", profileID)}
	}
	client, err := o.auth.Authorize(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	return client, profile, nil
}

func decodePayload[T any](task *model.SyncTask) (*T, error) {
	var payload T
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable %s payload: %v", task.Queue, err)}
	}
	return &payload, nil
}
