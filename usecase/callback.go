package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

// callbackSemaphoreKey guards video/asset mutation across concurrently
// delivered ingestion callbacks. One flag for the whole process.
const callbackSemaphoreKey = "semaphore:ingest-callback"

// ICallbackHandler processes ingestion completion notifications.
type ICallbackHandler interface {
	HandleIngestCallback(ctx context.Context, token string, payload *dto.IngestCallback) error
	HandleNotification(ctx context.Context, payload *dto.NotificationEvent) error
}

// CallbackHandler is the ingestion-callback state machine. The remote service
// may deliver callbacks more than once and concurrently; all mutation happens
// under the shared semaphore and every failure still answers the webhook.
type CallbackHandler struct {
	videos     repository.IVideoStore
	tracks     repository.ICaptionTrackStore
	profiles   repository.IProfileStore
	auth       IAuthenticator
	reconciler *Reconciler
	ingest     IIngestBuilder
	sem        repository.ISemaphoreStore

	acquireAttempts int
	sleep           func(time.Duration)
}

func NewCallbackHandler(
	videos repository.IVideoStore,
	tracks repository.ICaptionTrackStore,
	profiles repository.IProfileStore,
	auth IAuthenticator,
	reconciler *Reconciler,
	ingest IIngestBuilder,
	sem repository.ISemaphoreStore,
	acquireAttempts int,
) *CallbackHandler {
	if acquireAttempts <= 0 {
		acquireAttempts = 600
	}
	return &CallbackHandler{
		videos:          videos,
		tracks:          tracks,
		profiles:        profiles,
		auth:            auth,
		reconciler:      reconciler,
		ingest:          ingest,
		sem:             sem,
		acquireAttempts: acquireAttempts,
		sleep:           time.Sleep,
	}
}

// WithSleep overrides the acquire backoff sleep.
func (h *CallbackHandler) WithSleep(sleep func(time.Duration)) *CallbackHandler {
	h.sleep = sleep
	return h
}

// HandleIngestCallback validates and applies one ingestion notification.
// Every outcome, error included, must end in an HTTP 200 upstream; the
// returned error exists for logging only.
func (h *CallbackHandler) HandleIngestCallback(ctx context.Context, token string, payload *dto.IngestCallback) error {
	if payload.Status != dto.IngestStatusSuccess ||
		payload.Version != dto.IngestVersion ||
		payload.Action != dto.IngestActionCreate {
		return nil
	}
	videoID, ok := h.ingest.ResolveToken(ctx, token)
	if !ok {
		return nil
	}

	if !h.acquire(ctx) {
		logger.GetLogger().WithField("video_id", videoID).
			Warn("gave up acquiring ingest semaphore, dropping callback")
		return nil
	}
	defer func() {
		if err := h.sem.Release(ctx, callbackSemaphoreKey); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed releasing ingest semaphore")
		}
	}()

	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic applying ingest callback: %v", p)
			}
		}()
		err = h.apply(ctx, videoID, payload)
	}()
	if err != nil {
		logger.GetLogger().WithField("video_id", videoID).WithField("error", err).
			Error("failed applying ingest callback")
	}
	return err
}

// acquire polls the shared flag with a randomized backoff. It gives up after
// the attempt budget instead of waiting forever or proceeding unprotected.
func (h *CallbackHandler) acquire(ctx context.Context) bool {
	for i := 0; i < h.acquireAttempts; i++ {
		ok, err := h.sem.TryAcquire(ctx, callbackSemaphoreKey)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("semaphore acquire failed")
			return false
		}
		if ok {
			return true
		}
		h.sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)
	}
	return false
}

func (h *CallbackHandler) apply(ctx context.Context, videoID int64, payload *dto.IngestCallback) error {
	video, err := h.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return nil
	}
	profile, err := h.profiles.GetByID(ctx, video.ProfileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}
	client, err := h.auth.Authorize(ctx, profile)
	if err != nil {
		return err
	}

	switch payload.EntityType {
	case dto.IngestEntityTitle:
		// The remote master is authoritative now; drop the staged source.
		if video.VideoSourceURL != "" {
			video.VideoSourceURL = ""
			video.MarkDirty("video_source_url")
			if err := h.videos.Save(ctx, video); err != nil {
				return err
			}
		}
	case dto.IngestEntityAsset:
		if _, parseErr := uuid.Parse(payload.Entity); parseErr == nil {
			if err := h.applyCaptionAsset(ctx, client, video, payload.Entity); err != nil {
				return err
			}
		} else {
			if err := h.applyImageAsset(ctx, client, video, payload.Entity); err != nil {
				return err
			}
		}
	default:
		// Unknown entity type; just refresh the version marker below.
	}

	return h.refreshVersion(ctx, client, video)
}

// applyCaptionAsset replaces the local placeholder caption track with the
// freshly ingested remote one. At most one track is processed per callback.
func (h *CallbackHandler) applyCaptionAsset(ctx context.Context, client repository.IVideoCloud, video *model.Video, assetID string) error {
	tracks, err := h.tracks.ListByVideo(ctx, video.ID)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		if t.RemoteID != "" {
			continue
		}
		if err := h.tracks.Delete(ctx, t.ID); err != nil {
			return err
		}
		break
	}

	remote, err := client.GetVideo(ctx, video.RemoteID)
	if err != nil {
		return err
	}
	for _, rt := range remote.TextTracks {
		if rt.AssetID != assetID && rt.ID != assetID {
			continue
		}
		_, err := h.reconciler.ReconcileCaptionTrack(ctx, &rt, video.RemoteID, video.ProfileID)
		return err
	}
	return nil
}

// applyImageAsset probes whether the notified asset is the poster or the
// thumbnail. No type discriminator exists in the notification.
func (h *CallbackHandler) applyImageAsset(ctx context.Context, client repository.IVideoCloud, video *model.Video, assetID string) error {
	images, err := client.GetVideoImages(ctx, video.RemoteID)
	if err != nil {
		return err
	}
	changed := false
	if images.Poster != nil && images.Poster.AssetID == assetID {
		changed = h.reconciler.reconcileImage(ctx, video, "poster_image", &video.PosterImage, images.Poster)
	} else if images.Thumbnail != nil && images.Thumbnail.AssetID == assetID {
		changed = h.reconciler.reconcileImage(ctx, video, "thumbnail_image", &video.ThumbnailImage, images.Thumbnail)
	}
	if changed {
		return h.videos.Save(ctx, video)
	}
	return nil
}

// refreshVersion mirrors the remote updated_at onto the local record so the
// next reconciliation gate sees the post-ingest version.
func (h *CallbackHandler) refreshVersion(ctx context.Context, client repository.IVideoCloud, video *model.Video) error {
	remote, err := client.GetVideo(ctx, video.RemoteID)
	if err != nil {
		return err
	}
	if video.Changed.Equal(remote.UpdatedAt) {
		return nil
	}
	video.Changed = remote.UpdatedAt
	return h.videos.Save(ctx, video)
}

// HandleNotification applies a webhook change event by fetching and
// reconciling the single named video, bypassing the queue.
func (h *CallbackHandler) HandleNotification(ctx context.Context, payload *dto.NotificationEvent) error {
	if payload.Event != "video-change" || payload.Video == "" {
		return nil
	}
	profile, err := h.profiles.GetByAccountID(ctx, payload.AccountID)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}
	client, err := h.auth.Authorize(ctx, profile)
	if err != nil {
		return err
	}
	remote, err := client.GetVideo(ctx, payload.Video)
	if err != nil {
		if IsRemoteNotFound(err) {
			return nil
		}
		return err
	}
	_, err = h.reconciler.ReconcileVideo(ctx, remote, profile.ID)
	return err
}
