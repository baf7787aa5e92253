package usecase

import (
	"context"
	"time"

	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

// DeleteChecker probes the remote service for records still mirrored locally.
// A remote 404 deletes the local record; every other error propagates
// unchanged so the queue's retry policy classifies it.
type DeleteChecker struct {
	videos    repository.IVideoStore
	playlists repository.IPlaylistStore
	players   repository.IPlayerStore
	fields    repository.ICustomFieldStore
	tracks    repository.ICaptionTrackStore
	subs      repository.ISubscriptionStore
}

func NewDeleteChecker(
	videos repository.IVideoStore,
	playlists repository.IPlaylistStore,
	players repository.IPlayerStore,
	fields repository.ICustomFieldStore,
	tracks repository.ICaptionTrackStore,
	subs repository.ISubscriptionStore,
) *DeleteChecker {
	return &DeleteChecker{
		videos:    videos,
		playlists: playlists,
		players:   players,
		fields:    fields,
		tracks:    tracks,
		subs:      subs,
	}
}

func (d *DeleteChecker) CheckVideo(ctx context.Context, client repository.IVideoCloud, localID int64, remoteID string) error {
	if _, err := client.GetVideo(ctx, remoteID); err != nil {
		if IsRemoteNotFound(err) {
			logger.GetLogger().WithField("remote_id", remoteID).Info("video gone remotely, deleting local record")
			return d.videos.Delete(ctx, localID)
		}
		return err
	}
	return nil
}

func (d *DeleteChecker) CheckPlaylist(ctx context.Context, client repository.IVideoCloud, localID int64, remoteID string) error {
	if _, err := client.GetPlaylist(ctx, remoteID); err != nil {
		if IsRemoteNotFound(err) {
			return d.playlists.Delete(ctx, localID)
		}
		return err
	}
	return nil
}

func (d *DeleteChecker) CheckPlayer(ctx context.Context, client repository.IVideoCloud, localID int64, remoteID string) error {
	if _, err := client.GetPlayer(ctx, remoteID); err != nil {
		if IsRemoteNotFound(err) {
			return d.players.Delete(ctx, localID)
		}
		return err
	}
	return nil
}

// CheckCustomField probes the field schema; there is no per-field remote get,
// so absence from the schema counts as not found.
func (d *DeleteChecker) CheckCustomField(ctx context.Context, client repository.IVideoCloud, localID int64, remoteID string) error {
	list, err := client.GetCustomFields(ctx)
	if err != nil {
		if IsRemoteNotFound(err) {
			return d.fields.Delete(ctx, localID)
		}
		return err
	}
	for _, f := range list.Fields {
		if f.ID == remoteID {
			return nil
		}
	}
	return d.fields.Delete(ctx, localID)
}

// CheckCaptionTrack probes through the parent video: a vanished video or a
// track missing from its text-track list deletes the local track.
func (d *DeleteChecker) CheckCaptionTrack(ctx context.Context, client repository.IVideoCloud, localID int64, remoteID, videoRemoteID string) error {
	video, err := client.GetVideo(ctx, videoRemoteID)
	if err != nil {
		if IsRemoteNotFound(err) {
			return d.tracks.Delete(ctx, localID)
		}
		return err
	}
	for _, t := range video.TextTracks {
		if t.ID == remoteID {
			return nil
		}
	}
	return d.tracks.Delete(ctx, localID)
}

// CheckSubscription deletes a vanished subscription, except the permanent
// default one, which is reset to an inactive placeholder instead.
func (d *DeleteChecker) CheckSubscription(ctx context.Context, client repository.IVideoCloud, profileID, localID int64, remoteID string) error {
	if _, err := client.GetSubscription(ctx, remoteID); err != nil {
		if !IsRemoteNotFound(err) {
			return err
		}
		sub, err := d.subs.GetByRemoteID(ctx, profileID, remoteID)
		if err != nil {
			return err
		}
		if sub == nil || !sub.Default {
			return d.subs.Delete(ctx, localID)
		}
		sub.RemoteID = model.DefaultSubscriptionRemoteID
		sub.Active = false
		sub.Changed = time.Now().UTC()
		return d.subs.Save(ctx, sub)
	}
	return nil
}
