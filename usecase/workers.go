package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/infrastructure/logger"
)

func entityTask(queue model.TaskKind, key string, profileID int64, remote any) (model.SyncTask, error) {
	raw, err := json.Marshal(remote)
	if err != nil {
		return model.SyncTask{}, err
	}
	return model.NewSyncTask(queue, key, model.EntitySyncPayload{ProfileID: profileID, Object: raw})
}

func deleteTask(queue model.TaskKind, key string, payload model.DeleteCheckPayload) (model.SyncTask, error) {
	return model.NewSyncTask(queue, key, payload)
}

// clientSync is the per-profile discovery task: it enumerates remote players,
// custom fields, subscriptions and the video/playlist page counts, and emits
// one delete-detection probe per locally mirrored record.
func (o *SyncOrchestrator) clientSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.ClientSyncPayload](task)
	if err != nil {
		return nil, err
	}
	client, profile, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	var out []model.SyncTask

	remotePlayers, err := client.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	for _, p := range remotePlayers {
		t, err := entityTask(model.TaskPlayerSync, p.ID, profile.ID, p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	localPlayers, err := o.players.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range localPlayers {
		t, err := deleteTask(model.TaskPlayerDelete, p.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: p.ID, RemoteID: p.RemoteID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	fieldList, err := client.GetCustomFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("get custom fields: %w", err)
	}
	if fieldList.MaxCustomFields != profile.MaxCustomFields {
		profile.MaxCustomFields = fieldList.MaxCustomFields
		if err := o.profiles.Save(ctx, profile); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed persisting custom-field limit")
		}
	}
	for _, f := range fieldList.Fields {
		t, err := entityTask(model.TaskCustomFieldSync, f.ID, profile.ID, f)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	localFields, err := o.fields.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range localFields {
		t, err := deleteTask(model.TaskCustomFieldDelete, f.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: f.ID, RemoteID: f.RemoteID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	videoCount, err := client.CountVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	for offset := 0; offset < videoCount; offset += o.opts.PageSize {
		t, err := model.NewSyncTask(model.TaskVideoPageSync,
			fmt.Sprintf("%d:%d", profile.ID, offset),
			model.PageSyncPayload{ProfileID: profile.ID, Offset: offset, Limit: o.opts.PageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	localVideos, err := o.videos.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	videoRemoteByID := make(map[int64]string, len(localVideos))
	for _, v := range localVideos {
		videoRemoteByID[v.ID] = v.RemoteID
		t, err := deleteTask(model.TaskVideoDelete, v.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: v.ID, RemoteID: v.RemoteID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	localTracks, err := o.tracks.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, tr := range localTracks {
		if tr.RemoteID == "" {
			// Placeholder awaiting ingestion; the callback owns its fate.
			continue
		}
		t, err := deleteTask(model.TaskCaptionTrackDel, tr.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: tr.ID, RemoteID: tr.RemoteID,
			VideoRemoteID: videoRemoteByID[tr.VideoID],
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	playlistCount, err := client.CountPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("count playlists: %w", err)
	}
	for offset := 0; offset < playlistCount; offset += o.opts.PageSize {
		t, err := model.NewSyncTask(model.TaskPlaylistPageSync,
			fmt.Sprintf("%d:%d", profile.ID, offset),
			model.PageSyncPayload{ProfileID: profile.ID, Offset: offset, Limit: o.opts.PageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	localPlaylists, err := o.playlists.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range localPlaylists {
		t, err := deleteTask(model.TaskPlaylistDelete, p.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: p.ID, RemoteID: p.RemoteID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	remoteSubs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	for _, s := range remoteSubs {
		t, err := entityTask(model.TaskSubscriptionSync, s.ID, profile.ID, s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	localSubs, err := o.subs.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range localSubs {
		if s.RemoteID == "" || s.RemoteID == model.DefaultSubscriptionRemoteID {
			continue
		}
		t, err := deleteTask(model.TaskSubscriptionDel, s.RemoteID, model.DeleteCheckPayload{
			ProfileID: profile.ID, LocalID: s.ID, RemoteID: s.RemoteID,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func (o *SyncOrchestrator) videoPageSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.PageSyncPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	videos, err := client.ListVideos(ctx, payload.Offset, payload.Limit)
	if err != nil {
		return nil, fmt.Errorf("list videos page %d: %w", payload.Offset, err)
	}
	var out []model.SyncTask
	for _, v := range videos {
		t, err := entityTask(model.TaskVideoSync, v.ID, payload.ProfileID, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// videoSync reconciles one remote video and fans out its caption tracks,
// which can only be processed once the video exists locally.
func (o *SyncOrchestrator) videoSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.EntitySyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemoteVideo
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote video: %v", err)}
	}
	if _, err := o.reconciler.ReconcileVideo(ctx, &remote, payload.ProfileID); err != nil {
		return nil, err
	}
	var out []model.SyncTask
	for _, track := range remote.TextTracks {
		raw, err := json.Marshal(track)
		if err != nil {
			return nil, err
		}
		t, err := model.NewSyncTask(model.TaskCaptionTrackSync, track.ID, model.CaptionSyncPayload{
			ProfileID: payload.ProfileID, VideoRemoteID: remote.ID, Object: raw,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (o *SyncOrchestrator) playlistPageSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.PageSyncPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	playlists, err := client.ListPlaylists(ctx, payload.Offset, payload.Limit)
	if err != nil {
		return nil, fmt.Errorf("list playlists page %d: %w", payload.Offset, err)
	}
	var out []model.SyncTask
	for _, p := range playlists {
		t, err := entityTask(model.TaskPlaylistSync, p.ID, payload.ProfileID, p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (o *SyncOrchestrator) playlistSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.EntitySyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemotePlaylist
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote playlist: %v", err)}
	}
	_, err = o.reconciler.ReconcilePlaylist(ctx, &remote, payload.ProfileID)
	return nil, err
}

func (o *SyncOrchestrator) playerSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.EntitySyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemotePlayer
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote player: %v", err)}
	}
	_, err = o.reconciler.ReconcilePlayer(ctx, &remote, payload.ProfileID)
	return nil, err
}

func (o *SyncOrchestrator) customFieldSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.EntitySyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemoteCustomField
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote custom field: %v", err)}
	}
	_, err = o.reconciler.ReconcileCustomField(ctx, &remote, payload.ProfileID)
	return nil, err
}

func (o *SyncOrchestrator) captionTrackSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.CaptionSyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemoteTextTrack
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote text track: %v", err)}
	}
	_, err = o.reconciler.ReconcileCaptionTrack(ctx, &remote, payload.VideoRemoteID, payload.ProfileID)
	return nil, err
}

func (o *SyncOrchestrator) subscriptionSync(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.EntitySyncPayload](task)
	if err != nil {
		return nil, err
	}
	var remote dto.RemoteSubscription
	if err := json.Unmarshal(payload.Object, &remote); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("undecodable remote subscription: %v", err)}
	}
	_, err = o.reconciler.ReconcileSubscription(ctx, &remote, payload.ProfileID)
	return nil, err
}

func (o *SyncOrchestrator) videoDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckVideo(ctx, client, payload.LocalID, payload.RemoteID)
}

func (o *SyncOrchestrator) playlistDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckPlaylist(ctx, client, payload.LocalID, payload.RemoteID)
}

func (o *SyncOrchestrator) playerDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckPlayer(ctx, client, payload.LocalID, payload.RemoteID)
}

func (o *SyncOrchestrator) customFieldDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckCustomField(ctx, client, payload.LocalID, payload.RemoteID)
}

func (o *SyncOrchestrator) captionTrackDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckCaptionTrack(ctx, client, payload.LocalID, payload.RemoteID, payload.VideoRemoteID)
}

func (o *SyncOrchestrator) subscriptionDelete(ctx context.Context, task *model.SyncTask) ([]model.SyncTask, error) {
	payload, err := decodePayload[model.DeleteCheckPayload](task)
	if err != nil {
		return nil, err
	}
	client, _, err := o.clientFor(ctx, payload.ProfileID)
	if err != nil {
		return nil, err
	}
	return nil, o.deletes.CheckSubscription(ctx, client, payload.ProfileID, payload.LocalID, payload.RemoteID)
}
