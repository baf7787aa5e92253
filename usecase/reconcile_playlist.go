package usecase

import (
	"context"

	"video-sync/domain/dto"
	"video-sync/domain/model"
)

// ReconcilePlaylist creates or updates the local mirror of one remote
// playlist. Video references are resolved against already-synced local
// videos; a missing one raises DependencyMissingError so the task is
// redelivered after the video's own sync has run.
func (r *Reconciler) ReconcilePlaylist(ctx context.Context, remote *dto.RemotePlaylist, profileID int64) (*model.Playlist, error) {
	playlist, err := r.playlists.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	isNew := playlist == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create playlist without an owning credential profile"}
		}
		playlist = &model.Playlist{
			RemoteID:  remote.ID,
			ProfileID: profileID,
			Created:   remote.CreatedAt,
		}
	} else if !needsUpdate(playlist.Changed, remote.UpdatedAt) {
		return playlist, nil
	}

	localIDs := make([]int64, 0, len(remote.VideoIDs))
	for _, remoteVideoID := range remote.VideoIDs {
		video, err := r.videos.GetByRemoteID(ctx, profileID, remoteVideoID)
		if err != nil {
			return nil, err
		}
		if video == nil {
			return nil, &DependencyMissingError{Kind: "video", RemoteID: remoteVideoID}
		}
		localIDs = append(localIDs, video.ID)
	}

	table := []fieldChange{
		{"name", func() bool { return assign(&playlist.Name, remote.Name) }},
		{"description", func() bool { return assign(&playlist.Description, remote.Description) }},
		{"reference_id", func() bool { return assign(&playlist.ReferenceID, remote.ReferenceID) }},
		{"type", func() bool { return assign(&playlist.Type, remote.Type) }},
		{"search", func() bool { return assign(&playlist.Search, remote.Search) }},
		{"player_id", func() bool { return assign(&playlist.PlayerID, remote.PlayerID) }},
		{"published", func() bool { return assign(&playlist.Published, true) }},
		{"video_remote_ids", func() bool { return assignSlice(&playlist.VideoRemoteIDs, remote.VideoIDs) }},
		{"video_ids", func() bool { return assignSlice(&playlist.VideoIDs, localIDs) }},
	}
	applyFieldTable(playlist, table)

	playlist.Changed = remote.UpdatedAt
	if err := r.playlists.Save(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}
