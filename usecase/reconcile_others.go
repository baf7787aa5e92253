package usecase

import (
	"context"
	"time"

	"video-sync/domain/dto"
	"video-sync/domain/model"
)

// ReconcilePlayer creates or updates the local mirror of one remote player.
func (r *Reconciler) ReconcilePlayer(ctx context.Context, remote *dto.RemotePlayer, profileID int64) (*model.Player, error) {
	player, err := r.players.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	isNew := player == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create player without an owning credential profile"}
		}
		player = &model.Player{
			RemoteID:  remote.ID,
			ProfileID: profileID,
			Created:   remote.CreatedAt,
		}
	} else if !needsUpdate(player.Changed, remote.UpdatedAt) {
		return player, nil
	}

	applyFieldTable(player, []fieldChange{
		{"name", func() bool { return assign(&player.Name, remote.Name) }},
		{"description", func() bool { return assign(&player.Description, remote.Description) }},
		{"embed_code", func() bool { return assign(&player.EmbedCode, remote.EmbedCode) }},
		{"url", func() bool { return assign(&player.URL, withScheme(remote.URL)) }},
	})

	player.Changed = remote.UpdatedAt
	if err := r.players.Save(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// ReconcileCustomField creates or updates one custom-field definition.
func (r *Reconciler) ReconcileCustomField(ctx context.Context, remote *dto.RemoteCustomField, profileID int64) (*model.CustomField, error) {
	field, err := r.fields.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	isNew := field == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create custom field without an owning credential profile"}
		}
		field = &model.CustomField{
			RemoteID:  remote.ID,
			ProfileID: profileID,
			Created:   remote.CreatedAt,
		}
	} else if !remote.UpdatedAt.IsZero() && !needsUpdate(field.Changed, remote.UpdatedAt) {
		return field, nil
	}

	changed := applyFieldTable(field, []fieldChange{
		{"name", func() bool { return assign(&field.Name, remote.ID) }},
		{"display_name", func() bool { return assign(&field.DisplayName, remote.DisplayName) }},
		{"description", func() bool { return assign(&field.Description, remote.Description) }},
		{"type", func() bool { return assign(&field.Type, remote.Type) }},
		{"required", func() bool { return assign(&field.Required, remote.Required) }},
		{"enum_values", func() bool { return assignSlice(&field.EnumValues, remote.EnumValues) }},
	})
	if !changed && !isNew {
		return field, nil
	}

	if !remote.UpdatedAt.IsZero() {
		field.Changed = remote.UpdatedAt
	} else {
		field.Changed = time.Now().UTC()
	}
	if err := r.fields.Save(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

// ReconcileCaptionTrack creates or updates one caption track. The parent
// video must already be synced; otherwise the task retries later.
func (r *Reconciler) ReconcileCaptionTrack(ctx context.Context, remote *dto.RemoteTextTrack, videoRemoteID string, profileID int64) (*model.CaptionTrack, error) {
	video, err := r.videos.GetByRemoteID(ctx, profileID, videoRemoteID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, &DependencyMissingError{Kind: "video", RemoteID: videoRemoteID}
	}

	track, err := r.tracks.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	isNew := track == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create caption track without an owning credential profile"}
		}
		track = &model.CaptionTrack{
			RemoteID:  remote.ID,
			VideoID:   video.ID,
			ProfileID: profileID,
			Created:   time.Now().UTC(),
		}
	}

	changed := applyFieldTable(track, []fieldChange{
		{"source_url", func() bool { return assign(&track.SourceURL, withScheme(remote.Src)) }},
		{"src_lang", func() bool { return assign(&track.SrcLang, remote.SrcLang) }},
		{"label", func() bool { return assign(&track.Label, remote.Label) }},
		{"kind", func() bool { return assign(&track.Kind, remote.Kind) }},
		{"default", func() bool { return assign(&track.Default, remote.Default) }},
		{"mime_type", func() bool { return assign(&track.MimeType, remote.MimeType) }},
	})
	if !changed && !isNew {
		return track, nil
	}

	track.Changed = time.Now().UTC()
	if err := r.tracks.Save(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// ReconcileSubscription creates or updates one webhook subscription, falling
// back to endpoint lookup so a re-registered endpoint keeps its local record.
func (r *Reconciler) ReconcileSubscription(ctx context.Context, remote *dto.RemoteSubscription, profileID int64) (*model.Subscription, error) {
	sub, err := r.subs.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub, err = r.subs.GetByEndpoint(ctx, profileID, remote.Endpoint)
		if err != nil {
			return nil, err
		}
	}
	isNew := sub == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create subscription without an owning credential profile"}
		}
		sub = &model.Subscription{
			RemoteID:  remote.ID,
			ProfileID: profileID,
			Created:   time.Now().UTC(),
		}
	}

	changed := applyFieldTable(sub, []fieldChange{
		{"remote_id", func() bool { return assign(&sub.RemoteID, remote.ID) }},
		{"endpoint", func() bool { return assign(&sub.Endpoint, withScheme(remote.Endpoint)) }},
		{"events", func() bool { return assignSlice(&sub.Events, remote.Events) }},
		{"active", func() bool { return assign(&sub.Active, true) }},
	})
	if !changed && !isNew {
		return sub, nil
	}

	sub.Changed = time.Now().UTC()
	if err := r.subs.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
