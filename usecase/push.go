package usecase

import (
	"context"
	"fmt"
	"time"

	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

// IPusher uploads local edits to the remote service.
type IPusher interface {
	PushVideo(ctx context.Context, edited *model.Video) (*model.Video, error)
	PushPlaylist(ctx context.Context, edited *model.Playlist) (*model.Playlist, error)
	CreateSubscription(ctx context.Context, profileID int64, endpoint string, events []string) (*model.Subscription, error)
	DeleteSubscription(ctx context.Context, profileID int64, subscriptionID int64) error
	UpdateVideoNow(ctx context.Context, remoteID string) (*model.Video, error)
	UpdatePlaylistNow(ctx context.Context, remoteID string) (*model.Playlist, error)
}

// Pusher is the push half of the bidirectional sync: dirty local fields
// become partial remote updates, and changed assets become an ingestion
// submission. The pull path stays the authority for everything it mirrors.
type Pusher struct {
	profiles   repository.IProfileStore
	videos     repository.IVideoStore
	playlists  repository.IPlaylistStore
	subs       repository.ISubscriptionStore
	auth       IAuthenticator
	reconciler *Reconciler
	ingest     IIngestBuilder
}

func NewPusher(
	profiles repository.IProfileStore,
	videos repository.IVideoStore,
	playlists repository.IPlaylistStore,
	subs repository.ISubscriptionStore,
	auth IAuthenticator,
	reconciler *Reconciler,
	ingest IIngestBuilder,
) *Pusher {
	return &Pusher{
		profiles:   profiles,
		videos:     videos,
		playlists:  playlists,
		subs:       subs,
		auth:       auth,
		reconciler: reconciler,
		ingest:     ingest,
	}
}

func (p *Pusher) clientFor(ctx context.Context, profileID int64) (repository.IVideoCloud, *model.CredentialProfile, error) {
	profile, err := p.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, &ConfigurationError{Message: fmt.Sprintf("credential profile %d not found", profileID)}
	}
	client, err := p.auth.Authorize(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	return client, profile, nil
}

// diffVideo writes edited values onto the stored record, marking the fields
// that actually changed. The edited record is the full desired state, so the
// dirty set never depends on in-memory tracker state surviving a reload.
func diffVideo(stored, edited *model.Video) {
	table := []fieldChange{
		{"name", func() bool { return assign(&stored.Name, edited.Name) }},
		{"description", func() bool { return assign(&stored.Description, edited.Description) }},
		{"long_description", func() bool { return assign(&stored.LongDescription, edited.LongDescription) }},
		{"reference_id", func() bool { return assign(&stored.ReferenceID, edited.ReferenceID) }},
		{"economics", func() bool { return assign(&stored.Economics, edited.Economics) }},
		{"player_id", func() bool { return assign(&stored.PlayerID, edited.PlayerID) }},
		{"published", func() bool { return assign(&stored.Published, edited.Published) }},
		{"tags", func() bool { return assignSlice(&stored.Tags, edited.Tags) }},
		{"custom_fields", func() bool { return assignMap(&stored.CustomFields, edited.CustomFields) }},
		{"link_url", func() bool { return assign(&stored.LinkURL, edited.LinkURL) }},
		{"link_text", func() bool { return assign(&stored.LinkText, edited.LinkText) }},
		{"schedule_starts", func() bool { return assignTimePtr(&stored.ScheduleStarts, edited.ScheduleStarts) }},
		{"schedule_ends", func() bool { return assignTimePtr(&stored.ScheduleEnds, edited.ScheduleEnds) }},
		{"poster_image", func() bool { return assign(&stored.PosterImage, edited.PosterImage) }},
		{"thumbnail_image", func() bool { return assign(&stored.ThumbnailImage, edited.ThumbnailImage) }},
		{"video_source_url", func() bool { return assign(&stored.VideoSourceURL, edited.VideoSourceURL) }},
	}
	applyFieldTable(stored, table)
}

func diffPlaylist(stored, edited *model.Playlist) {
	table := []fieldChange{
		{"name", func() bool { return assign(&stored.Name, edited.Name) }},
		{"description", func() bool { return assign(&stored.Description, edited.Description) }},
		{"reference_id", func() bool { return assign(&stored.ReferenceID, edited.ReferenceID) }},
		{"type", func() bool { return assign(&stored.Type, edited.Type) }},
		{"search", func() bool { return assign(&stored.Search, edited.Search) }},
		{"player_id", func() bool { return assign(&stored.PlayerID, edited.PlayerID) }},
		{"video_remote_ids", func() bool { return assignSlice(&stored.VideoRemoteIDs, edited.VideoRemoteIDs) }},
	}
	applyFieldTable(stored, table)
}

// videoPayload maps dirty local fields onto the remote partial-update body.
// Only dirty fields are sent so concurrent remote edits survive a push.
func videoPayload(v *model.Video) map[string]any {
	fields := map[string]any{}
	linkDirty := false
	scheduleDirty := false
	for _, f := range v.DirtyFields() {
		switch f {
		case "name":
			fields["name"] = v.Name
		case "description":
			fields["description"] = v.Description
		case "long_description":
			fields["long_description"] = v.LongDescription
		case "reference_id":
			fields["reference_id"] = v.ReferenceID
		case "economics":
			fields["economics"] = v.Economics
		case "player_id":
			fields["player_id"] = v.PlayerID
		case "published":
			state := "INACTIVE"
			if v.Published {
				state = "ACTIVE"
			}
			fields["state"] = state
		case "tags":
			fields["tags"] = v.Tags
		case "custom_fields":
			fields["custom_fields"] = v.CustomFields
		case "link_url", "link_text":
			linkDirty = true
		case "schedule_starts", "schedule_ends":
			scheduleDirty = true
		}
	}
	if linkDirty {
		fields["link"] = map[string]string{"url": v.LinkURL, "text": v.LinkText}
	}
	if scheduleDirty {
		schedule := map[string]any{}
		if v.ScheduleStarts != nil {
			schedule["starts_at"] = v.ScheduleStarts.Format(time.RFC3339)
		}
		if v.ScheduleEnds != nil {
			schedule["ends_at"] = v.ScheduleEnds.Format(time.RFC3339)
		}
		fields["schedule"] = schedule
	}
	return fields
}

func playlistPayload(pl *model.Playlist) map[string]any {
	fields := map[string]any{}
	for _, f := range pl.DirtyFields() {
		switch f {
		case "name":
			fields["name"] = pl.Name
		case "description":
			fields["description"] = pl.Description
		case "reference_id":
			fields["reference_id"] = pl.ReferenceID
		case "type":
			fields["type"] = pl.Type
		case "search":
			fields["search"] = pl.Search
		case "player_id":
			fields["player_id"] = pl.PlayerID
		case "video_remote_ids", "video_ids":
			fields["video_ids"] = pl.VideoRemoteIDs
		}
	}
	return fields
}

// PushVideo creates or partially updates the remote video. The dirty set is
// computed here by diffing the edited record against the stored mirror, so a
// push works no matter where the edit came from (the tracker is not
// persisted). Changed assets become an ingestion submission.
func (p *Pusher) PushVideo(ctx context.Context, edited *model.Video) (*model.Video, error) {
	video, err := p.loadVideoBase(ctx, edited)
	if err != nil {
		return nil, err
	}
	client, profile, err := p.clientFor(ctx, video.ProfileID)
	if err != nil {
		return nil, err
	}

	diffVideo(video, edited)
	if video.RemoteID == "" && video.PlayerID == "" && profile.DefaultPlayerID != "" {
		video.PlayerID = profile.DefaultPlayerID
		video.MarkDirty("player_id")
	}

	fields := videoPayload(video)
	if video.RemoteID == "" {
		if _, ok := fields["name"]; !ok {
			fields["name"] = video.Name
		}
		remote, err := client.CreateVideo(ctx, fields)
		if err != nil {
			return nil, fmt.Errorf("create remote video: %w", err)
		}
		video.RemoteID = remote.ID
		video.Changed = remote.UpdatedAt
	} else if len(fields) > 0 {
		remote, err := client.UpdateVideo(ctx, video.RemoteID, fields)
		if err != nil {
			return nil, fmt.Errorf("update remote video %s: %w", video.RemoteID, err)
		}
		video.Changed = remote.UpdatedAt
	}

	if jobID, submitted, err := p.ingest.Submit(ctx, client, video); err != nil {
		return nil, err
	} else if submitted {
		logger.GetLogger().WithField("video", video.RemoteID).WithField("job", jobID).
			Info("submitted ingest request")
	}

	video.ClearDirty()
	if err := p.videos.Save(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// loadVideoBase returns the stored record the edit applies to, or a fresh
// local draft when the edit carries no id yet.
func (p *Pusher) loadVideoBase(ctx context.Context, edited *model.Video) (*model.Video, error) {
	if edited.ID == 0 {
		if edited.ProfileID == 0 {
			return nil, &ConfigurationError{Message: "cannot push a video without an owning credential profile"}
		}
		return &model.Video{ProfileID: edited.ProfileID, Created: time.Now()}, nil
	}
	video, err := p.videos.GetByID(ctx, edited.ID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("video %d not found", edited.ID)}
	}
	return video, nil
}

// PushPlaylist creates or partially updates the remote playlist, diffing the
// edited record against the stored mirror the same way PushVideo does.
func (p *Pusher) PushPlaylist(ctx context.Context, edited *model.Playlist) (*model.Playlist, error) {
	pl, err := p.loadPlaylistBase(ctx, edited)
	if err != nil {
		return nil, err
	}
	client, profile, err := p.clientFor(ctx, pl.ProfileID)
	if err != nil {
		return nil, err
	}

	diffPlaylist(pl, edited)
	if pl.RemoteID == "" && pl.PlayerID == "" && profile.DefaultPlayerID != "" {
		pl.PlayerID = profile.DefaultPlayerID
		pl.MarkDirty("player_id")
	}

	fields := playlistPayload(pl)
	if pl.RemoteID == "" {
		if _, ok := fields["name"]; !ok {
			fields["name"] = pl.Name
		}
		if _, ok := fields["type"]; !ok {
			fields["type"] = pl.Type
		}
		remote, err := client.CreatePlaylist(ctx, fields)
		if err != nil {
			return nil, fmt.Errorf("create remote playlist: %w", err)
		}
		pl.RemoteID = remote.ID
		pl.Changed = remote.UpdatedAt
	} else if len(fields) > 0 {
		remote, err := client.UpdatePlaylist(ctx, pl.RemoteID, fields)
		if err != nil {
			return nil, fmt.Errorf("update remote playlist %s: %w", pl.RemoteID, err)
		}
		pl.Changed = remote.UpdatedAt
	}

	pl.ClearDirty()
	if err := p.playlists.Save(ctx, pl); err != nil {
		return nil, err
	}
	return pl, nil
}

func (p *Pusher) loadPlaylistBase(ctx context.Context, edited *model.Playlist) (*model.Playlist, error) {
	if edited.ID == 0 {
		if edited.ProfileID == 0 {
			return nil, &ConfigurationError{Message: "cannot push a playlist without an owning credential profile"}
		}
		return &model.Playlist{ProfileID: edited.ProfileID, Created: time.Now()}, nil
	}
	pl, err := p.playlists.GetByID(ctx, edited.ID)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("playlist %d not found", edited.ID)}
	}
	return pl, nil
}

// CreateSubscription registers a webhook endpoint remotely and mirrors it.
func (p *Pusher) CreateSubscription(ctx context.Context, profileID int64, endpoint string, events []string) (*model.Subscription, error) {
	client, _, err := p.clientFor(ctx, profileID)
	if err != nil {
		return nil, err
	}
	remote, err := client.CreateSubscription(ctx, endpoint, events)
	if err != nil {
		return nil, fmt.Errorf("create remote subscription: %w", err)
	}
	sub, err := p.subs.GetByEndpoint(ctx, profileID, endpoint)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &model.Subscription{ProfileID: profileID}
	}
	sub.RemoteID = remote.ID
	sub.Endpoint = remote.Endpoint
	sub.Events = remote.Events
	sub.Active = true
	if err := p.subs.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubscription removes a webhook registration remotely and locally.
// The default subscription is permanent: it is deregistered and reset, never
// removed.
func (p *Pusher) DeleteSubscription(ctx context.Context, profileID int64, subscriptionID int64) error {
	subs, err := p.subs.List(ctx, profileID)
	if err != nil {
		return err
	}
	var sub *model.Subscription
	for i := range subs {
		if subs[i].ID == subscriptionID {
			sub = &subs[i]
			break
		}
	}
	if sub == nil {
		return &ConfigurationError{Message: fmt.Sprintf("subscription %d not found", subscriptionID)}
	}
	client, _, err := p.clientFor(ctx, profileID)
	if err != nil {
		return err
	}
	if sub.RemoteID != "" && sub.RemoteID != model.DefaultSubscriptionRemoteID {
		if err := client.DeleteSubscription(ctx, sub.RemoteID); err != nil && !IsRemoteNotFound(err) {
			return fmt.Errorf("delete remote subscription %s: %w", sub.RemoteID, err)
		}
	}
	if sub.Default {
		sub.RemoteID = model.DefaultSubscriptionRemoteID
		sub.Active = false
		return p.subs.Save(ctx, sub)
	}
	return p.subs.Delete(ctx, sub.ID)
}

// UpdateVideoNow fetches one remote video by id and reconciles it
// synchronously, bypassing the queue.
func (p *Pusher) UpdateVideoNow(ctx context.Context, remoteID string) (*model.Video, error) {
	profile, err := p.profileOwning(ctx, func(pr *model.CredentialProfile) (bool, error) {
		v, err := p.videos.GetByRemoteID(ctx, pr.ID, remoteID)
		return v != nil, err
	})
	if err != nil {
		return nil, err
	}
	client, err := p.auth.Authorize(ctx, profile)
	if err != nil {
		return nil, err
	}
	remote, err := client.GetVideo(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	return p.reconciler.ReconcileVideo(ctx, remote, profile.ID)
}

// UpdatePlaylistNow fetches one remote playlist by id and reconciles it
// synchronously.
func (p *Pusher) UpdatePlaylistNow(ctx context.Context, remoteID string) (*model.Playlist, error) {
	profile, err := p.profileOwning(ctx, func(pr *model.CredentialProfile) (bool, error) {
		pl, err := p.playlists.GetByRemoteID(ctx, pr.ID, remoteID)
		return pl != nil, err
	})
	if err != nil {
		return nil, err
	}
	client, err := p.auth.Authorize(ctx, profile)
	if err != nil {
		return nil, err
	}
	remote, err := client.GetPlaylist(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	return p.reconciler.ReconcilePlaylist(ctx, remote, profile.ID)
}

// profileOwning scans profiles for the one owning a record. Remote ids are
// globally unique at the vendor, so first match wins.
func (p *Pusher) profileOwning(ctx context.Context, owns func(*model.CredentialProfile) (bool, error)) (*model.CredentialProfile, error) {
	profiles, err := p.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		ok, err := owns(&profiles[i])
		if err != nil {
			return nil, err
		}
		if ok {
			return &profiles[i], nil
		}
	}
	return nil, &ConfigurationError{Message: "no credential profile owns this record"}
}
