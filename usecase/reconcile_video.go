package usecase

import (
	"context"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/infrastructure/logger"
)

// ReconcileVideo creates or updates the local mirror of one remote video.
func (r *Reconciler) ReconcileVideo(ctx context.Context, remote *dto.RemoteVideo, profileID int64) (*model.Video, error) {
	video, err := r.videos.GetByRemoteID(ctx, profileID, remote.ID)
	if err != nil {
		return nil, err
	}
	isNew := video == nil
	if isNew {
		if profileID == 0 {
			return nil, &ConfigurationError{Message: "cannot create video without an owning credential profile"}
		}
		video = &model.Video{
			RemoteID:  remote.ID,
			ProfileID: profileID,
			Created:   remote.CreatedAt,
		}
	} else if !needsUpdate(video.Changed, remote.UpdatedAt) {
		return video, nil
	}

	table := []fieldChange{
		{"name", func() bool { return assign(&video.Name, remote.Name) }},
		{"description", func() bool { return assign(&video.Description, remote.Description) }},
		{"long_description", func() bool { return assign(&video.LongDescription, remote.LongDescription) }},
		{"reference_id", func() bool { return assign(&video.ReferenceID, remote.ReferenceID) }},
		{"duration", func() bool { return assign(&video.Duration, remote.Duration) }},
		{"economics", func() bool { return assign(&video.Economics, remote.Economics) }},
		{"player_id", func() bool { return assign(&video.PlayerID, remote.PlayerID) }},
		{"published", func() bool { return assign(&video.Published, remote.State == "ACTIVE") }},
	}
	if remote.Link != nil {
		table = append(table,
			fieldChange{"link_url", func() bool { return assign(&video.LinkURL, withScheme(remote.Link.URL)) }},
			fieldChange{"link_text", func() bool { return assign(&video.LinkText, remote.Link.Text) }},
		)
	}
	if remote.Schedule != nil {
		table = append(table,
			fieldChange{"schedule_starts", func() bool { return assignTimePtr(&video.ScheduleStarts, remote.Schedule.StartsAt) }},
			fieldChange{"schedule_ends", func() bool { return assignTimePtr(&video.ScheduleEnds, remote.Schedule.EndsAt) }},
		)
	}
	table = append(table,
		fieldChange{"custom_fields", func() bool { return assignMap(&video.CustomFields, remote.CustomFields) }},
	)
	changed := applyFieldTable(video, table)

	if r.reconcileTags(ctx, video, remote.Tags) {
		changed = true
	}
	if r.reconcileImage(ctx, video, "poster_image", &video.PosterImage, remote.Images.Poster) {
		changed = true
	}
	if r.reconcileImage(ctx, video, "thumbnail_image", &video.ThumbnailImage, remote.Images.Thumbnail) {
		changed = true
	}

	if !changed && !isNew {
		// Field-identical record; still advance the version marker so the
		// gate holds on the next delivery.
		video.Changed = remote.UpdatedAt
		return video, r.videos.Save(ctx, video)
	}
	video.Changed = remote.UpdatedAt
	if err := r.videos.Save(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// reconcileTags resolves remote tag names against the controlled taxonomy,
// creating terms as needed and pruning references whose term vanished.
func (r *Reconciler) reconcileTags(ctx context.Context, video *model.Video, remoteTags []string) bool {
	if equalSlices(video.Tags, remoteTags) {
		return r.pruneStaleTags(ctx, video)
	}
	ids := make([]int64, 0, len(remoteTags))
	for _, name := range remoteTags {
		id, err := r.taxonomy.EnsureTerm(ctx, video.ProfileID, name)
		if err != nil {
			logger.GetLogger().WithField("error", err).WithField("tag", name).Warn("failed resolving tag term")
			continue
		}
		ids = append(ids, id)
	}
	video.Tags = remoteTags
	video.TagIDs = ids
	video.MarkDirty("tags")
	return true
}

func (r *Reconciler) pruneStaleTags(ctx context.Context, video *model.Video) bool {
	kept := video.TagIDs[:0]
	pruned := false
	for _, id := range video.TagIDs {
		exists, err := r.taxonomy.TermExists(ctx, id)
		if err != nil || exists {
			kept = append(kept, id)
			continue
		}
		pruned = true
	}
	if pruned {
		video.TagIDs = kept
		video.MarkDirty("tags")
	}
	return pruned
}

// reconcileImage downloads a remote image keyed by filename and records the
// stored name. Download failures are logged, not fatal for the sync.
func (r *Reconciler) reconcileImage(ctx context.Context, video *model.Video, field string, dst *string, img *dto.RemoteImage) bool {
	if img == nil || img.Src == "" {
		return false
	}
	name, err := r.images.Store(ctx, img.Src)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("field", field).Warn("failed storing image")
		return false
	}
	if assign(dst, name) {
		video.MarkDirty(field)
		return true
	}
	return false
}
