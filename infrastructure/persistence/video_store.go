package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type VideoStore struct{ db *sql.DB }

func NewVideoStore(db *sql.DB) *VideoStore { return &VideoStore{db: db} }

const videoColumns = `id, remote_id, profile_id, name, description, long_description, reference_id,
	tags, tag_ids, player_id, published, duration, economics, link_url, link_text,
	poster_image, thumbnail_image, video_source_url, schedule_starts, schedule_ends,
	custom_fields, created, changed`

func scanVideo(row interface{ Scan(...any) error }) (*model.Video, error) {
	v := &model.Video{}
	var tags, tagIDs, customFields []byte
	var starts, ends sql.NullTime
	err := row.Scan(&v.ID, &v.RemoteID, &v.ProfileID, &v.Name, &v.Description, &v.LongDescription,
		&v.ReferenceID, &tags, &tagIDs, &v.PlayerID, &v.Published, &v.Duration, &v.Economics,
		&v.LinkURL, &v.LinkText, &v.PosterImage, &v.ThumbnailImage, &v.VideoSourceURL,
		&starts, &ends, &customFields, &v.Created, &v.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	scanJSON(tags, &v.Tags)
	scanJSON(tagIDs, &v.TagIDs)
	scanJSON(customFields, &v.CustomFields)
	if starts.Valid {
		t := starts.Time
		v.ScheduleStarts = &t
	}
	if ends.Valid {
		t := ends.Time
		v.ScheduleEnds = &t
	}
	return v, nil
}

func (s *VideoStore) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM video WHERE id=$1`, id)
	return scanVideo(row)
}

func (s *VideoStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM video WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanVideo(row)
}

func (s *VideoStore) List(ctx context.Context, profileID int64) ([]model.Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM video WHERE profile_id=$1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *VideoStore) Save(ctx context.Context, v *model.Video) error {
	var starts, ends any
	if v.ScheduleStarts != nil {
		starts = *v.ScheduleStarts
	}
	if v.ScheduleEnds != nil {
		ends = *v.ScheduleEnds
	}
	if v.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO video (remote_id, profile_id, name, description, long_description, reference_id,
			 tags, tag_ids, player_id, published, duration, economics, link_url, link_text,
			 poster_image, thumbnail_image, video_source_url, schedule_starts, schedule_ends,
			 custom_fields, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
			 RETURNING id`,
			v.RemoteID, v.ProfileID, v.Name, v.Description, v.LongDescription, v.ReferenceID,
			jsonColumn(v.Tags), jsonColumn(v.TagIDs), v.PlayerID, v.Published, v.Duration, v.Economics,
			v.LinkURL, v.LinkText, v.PosterImage, v.ThumbnailImage, v.VideoSourceURL,
			starts, ends, jsonObjectColumn(v.CustomFields), v.Created, v.Changed).Scan(&v.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE video SET remote_id=$1, name=$2, description=$3, long_description=$4, reference_id=$5,
		 tags=$6, tag_ids=$7, player_id=$8, published=$9, duration=$10, economics=$11, link_url=$12,
		 link_text=$13, poster_image=$14, thumbnail_image=$15, video_source_url=$16,
		 schedule_starts=$17, schedule_ends=$18, custom_fields=$19, changed=$20 WHERE id=$21`,
		v.RemoteID, v.Name, v.Description, v.LongDescription, v.ReferenceID,
		jsonColumn(v.Tags), jsonColumn(v.TagIDs), v.PlayerID, v.Published, v.Duration, v.Economics,
		v.LinkURL, v.LinkText, v.PosterImage, v.ThumbnailImage, v.VideoSourceURL,
		starts, ends, jsonObjectColumn(v.CustomFields), v.Changed, v.ID)
	return err
}

func (s *VideoStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM video WHERE id=$1`, id)
	return err
}
