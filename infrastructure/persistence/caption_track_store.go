package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type CaptionTrackStore struct{ db *sql.DB }

func NewCaptionTrackStore(db *sql.DB) *CaptionTrackStore { return &CaptionTrackStore{db: db} }

const captionColumns = `id, remote_id, video_id, profile_id, source_url, src_lang, label, kind, is_default, mime_type, created, changed`

func scanCaption(row interface{ Scan(...any) error }) (*model.CaptionTrack, error) {
	t := &model.CaptionTrack{}
	err := row.Scan(&t.ID, &t.RemoteID, &t.VideoID, &t.ProfileID, &t.SourceURL, &t.SrcLang,
		&t.Label, &t.Kind, &t.Default, &t.MimeType, &t.Created, &t.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CaptionTrackStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.CaptionTrack, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+captionColumns+` FROM caption_track WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanCaption(row)
}

func (s *CaptionTrackStore) List(ctx context.Context, profileID int64) ([]model.CaptionTrack, error) {
	return s.list(ctx, `profile_id=$1`, profileID)
}

func (s *CaptionTrackStore) ListByVideo(ctx context.Context, videoID int64) ([]model.CaptionTrack, error) {
	return s.list(ctx, `video_id=$1`, videoID)
}

func (s *CaptionTrackStore) list(ctx context.Context, where string, arg any) ([]model.CaptionTrack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+captionColumns+` FROM caption_track WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CaptionTrack
	for rows.Next() {
		t, err := scanCaption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *CaptionTrackStore) Save(ctx context.Context, t *model.CaptionTrack) error {
	if t.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO caption_track (remote_id, video_id, profile_id, source_url, src_lang, label, kind, is_default, mime_type, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
			t.RemoteID, t.VideoID, t.ProfileID, t.SourceURL, t.SrcLang, t.Label, t.Kind,
			t.Default, t.MimeType, t.Created, t.Changed).Scan(&t.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE caption_track SET remote_id=$1, source_url=$2, src_lang=$3, label=$4, kind=$5,
		 is_default=$6, mime_type=$7, changed=$8 WHERE id=$9`,
		t.RemoteID, t.SourceURL, t.SrcLang, t.Label, t.Kind, t.Default, t.MimeType, t.Changed, t.ID)
	return err
}

func (s *CaptionTrackStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM caption_track WHERE id=$1`, id)
	return err
}
