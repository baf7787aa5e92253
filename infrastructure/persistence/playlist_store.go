package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type PlaylistStore struct{ db *sql.DB }

func NewPlaylistStore(db *sql.DB) *PlaylistStore { return &PlaylistStore{db: db} }

const playlistColumns = `id, remote_id, profile_id, name, description, reference_id, type, search,
	player_id, published, video_remote_ids, video_ids, created, changed`

func scanPlaylist(row interface{ Scan(...any) error }) (*model.Playlist, error) {
	p := &model.Playlist{}
	var remoteIDs, videoIDs []byte
	err := row.Scan(&p.ID, &p.RemoteID, &p.ProfileID, &p.Name, &p.Description, &p.ReferenceID,
		&p.Type, &p.Search, &p.PlayerID, &p.Published, &remoteIDs, &videoIDs, &p.Created, &p.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	scanJSON(remoteIDs, &p.VideoRemoteIDs)
	scanJSON(videoIDs, &p.VideoIDs)
	return p, nil
}

func (s *PlaylistStore) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlist WHERE id=$1`, id)
	return scanPlaylist(row)
}

func (s *PlaylistStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlist WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanPlaylist(row)
}

func (s *PlaylistStore) List(ctx context.Context, profileID int64) ([]model.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlist WHERE profile_id=$1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PlaylistStore) Save(ctx context.Context, p *model.Playlist) error {
	if p.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO playlist (remote_id, profile_id, name, description, reference_id, type, search,
			 player_id, published, video_remote_ids, video_ids, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id`,
			p.RemoteID, p.ProfileID, p.Name, p.Description, p.ReferenceID, p.Type, p.Search,
			p.PlayerID, p.Published, jsonColumn(p.VideoRemoteIDs), jsonColumn(p.VideoIDs),
			p.Created, p.Changed).Scan(&p.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE playlist SET remote_id=$1, name=$2, description=$3, reference_id=$4, type=$5, search=$6,
		 player_id=$7, published=$8, video_remote_ids=$9, video_ids=$10, changed=$11 WHERE id=$12`,
		p.RemoteID, p.Name, p.Description, p.ReferenceID, p.Type, p.Search,
		p.PlayerID, p.Published, jsonColumn(p.VideoRemoteIDs), jsonColumn(p.VideoIDs), p.Changed, p.ID)
	return err
}

func (s *PlaylistStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM playlist WHERE id=$1`, id)
	return err
}
