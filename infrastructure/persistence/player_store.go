package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type PlayerStore struct{ db *sql.DB }

func NewPlayerStore(db *sql.DB) *PlayerStore { return &PlayerStore{db: db} }

const playerColumns = `id, remote_id, profile_id, name, description, embed_code, url, created, changed`

func scanPlayer(row interface{ Scan(...any) error }) (*model.Player, error) {
	p := &model.Player{}
	err := row.Scan(&p.ID, &p.RemoteID, &p.ProfileID, &p.Name, &p.Description,
		&p.EmbedCode, &p.URL, &p.Created, &p.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PlayerStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM player WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanPlayer(row)
}

func (s *PlayerStore) List(ctx context.Context, profileID int64) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM player WHERE profile_id=$1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PlayerStore) Save(ctx context.Context, p *model.Player) error {
	if p.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO player (remote_id, profile_id, name, description, embed_code, url, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			p.RemoteID, p.ProfileID, p.Name, p.Description, p.EmbedCode, p.URL, p.Created, p.Changed).Scan(&p.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE player SET remote_id=$1, name=$2, description=$3, embed_code=$4, url=$5, changed=$6 WHERE id=$7`,
		p.RemoteID, p.Name, p.Description, p.EmbedCode, p.URL, p.Changed, p.ID)
	return err
}

func (s *PlayerStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM player WHERE id=$1`, id)
	return err
}
