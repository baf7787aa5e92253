package persistence

import (
	"context"
	"database/sql"
	"time"

	"video-sync/domain/model"
)

type ProfileStore struct{ db *sql.DB }

func NewProfileStore(db *sql.DB) *ProfileStore { return &ProfileStore{db: db} }

const profileColumns = `id, name, account_id, client_id, client_secret, default_player_id, max_custom_fields, status, status_message, created, changed`

func scanProfile(row interface{ Scan(...any) error }) (*model.CredentialProfile, error) {
	p := &model.CredentialProfile{}
	err := row.Scan(&p.ID, &p.Name, &p.AccountID, &p.ClientID, &p.ClientSecret,
		&p.DefaultPlayerID, &p.MaxCustomFields, &p.Status, &p.StatusMessage, &p.Created, &p.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id int64) (*model.CredentialProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM credential_profile WHERE id=$1`, id)
	return scanProfile(row)
}

func (s *ProfileStore) GetByAccountID(ctx context.Context, accountID string) (*model.CredentialProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM credential_profile WHERE account_id=$1`, accountID)
	return scanProfile(row)
}

func (s *ProfileStore) List(ctx context.Context) ([]model.CredentialProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM credential_profile ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CredentialProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *ProfileStore) Save(ctx context.Context, p *model.CredentialProfile) error {
	now := time.Now().UTC()
	if p.Created.IsZero() {
		p.Created = now
	}
	p.Changed = now
	if p.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO credential_profile (name, account_id, client_id, client_secret, default_player_id, max_custom_fields, status, status_message, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
			p.Name, p.AccountID, p.ClientID, p.ClientSecret, p.DefaultPlayerID,
			p.MaxCustomFields, p.Status, p.StatusMessage, p.Created, p.Changed).Scan(&p.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE credential_profile SET name=$1, account_id=$2, client_id=$3, client_secret=$4, default_player_id=$5,
		 max_custom_fields=$6, status=$7, status_message=$8, changed=$9 WHERE id=$10`,
		p.Name, p.AccountID, p.ClientID, p.ClientSecret, p.DefaultPlayerID,
		p.MaxCustomFields, p.Status, p.StatusMessage, p.Changed, p.ID)
	return err
}
