package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type CustomFieldStore struct{ db *sql.DB }

func NewCustomFieldStore(db *sql.DB) *CustomFieldStore { return &CustomFieldStore{db: db} }

const customFieldColumns = `id, remote_id, profile_id, name, display_name, description, type, required, enum_values, created, changed`

func scanCustomField(row interface{ Scan(...any) error }) (*model.CustomField, error) {
	f := &model.CustomField{}
	var enums []byte
	err := row.Scan(&f.ID, &f.RemoteID, &f.ProfileID, &f.Name, &f.DisplayName, &f.Description,
		&f.Type, &f.Required, &enums, &f.Created, &f.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	scanJSON(enums, &f.EnumValues)
	return f, nil
}

func (s *CustomFieldStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.CustomField, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customFieldColumns+` FROM custom_field WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanCustomField(row)
}

func (s *CustomFieldStore) List(ctx context.Context, profileID int64) ([]model.CustomField, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+customFieldColumns+` FROM custom_field WHERE profile_id=$1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CustomField
	for rows.Next() {
		f, err := scanCustomField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *CustomFieldStore) Save(ctx context.Context, f *model.CustomField) error {
	if f.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO custom_field (remote_id, profile_id, name, display_name, description, type, required, enum_values, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
			f.RemoteID, f.ProfileID, f.Name, f.DisplayName, f.Description, f.Type,
			f.Required, jsonColumn(f.EnumValues), f.Created, f.Changed).Scan(&f.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE custom_field SET remote_id=$1, name=$2, display_name=$3, description=$4, type=$5,
		 required=$6, enum_values=$7, changed=$8 WHERE id=$9`,
		f.RemoteID, f.Name, f.DisplayName, f.Description, f.Type,
		f.Required, jsonColumn(f.EnumValues), f.Changed, f.ID)
	return err
}

func (s *CustomFieldStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM custom_field WHERE id=$1`, id)
	return err
}
