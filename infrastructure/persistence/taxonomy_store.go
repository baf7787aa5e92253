package persistence

import (
	"context"
	"database/sql"
)

// TaxonomyStore is the controlled tag vocabulary referenced by videos.
type TaxonomyStore struct{ db *sql.DB }

func NewTaxonomyStore(db *sql.DB) *TaxonomyStore { return &TaxonomyStore{db: db} }

// EnsureTerm resolves a term id by name, creating the term when absent.
func (s *TaxonomyStore) EnsureTerm(ctx context.Context, profileID int64, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO taxonomy_term (profile_id, name) VALUES ($1,$2)
		 ON CONFLICT (profile_id, name) DO UPDATE SET name=EXCLUDED.name
		 RETURNING id`, profileID, name).Scan(&id)
	return id, err
}

func (s *TaxonomyStore) TermExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM taxonomy_term WHERE id=$1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
