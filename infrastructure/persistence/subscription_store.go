package persistence

import (
	"context"
	"database/sql"

	"video-sync/domain/model"
)

type SubscriptionStore struct{ db *sql.DB }

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore { return &SubscriptionStore{db: db} }

const subscriptionColumns = `id, remote_id, profile_id, endpoint, events, is_default, active, created, changed`

func scanSubscription(row interface{ Scan(...any) error }) (*model.Subscription, error) {
	sub := &model.Subscription{}
	var events []byte
	err := row.Scan(&sub.ID, &sub.RemoteID, &sub.ProfileID, &sub.Endpoint, &events,
		&sub.Default, &sub.Active, &sub.Created, &sub.Changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	scanJSON(events, &sub.Events)
	return sub, nil
}

func (s *SubscriptionStore) GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscription WHERE profile_id=$1 AND remote_id=$2`, profileID, remoteID)
	return scanSubscription(row)
}

func (s *SubscriptionStore) GetByEndpoint(ctx context.Context, profileID int64, endpoint string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscription WHERE profile_id=$1 AND endpoint=$2`, profileID, endpoint)
	return scanSubscription(row)
}

func (s *SubscriptionStore) List(ctx context.Context, profileID int64) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscription WHERE profile_id=$1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (s *SubscriptionStore) Save(ctx context.Context, sub *model.Subscription) error {
	if sub.ID == 0 {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO subscription (remote_id, profile_id, endpoint, events, is_default, active, created, changed)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			sub.RemoteID, sub.ProfileID, sub.Endpoint, jsonColumn(sub.Events),
			sub.Default, sub.Active, sub.Created, sub.Changed).Scan(&sub.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE subscription SET remote_id=$1, endpoint=$2, events=$3, is_default=$4, active=$5, changed=$6 WHERE id=$7`,
		sub.RemoteID, sub.Endpoint, jsonColumn(sub.Events), sub.Default, sub.Active, sub.Changed, sub.ID)
	return err
}

func (s *SubscriptionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscription WHERE id=$1`, id)
	return err
}
