package persistence

import (
	"database/sql"
	"fmt"
)

// EnsureSyncSchema creates all local mirror tables if they do not exist.
func EnsureSyncSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS credential_profile (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			account_id TEXT NOT NULL UNIQUE,
			client_id TEXT NOT NULL,
			client_secret TEXT NOT NULL,
			default_player_id TEXT NOT NULL DEFAULT '',
			max_custom_fields INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ok',
			status_message TEXT NOT NULL DEFAULT '',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			long_description TEXT NOT NULL DEFAULT '',
			reference_id TEXT NOT NULL DEFAULT '',
			tags JSONB NOT NULL DEFAULT '[]',
			tag_ids JSONB NOT NULL DEFAULT '[]',
			player_id TEXT NOT NULL DEFAULT '',
			published BOOLEAN NOT NULL DEFAULT FALSE,
			duration BIGINT NOT NULL DEFAULT 0,
			economics TEXT NOT NULL DEFAULT '',
			link_url TEXT NOT NULL DEFAULT '',
			link_text TEXT NOT NULL DEFAULT '',
			poster_image TEXT NOT NULL DEFAULT '',
			thumbnail_image TEXT NOT NULL DEFAULT '',
			video_source_url TEXT NOT NULL DEFAULT '',
			schedule_starts TIMESTAMPTZ,
			schedule_ends TIMESTAMPTZ,
			custom_fields JSONB NOT NULL DEFAULT '{}',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL,
			UNIQUE (profile_id, remote_id)
		)`,
		`CREATE TABLE IF NOT EXISTS playlist (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			reference_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			search TEXT NOT NULL DEFAULT '',
			player_id TEXT NOT NULL DEFAULT '',
			published BOOLEAN NOT NULL DEFAULT FALSE,
			video_remote_ids JSONB NOT NULL DEFAULT '[]',
			video_ids JSONB NOT NULL DEFAULT '[]',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL,
			UNIQUE (profile_id, remote_id)
		)`,
		`CREATE TABLE IF NOT EXISTS player (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			embed_code TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL,
			UNIQUE (profile_id, remote_id)
		)`,
		`CREATE TABLE IF NOT EXISTS custom_field (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			name TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			required BOOLEAN NOT NULL DEFAULT FALSE,
			enum_values JSONB NOT NULL DEFAULT '[]',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL,
			UNIQUE (profile_id, remote_id)
		)`,
		`CREATE TABLE IF NOT EXISTS caption_track (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL DEFAULT '',
			video_id BIGINT NOT NULL REFERENCES video(id) ON DELETE CASCADE,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			source_url TEXT NOT NULL DEFAULT '',
			src_lang TEXT NOT NULL DEFAULT '',
			label TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			mime_type TEXT NOT NULL DEFAULT '',
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subscription (
			id BIGSERIAL PRIMARY KEY,
			remote_id TEXT NOT NULL,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			endpoint TEXT NOT NULL,
			events JSONB NOT NULL DEFAULT '[]',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created TIMESTAMPTZ NOT NULL,
			changed TIMESTAMPTZ NOT NULL,
			UNIQUE (profile_id, endpoint)
		)`,
		`CREATE TABLE IF NOT EXISTS taxonomy_term (
			id BIGSERIAL PRIMARY KEY,
			profile_id BIGINT NOT NULL REFERENCES credential_profile(id),
			name TEXT NOT NULL,
			UNIQUE (profile_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS sync_task (
			id BIGSERIAL PRIMARY KEY,
			queue TEXT NOT NULL,
			idempotency_key TEXT NOT NULL,
			payload JSONB NOT NULL,
			attempts INT NOT NULL DEFAULT 0,
			leased_until TIMESTAMPTZ,
			created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (queue, idempotency_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_task_queue ON sync_task(queue, leased_until)`,
		// Reference ids are caller-chosen alternate keys; empty means unset.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_video_reference_id
			ON video(profile_id, reference_id) WHERE reference_id <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_playlist_reference_id
			ON playlist(profile_id, reference_id) WHERE reference_id <> ''`,
	}
	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("ensure sync schema: %w", err)
		}
	}
	return nil
}
