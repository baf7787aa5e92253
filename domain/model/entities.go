package model

import "time"

// ProfileStatus is the last connection outcome recorded on a credential profile.
type ProfileStatus string

const (
	ProfileStatusOK    ProfileStatus = "ok"
	ProfileStatusError ProfileStatus = "error"
)

// CredentialProfile holds one remote account's API credentials plus the
// defaults applied to entities it owns. The access token itself lives in the
// expiring key/value store; only status is mirrored here for display.
type CredentialProfile struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	AccountID       string        `json:"account_id"`
	ClientID        string        `json:"client_id"`
	ClientSecret    string        `json:"-"`
	DefaultPlayerID string        `json:"default_player_id"`
	MaxCustomFields int           `json:"max_custom_fields"`
	Status          ProfileStatus `json:"status"`
	StatusMessage   string        `json:"status_message"`
	Created         time.Time     `json:"created"`
	Changed         time.Time     `json:"changed"`
}

// ChangeTracker records which fields the reconciler (or a form layer) wrote,
// feeding the push path's partial-update payload. Not persisted.
type ChangeTracker struct {
	dirty map[string]struct{}
}

func (c *ChangeTracker) MarkDirty(field string) {
	if c.dirty == nil {
		c.dirty = map[string]struct{}{}
	}
	c.dirty[field] = struct{}{}
}

func (c *ChangeTracker) IsDirty(field string) bool {
	_, ok := c.dirty[field]
	return ok
}

func (c *ChangeTracker) DirtyFields() []string {
	out := make([]string, 0, len(c.dirty))
	for f := range c.dirty {
		out = append(out, f)
	}
	return out
}

func (c *ChangeTracker) HasChanges() bool { return len(c.dirty) > 0 }

func (c *ChangeTracker) ClearDirty() { c.dirty = nil }

// Video mirrors one remote CMS video. RemoteID is unique within a profile;
// Changed mirrors the remote updated_at and gates reconciliation.
type Video struct {
	ChangeTracker `json:"-"`

	ID              int64             `json:"id"`
	RemoteID        string            `json:"remote_id"`
	ProfileID       int64             `json:"profile_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	LongDescription string            `json:"long_description"`
	ReferenceID     string            `json:"reference_id"`
	Tags            []string          `json:"tags"`
	TagIDs          []int64           `json:"tag_ids"`
	PlayerID        string            `json:"player_id"`
	Published       bool              `json:"published"`
	Duration        int64             `json:"duration"`
	Economics       string            `json:"economics"`
	LinkURL         string            `json:"link_url"`
	LinkText        string            `json:"link_text"`
	PosterImage     string            `json:"poster_image"`
	ThumbnailImage  string            `json:"thumbnail_image"`
	VideoSourceURL  string            `json:"video_source_url"`
	ScheduleStarts  *time.Time        `json:"schedule_starts"`
	ScheduleEnds    *time.Time        `json:"schedule_ends"`
	CustomFields    map[string]string `json:"custom_fields"`
	Created         time.Time         `json:"created"`
	Changed         time.Time         `json:"changed"`
}

// Playlist mirrors one remote CMS playlist. Manual playlists reference videos
// by remote id; smart playlists carry a search predicate instead.
type Playlist struct {
	ChangeTracker `json:"-"`

	ID             int64     `json:"id"`
	RemoteID       string    `json:"remote_id"`
	ProfileID      int64     `json:"profile_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ReferenceID    string    `json:"reference_id"`
	Type           string    `json:"type"`
	Search         string    `json:"search"`
	PlayerID       string    `json:"player_id"`
	Published      bool      `json:"published"`
	VideoRemoteIDs []string  `json:"video_remote_ids"`
	VideoIDs       []int64   `json:"video_ids"`
	Created        time.Time `json:"created"`
	Changed        time.Time `json:"changed"`
}

type Player struct {
	ChangeTracker `json:"-"`

	ID          int64     `json:"id"`
	RemoteID    string    `json:"remote_id"`
	ProfileID   int64     `json:"profile_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EmbedCode   string    `json:"embed_code"`
	URL         string    `json:"url"`
	Created     time.Time `json:"created"`
	Changed     time.Time `json:"changed"`
}

type CustomField struct {
	ChangeTracker `json:"-"`

	ID          int64     `json:"id"`
	RemoteID    string    `json:"remote_id"`
	ProfileID   int64     `json:"profile_id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Required    bool      `json:"required"`
	EnumValues  []string  `json:"enum_values"`
	Created     time.Time `json:"created"`
	Changed     time.Time `json:"changed"`
}

// CaptionTrack is a child of a Video. An empty RemoteID marks a local
// placeholder whose asset is still being ingested remotely.
type CaptionTrack struct {
	ChangeTracker `json:"-"`

	ID        int64     `json:"id"`
	RemoteID  string    `json:"remote_id"`
	VideoID   int64     `json:"video_id"`
	ProfileID int64     `json:"profile_id"`
	SourceURL string    `json:"source_url"`
	SrcLang   string    `json:"src_lang"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	Default   bool      `json:"default"`
	MimeType  string    `json:"mime_type"`
	Created   time.Time `json:"created"`
	Changed   time.Time `json:"changed"`
}

// DefaultSubscriptionRemoteID marks the permanent default subscription when
// it has no live remote registration.
const DefaultSubscriptionRemoteID = "default"

// Subscription is a webhook registration on the remote service. The default
// subscription is permanent: delete-detection resets it instead of removing it.
type Subscription struct {
	ChangeTracker `json:"-"`

	ID        int64     `json:"id"`
	RemoteID  string    `json:"remote_id"`
	ProfileID int64     `json:"profile_id"`
	Endpoint  string    `json:"endpoint"`
	Events    []string  `json:"events"`
	Default   bool      `json:"default"`
	Active    bool      `json:"active"`
	Created   time.Time `json:"created"`
	Changed   time.Time `json:"changed"`
}
