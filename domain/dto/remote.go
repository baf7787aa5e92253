package dto

import (
	"fmt"
	"time"
)

// APIError is the typed error raised by the remote facade. StatusCode carries
// the HTTP status the remote service answered with.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api error %d: %s", e.StatusCode, e.Message)
}

// TokenResponse is the OAuth client-credentials exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type RemoteImageSource struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type RemoteImage struct {
	AssetID string              `json:"asset_id"`
	Src     string              `json:"src"`
	Sources []RemoteImageSource `json:"sources"`
}

type RemoteImages struct {
	Poster    *RemoteImage `json:"poster,omitempty"`
	Thumbnail *RemoteImage `json:"thumbnail,omitempty"`
}

type RemoteLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type RemoteSchedule struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type RemoteTextTrack struct {
	ID        string `json:"id"`
	Src       string `json:"src"`
	SrcLang   string `json:"srclang"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	Default   bool   `json:"default"`
	MimeType  string `json:"mime_type"`
	AssetID   string `json:"asset_id"`
	InBandSrc string `json:"in_band_metadata_track_dispatch_type,omitempty"`
}

type RemoteVideo struct {
	ID              string            `json:"id"`
	AccountID       string            `json:"account_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	LongDescription string            `json:"long_description"`
	ReferenceID     string            `json:"reference_id"`
	State           string            `json:"state"`
	Economics       string            `json:"economics"`
	Duration        int64             `json:"duration"`
	Tags            []string          `json:"tags"`
	PlayerID        string            `json:"player_id"`
	Link            *RemoteLink       `json:"link"`
	Images          RemoteImages      `json:"images"`
	TextTracks      []RemoteTextTrack `json:"text_tracks"`
	Schedule        *RemoteSchedule   `json:"schedule"`
	CustomFields    map[string]string `json:"custom_fields"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type RemotePlaylist struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ReferenceID string    `json:"reference_id"`
	Type        string    `json:"type"`
	Search      string    `json:"search"`
	PlayerID    string    `json:"player_id"`
	Favorite    bool      `json:"favorite"`
	VideoIDs    []string  `json:"video_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RemotePlayer struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EmbedCode   string    `json:"embed_code"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"last_modified"`
}

type RemoteCustomField struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Required    bool      `json:"required"`
	EnumValues  []string  `json:"enum_values"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomFieldList is the custom-field schema endpoint response, including the
// account-wide field limit mirrored onto the credential profile.
type CustomFieldList struct {
	MaxCustomFields int                 `json:"max_custom_fields"`
	Fields          []RemoteCustomField `json:"custom_fields"`
}

type RemoteSubscription struct {
	ID       string   `json:"id"`
	Endpoint string   `json:"endpoint"`
	Events   []string `json:"events"`
}

// IngestImage is one image sub-request of an ingest submission.
type IngestImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// IngestTextTrack is one caption sub-request of an ingest submission.
type IngestTextTrack struct {
	URL     string `json:"url"`
	SrcLang string `json:"srclang"`
	Kind    string `json:"kind"`
	Label   string `json:"label,omitempty"`
	Default bool   `json:"default"`
}

// IngestMaster references the source video file to transcode.
type IngestMaster struct {
	URL string `json:"url"`
}

// IngestRequest is the composed asynchronous ingestion submission.
type IngestRequest struct {
	Master     *IngestMaster     `json:"master,omitempty"`
	Profile    string            `json:"profile,omitempty"`
	Poster     *IngestImage      `json:"poster,omitempty"`
	Thumbnail  *IngestImage      `json:"thumbnail,omitempty"`
	TextTracks []IngestTextTrack `json:"text_tracks,omitempty"`
	Callbacks  []string          `json:"callbacks,omitempty"`
}

// Ingest callback constants; anything else in the notification is ignored.
const (
	IngestStatusSuccess = "SUCCESS"
	IngestActionCreate  = "CREATE"
	IngestVersion       = "1"

	IngestEntityTitle = "TITLE"
	IngestEntityAsset = "ASSET"
)

// IngestCallback is the notification body POSTed by the remote ingestion
// service when an asset finishes processing.
type IngestCallback struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Action     string `json:"action"`
	EntityType string `json:"entityType"`
	Entity     string `json:"entity"`
	AccountID  string `json:"account_id"`
	Video      string `json:"video"`
}

// NotificationEvent is the generic webhook body for subscription events.
type NotificationEvent struct {
	Event     string `json:"event"`
	AccountID string `json:"account_id"`
	Video     string `json:"video"`
}
