package repository

import (
	"context"

	"video-sync/domain/model"
)

// Entity stores follow one contract shape: lookup by remote id returns
// (nil, nil) on a miss, Save inserts when ID is zero and updates otherwise.

type IProfileStore interface {
	GetByID(ctx context.Context, id int64) (*model.CredentialProfile, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.CredentialProfile, error)
	List(ctx context.Context) ([]model.CredentialProfile, error)
	Save(ctx context.Context, profile *model.CredentialProfile) error
}

type IVideoStore interface {
	GetByID(ctx context.Context, id int64) (*model.Video, error)
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Video, error)
	List(ctx context.Context, profileID int64) ([]model.Video, error)
	Save(ctx context.Context, video *model.Video) error
	Delete(ctx context.Context, id int64) error
}

type IPlaylistStore interface {
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Playlist, error)
	List(ctx context.Context, profileID int64) ([]model.Playlist, error)
	Save(ctx context.Context, playlist *model.Playlist) error
	Delete(ctx context.Context, id int64) error
}

type IPlayerStore interface {
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Player, error)
	List(ctx context.Context, profileID int64) ([]model.Player, error)
	Save(ctx context.Context, player *model.Player) error
	Delete(ctx context.Context, id int64) error
}

type ICustomFieldStore interface {
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.CustomField, error)
	List(ctx context.Context, profileID int64) ([]model.CustomField, error)
	Save(ctx context.Context, field *model.CustomField) error
	Delete(ctx context.Context, id int64) error
}

type ICaptionTrackStore interface {
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.CaptionTrack, error)
	List(ctx context.Context, profileID int64) ([]model.CaptionTrack, error)
	ListByVideo(ctx context.Context, videoID int64) ([]model.CaptionTrack, error)
	Save(ctx context.Context, track *model.CaptionTrack) error
	Delete(ctx context.Context, id int64) error
}

type ISubscriptionStore interface {
	GetByRemoteID(ctx context.Context, profileID int64, remoteID string) (*model.Subscription, error)
	GetByEndpoint(ctx context.Context, profileID int64, endpoint string) (*model.Subscription, error)
	List(ctx context.Context, profileID int64) ([]model.Subscription, error)
	Save(ctx context.Context, sub *model.Subscription) error
	Delete(ctx context.Context, id int64) error
}

// ITaxonomyStore is the controlled tag vocabulary videos reference by name.
type ITaxonomyStore interface {
	// EnsureTerm resolves a term by name, creating it when absent.
	EnsureTerm(ctx context.Context, profileID int64, name string) (int64, error)
	TermExists(ctx context.Context, id int64) (bool, error)
}

// IImageStore downloads and stores remote images keyed by filename.
// Store is a no-op returning the existing name when an identically named
// file is already present.
type IImageStore interface {
	Store(ctx context.Context, rawURL string) (string, error)
	// Dimensions reports the pixel size of a stored image by filename.
	Dimensions(ctx context.Context, name string) (width, height int, err error)
}
