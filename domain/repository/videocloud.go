package repository

import (
	"context"

	"video-sync/domain/dto"
)

// IVideoCloud is the authorized remote facade for one account. Every method
// surfaces remote failures as *dto.APIError carrying the HTTP status.
type IVideoCloud interface {
	CountVideos(ctx context.Context) (int, error)
	ListVideos(ctx context.Context, offset, limit int) ([]dto.RemoteVideo, error)
	GetVideo(ctx context.Context, id string) (*dto.RemoteVideo, error)
	CreateVideo(ctx context.Context, fields map[string]any) (*dto.RemoteVideo, error)
	UpdateVideo(ctx context.Context, id string, fields map[string]any) (*dto.RemoteVideo, error)
	DeleteVideo(ctx context.Context, id string) error
	GetVideoImages(ctx context.Context, id string) (*dto.RemoteImages, error)

	CountPlaylists(ctx context.Context) (int, error)
	ListPlaylists(ctx context.Context, offset, limit int) ([]dto.RemotePlaylist, error)
	GetPlaylist(ctx context.Context, id string) (*dto.RemotePlaylist, error)
	CreatePlaylist(ctx context.Context, fields map[string]any) (*dto.RemotePlaylist, error)
	UpdatePlaylist(ctx context.Context, id string, fields map[string]any) (*dto.RemotePlaylist, error)
	DeletePlaylist(ctx context.Context, id string) error

	ListPlayers(ctx context.Context) ([]dto.RemotePlayer, error)
	GetPlayer(ctx context.Context, id string) (*dto.RemotePlayer, error)

	GetCustomFields(ctx context.Context) (*dto.CustomFieldList, error)

	ListSubscriptions(ctx context.Context) ([]dto.RemoteSubscription, error)
	GetSubscription(ctx context.Context, id string) (*dto.RemoteSubscription, error)
	CreateSubscription(ctx context.Context, endpoint string, events []string) (*dto.RemoteSubscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	SubmitIngest(ctx context.Context, videoID string, req *dto.IngestRequest) (string, error)
}

// ITokenExchanger performs the OAuth client-credentials exchange.
type ITokenExchanger interface {
	Exchange(ctx context.Context, clientID, clientSecret string) (*dto.TokenResponse, error)
}

// ClientFactory builds an authorized facade from an account id and a bearer
// token. Injected so tests can substitute fakes without HTTP.
type ClientFactory func(accountID, accessToken string) IVideoCloud
