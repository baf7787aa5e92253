package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/infrastructure/logger"
)

const ingestTokenPrefix = "ingest:token:"

// tokenMintAttempts bounds the collision-check loop when minting a callback
// token. Collisions on random UUIDs are effectively impossible, the bound
// exists so a broken registry cannot loop forever.
const tokenMintAttempts = 3

// IIngestBuilder composes asynchronous asset-ingestion submissions for a video.
type IIngestBuilder interface {
	BuildIngestRequest(ctx context.Context, video *model.Video) (*dto.IngestRequest, bool)
	Submit(ctx context.Context, client repository.IVideoCloud, video *model.Video) (string, bool, error)
	ResolveToken(ctx context.Context, token string) (int64, bool)
}

// IngestBuilder turns dirty asset fields of a video into one ingestion
// request, minting a single-use callback token mapped to the video.
type IngestBuilder struct {
	tracks      repository.ICaptionTrackStore
	tokens      repository.IKeyValueStore
	images      repository.IImageStore
	profile     string
	callbackURL string
	tokenTTL    time.Duration
}

func NewIngestBuilder(
	tracks repository.ICaptionTrackStore,
	tokens repository.IKeyValueStore,
	images repository.IImageStore,
	ingestProfile string,
	callbackBase string,
	tokenTTL time.Duration,
) *IngestBuilder {
	return &IngestBuilder{
		tracks:      tracks,
		tokens:      tokens,
		images:      images,
		profile:     ingestProfile,
		callbackURL: callbackBase,
		tokenTTL:    tokenTTL,
	}
}

// BuildIngestRequest returns (nil, false) when no ingestible asset field is
// dirty. A minted callback token is attached when minting succeeds; a mint
// failure is logged and the request still goes out without a callback so the
// remote side is never blocked on local bookkeeping.
func (b *IngestBuilder) BuildIngestRequest(ctx context.Context, video *model.Video) (*dto.IngestRequest, bool) {
	req := &dto.IngestRequest{}
	dirty := false

	if video.IsDirty("poster_image") && video.PosterImage != "" {
		req.Poster = b.imageRequest(ctx, video.PosterImage)
		dirty = true
	}
	if video.IsDirty("thumbnail_image") && video.ThumbnailImage != "" {
		req.Thumbnail = b.imageRequest(ctx, video.ThumbnailImage)
		dirty = true
	}
	if video.IsDirty("video_source_url") && video.VideoSourceURL != "" {
		req.Master = &dto.IngestMaster{URL: video.VideoSourceURL}
		req.Profile = b.profile
		dirty = true
	}

	tracks, err := b.tracks.ListByVideo(ctx, video.ID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed listing caption tracks for ingest")
	}
	for _, t := range tracks {
		// Tracks without a remote id are local placeholders waiting to be
		// ingested.
		if t.RemoteID != "" || t.SourceURL == "" {
			continue
		}
		req.TextTracks = append(req.TextTracks, dto.IngestTextTrack{
			URL:     t.SourceURL,
			SrcLang: t.SrcLang,
			Kind:    t.Kind,
			Label:   t.Label,
			Default: t.Default,
		})
		dirty = true
	}

	if !dirty {
		return nil, false
	}

	if token, ok := b.mintToken(ctx, video.ID); ok {
		req.Callbacks = []string{fmt.Sprintf("%s/callback/ingest/%s", b.callbackURL, token)}
	}
	return req, true
}

// imageRequest attaches the pixel dimensions when the value names a locally
// stored file. A staged remote URL has no local file; it is submitted without
// dimensions.
func (b *IngestBuilder) imageRequest(ctx context.Context, name string) *dto.IngestImage {
	img := &dto.IngestImage{URL: name}
	if w, h, err := b.images.Dimensions(ctx, name); err == nil {
		img.Width = w
		img.Height = h
	} else {
		logger.GetLogger().WithField("image", name).WithField("error", err).
			Debug("image dimensions unavailable")
	}
	return img
}

// Submit builds and posts the ingestion request for a video that already has
// a remote id. The bool reports whether anything was submitted.
func (b *IngestBuilder) Submit(ctx context.Context, client repository.IVideoCloud, video *model.Video) (string, bool, error) {
	req, ok := b.BuildIngestRequest(ctx, video)
	if !ok {
		return "", false, nil
	}
	jobID, err := client.SubmitIngest(ctx, video.RemoteID, req)
	if err != nil {
		return "", false, fmt.Errorf("submit ingest for video %s: %w", video.RemoteID, err)
	}
	return jobID, true, nil
}

// ResolveToken maps a callback token back to the local video id. Unknown or
// expired tokens return false.
func (b *IngestBuilder) ResolveToken(ctx context.Context, token string) (int64, bool) {
	val, ok, err := b.tokens.Get(ctx, ingestTokenPrefix+token)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed resolving ingest token")
		return 0, false
	}
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (b *IngestBuilder) mintToken(ctx context.Context, videoID int64) (string, bool) {
	for i := 0; i < tokenMintAttempts; i++ {
		token := uuid.NewString()
		_, exists, err := b.tokens.Get(ctx, ingestTokenPrefix+token)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("failed checking ingest token registry")
			return "", false
		}
		if exists {
			continue
		}
		if err := b.tokens.Set(ctx, ingestTokenPrefix+token, strconv.FormatInt(videoID, 10), b.tokenTTL); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed storing ingest token")
			return "", false
		}
		return token, true
	}
	return "", false
}
