package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/usecase"
)

func newTestIngestBuilder(tracks *memTrackStore, tokens *memKeyValue) *usecase.IngestBuilder {
	return newTestIngestBuilderWithImages(tracks, tokens, &memImages{})
}

func newTestIngestBuilderWithImages(tracks *memTrackStore, tokens *memKeyValue, images *memImages) *usecase.IngestBuilder {
	return usecase.NewIngestBuilder(tracks, tokens, images,
		"multi-platform-standard-static", "https://sync.example.org", time.Hour)
}

func TestBuildIngestRequest_NothingDirty(t *testing.T) {
	b := newTestIngestBuilder(&memTrackStore{}, newMemKeyValue())
	video := &model.Video{ID: 1, RemoteID: "v1", PosterImage: "poster.jpg"}

	req, ok := b.BuildIngestRequest(context.Background(), video)
	assert.False(t, ok)
	assert.Nil(t, req)
}

func TestBuildIngestRequest_DirtyAssetsAndCallback(t *testing.T) {
	tracks := &memTrackStore{}
	tracks.tracks = append(tracks.tracks,
		// A placeholder awaiting ingestion and an already-synced track.
		&model.CaptionTrack{ID: 1, VideoID: 1, ProfileID: 1, SourceURL: "http://cdn.example.org/en.vtt", SrcLang: "en", Kind: "captions"},
		&model.CaptionTrack{ID: 2, VideoID: 1, ProfileID: 1, RemoteID: "t1", SourceURL: "http://cdn.example.org/fr.vtt", SrcLang: "fr", Kind: "captions"},
	)
	tokens := newMemKeyValue()
	b := newTestIngestBuilder(tracks, tokens)

	video := &model.Video{ID: 1, RemoteID: "v1", PosterImage: "poster.jpg", VideoSourceURL: "http://cdn.example.org/master.mp4"}
	video.MarkDirty("poster_image")
	video.MarkDirty("video_source_url")

	req, ok := b.BuildIngestRequest(context.Background(), video)
	assert.True(t, ok)
	assert.NotNil(t, req.Poster)
	assert.Nil(t, req.Thumbnail)
	assert.Equal(t, "http://cdn.example.org/master.mp4", req.Master.URL)
	assert.Equal(t, "multi-platform-standard-static", req.Profile)

	// Only the placeholder track is submitted.
	assert.Len(t, req.TextTracks, 1)
	assert.Equal(t, "en", req.TextTracks[0].SrcLang)

	// The callback URL carries a resolvable token.
	assert.Len(t, req.Callbacks, 1)
	parts := strings.Split(req.Callbacks[0], "/callback/ingest/")
	assert.Len(t, parts, 2)
	id, ok := b.ResolveToken(context.Background(), parts[1])
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, time.Hour, tokens.lastTTL)
}

func TestBuildIngestRequest_CarriesStoredImageDimensions(t *testing.T) {
	images := &memImages{dims: map[string][2]int{"poster.jpg": {1920, 1080}}}
	b := newTestIngestBuilderWithImages(&memTrackStore{}, newMemKeyValue(), images)

	video := &model.Video{ID: 1, RemoteID: "v1", PosterImage: "poster.jpg", ThumbnailImage: "thumb.jpg"}
	video.MarkDirty("poster_image")
	video.MarkDirty("thumbnail_image")

	req, ok := b.BuildIngestRequest(context.Background(), video)
	assert.True(t, ok)
	assert.Equal(t, 1920, req.Poster.Width)
	assert.Equal(t, 1080, req.Poster.Height)
	// No stored file for the thumbnail; the sub-request goes out without
	// dimensions rather than failing the submission.
	assert.Equal(t, "thumb.jpg", req.Thumbnail.URL)
	assert.Zero(t, req.Thumbnail.Width)
	assert.Zero(t, req.Thumbnail.Height)
}

func TestBuildIngestRequest_TokenMintFailureStillSubmits(t *testing.T) {
	tokens := newMemKeyValue()
	tokens.setErr = errors.New("registry down")
	b := newTestIngestBuilder(&memTrackStore{}, tokens)

	video := &model.Video{ID: 1, RemoteID: "v1", PosterImage: "poster.jpg"}
	video.MarkDirty("poster_image")

	req, ok := b.BuildIngestRequest(context.Background(), video)
	assert.True(t, ok)
	assert.NotNil(t, req.Poster)
	// Best effort: no callback, but the request still goes out.
	assert.Empty(t, req.Callbacks)
}

func TestSubmit_PostsWhenDirty(t *testing.T) {
	b := newTestIngestBuilder(&memTrackStore{}, newMemKeyValue())
	video := &model.Video{ID: 1, RemoteID: "v1", ThumbnailImage: "thumb.jpg"}
	video.MarkDirty("thumbnail_image")

	var submittedTo string
	cloud := &fakeCloud{
		submitIngest: func(_ context.Context, videoID string, req *dto.IngestRequest) (string, error) {
			submittedTo = videoID
			assert.NotNil(t, req.Thumbnail)
			return "job-9", nil
		},
	}

	jobID, submitted, err := b.Submit(context.Background(), cloud, video)
	assert.NoError(t, err)
	assert.True(t, submitted)
	assert.Equal(t, "job-9", jobID)
	assert.Equal(t, "v1", submittedTo)
}

func TestSubmit_NoopWhenClean(t *testing.T) {
	b := newTestIngestBuilder(&memTrackStore{}, newMemKeyValue())
	video := &model.Video{ID: 1, RemoteID: "v1"}

	_, submitted, err := b.Submit(context.Background(), &fakeCloud{}, video)
	assert.NoError(t, err)
	assert.False(t, submitted)
}
