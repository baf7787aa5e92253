package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/usecase"
)

func newTestDeleteChecker() (*usecase.DeleteChecker, *memVideoStore, *memSubStore, *memTrackStore) {
	videos := &memVideoStore{}
	subs := &memSubStore{}
	tracks := &memTrackStore{}
	d := usecase.NewDeleteChecker(videos, &memPlaylistStore{}, &memPlayerStore{}, &memFieldStore{}, tracks, subs)
	return d, videos, subs, tracks
}

func TestCheckVideo_DeletesOn404(t *testing.T) {
	d, videos, _, _ := newTestDeleteChecker()
	videos.videos = append(videos.videos, &model.Video{ID: 10, ProfileID: 1, RemoteID: "v1"})

	gets := 0
	cloud := &fakeCloud{
		getVideo: func(_ context.Context, id string) (*dto.RemoteVideo, error) {
			gets++
			return nil, notFoundErr()
		},
	}

	err := d.CheckVideo(context.Background(), cloud, 10, "v1")
	assert.NoError(t, err)
	assert.Empty(t, videos.videos)
	// Exactly one remote call: the existence probe.
	assert.Equal(t, 1, gets)
}

func TestCheckVideo_KeepsRecordWhenRemoteExists(t *testing.T) {
	d, videos, _, _ := newTestDeleteChecker()
	videos.videos = append(videos.videos, &model.Video{ID: 10, ProfileID: 1, RemoteID: "v1"})

	err := d.CheckVideo(context.Background(), &fakeCloud{}, 10, "v1")
	assert.NoError(t, err)
	assert.Len(t, videos.videos, 1)
}

func TestCheckVideo_PropagatesOtherErrors(t *testing.T) {
	d, videos, _, _ := newTestDeleteChecker()
	videos.videos = append(videos.videos, &model.Video{ID: 10, ProfileID: 1, RemoteID: "v1"})

	cloud := &fakeCloud{
		getVideo: func(context.Context, string) (*dto.RemoteVideo, error) {
			return nil, &dto.APIError{StatusCode: 503, Message: "unavailable"}
		},
	}

	err := d.CheckVideo(context.Background(), cloud, 10, "v1")
	assert.Error(t, err)
	// The record stays; the queue's retry policy owns this failure.
	assert.Len(t, videos.videos, 1)
}

func TestCheckSubscription_DefaultIsResetNotDeleted(t *testing.T) {
	d, _, subs, _ := newTestDeleteChecker()
	subs.subs = append(subs.subs, &model.Subscription{
		ID:        5,
		ProfileID: 1,
		RemoteID:  "remote-sub",
		Default:   true,
		Active:    true,
	})

	cloud := &fakeCloud{
		getSubscription: func(context.Context, string) (*dto.RemoteSubscription, error) {
			return nil, notFoundErr()
		},
	}

	err := d.CheckSubscription(context.Background(), cloud, 1, 5, "remote-sub")
	assert.NoError(t, err)
	assert.Len(t, subs.subs, 1)
	assert.Equal(t, model.DefaultSubscriptionRemoteID, subs.subs[0].RemoteID)
	assert.False(t, subs.subs[0].Active)
}

func TestCheckSubscription_UserCreatedIsDeleted(t *testing.T) {
	d, _, subs, _ := newTestDeleteChecker()
	subs.subs = append(subs.subs, &model.Subscription{
		ID:        6,
		ProfileID: 1,
		RemoteID:  "remote-sub",
	})

	cloud := &fakeCloud{
		getSubscription: func(context.Context, string) (*dto.RemoteSubscription, error) {
			return nil, notFoundErr()
		},
	}

	err := d.CheckSubscription(context.Background(), cloud, 1, 6, "remote-sub")
	assert.NoError(t, err)
	assert.Empty(t, subs.subs)
}

func TestCheckCaptionTrack_DeletedWhenMissingFromParent(t *testing.T) {
	d, _, _, tracks := newTestDeleteChecker()
	tracks.tracks = append(tracks.tracks, &model.CaptionTrack{ID: 3, ProfileID: 1, RemoteID: "t-gone", VideoID: 10})

	cloud := &fakeCloud{
		getVideo: func(_ context.Context, id string) (*dto.RemoteVideo, error) {
			return &dto.RemoteVideo{ID: id, TextTracks: []dto.RemoteTextTrack{{ID: "t-other"}}}, nil
		},
	}

	err := d.CheckCaptionTrack(context.Background(), cloud, 3, "t-gone", "v1")
	assert.NoError(t, err)
	assert.Empty(t, tracks.tracks)
}

func TestCheckCustomField_AbsenceFromSchemaDeletes(t *testing.T) {
	videos := &memVideoStore{}
	fields := &memFieldStore{}
	d := usecase.NewDeleteChecker(videos, &memPlaylistStore{}, &memPlayerStore{}, fields, &memTrackStore{}, &memSubStore{})
	fields.fields = append(fields.fields, &model.CustomField{ID: 2, ProfileID: 1, RemoteID: "genre"})

	cloud := &fakeCloud{
		getCustomFields: func(context.Context) (*dto.CustomFieldList, error) {
			return &dto.CustomFieldList{Fields: []dto.RemoteCustomField{{ID: "topic"}}}, nil
		},
	}

	err := d.CheckCustomField(context.Background(), cloud, 2, "genre")
	assert.NoError(t, err)
	assert.Empty(t, fields.fields)
}
