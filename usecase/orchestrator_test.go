package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/domain/repository"
	"video-sync/usecase"
)

type fakeAuth struct {
	cloud repository.IVideoCloud
	err   error
}

func (f *fakeAuth) Authorize(_ context.Context, _ *model.CredentialProfile) (repository.IVideoCloud, error) {
	return f.cloud, f.err
}

type orchestratorFixture struct {
	queue     *memQueue
	profiles  *memProfileStore
	videos    *memVideoStore
	playlists *memPlaylistStore
	players   *memPlayerStore
	fields    *memFieldStore
	tracks    *memTrackStore
	subs      *memSubStore
	orch      *usecase.SyncOrchestrator
}

func newOrchestratorFixture(cloud repository.IVideoCloud, opts usecase.Options) *orchestratorFixture {
	f := &orchestratorFixture{
		queue:     newMemQueue(),
		profiles:  newMemProfileStore(testProfile()),
		videos:    &memVideoStore{},
		playlists: &memPlaylistStore{},
		players:   &memPlayerStore{},
		fields:    &memFieldStore{},
		tracks:    &memTrackStore{},
		subs:      &memSubStore{},
	}
	reconciler := usecase.NewReconciler(
		f.videos, f.playlists, f.players, f.fields, f.tracks, f.subs,
		newMemTaxonomy(), &memImages{},
	)
	deletes := usecase.NewDeleteChecker(f.videos, f.playlists, f.players, f.fields, f.tracks, f.subs)
	f.orch = usecase.NewSyncOrchestrator(
		f.queue, f.profiles, &fakeAuth{cloud: cloud}, reconciler, deletes,
		f.videos, f.playlists, f.players, f.fields, f.tracks, f.subs,
		opts,
	)
	return f
}

func indexOf(log []model.TaskKind, kind model.TaskKind) int {
	for i, k := range log {
		if k == kind {
			return i
		}
	}
	return -1
}

func TestRun_DiscoveryFansOutAndDrains(t *testing.T) {
	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cloud := &fakeCloud{
		listPlayers: func(context.Context) ([]dto.RemotePlayer, error) {
			return []dto.RemotePlayer{{ID: "pl1", Name: "Default", UpdatedAt: updated}}, nil
		},
		getCustomFields: func(context.Context) (*dto.CustomFieldList, error) {
			return &dto.CustomFieldList{
				MaxCustomFields: 10,
				Fields:          []dto.RemoteCustomField{{ID: "genre", DisplayName: "Genre", Type: "string"}},
			}, nil
		},
		countVideos: func(context.Context) (int, error) { return 1, nil },
		listVideos: func(context.Context, int, int) ([]dto.RemoteVideo, error) {
			return []dto.RemoteVideo{*remoteVideo("v1", updated)}, nil
		},
	}
	f := newOrchestratorFixture(cloud, usecase.Options{})

	seeded, err := f.orch.EnqueueClientSyncs(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, seeded)

	report, err := f.orch.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, report.FullyHandled)
	assert.Empty(t, report.Remaining)

	// Everything the remote enumerated now exists locally.
	assert.Len(t, f.players.players, 1)
	assert.Len(t, f.fields.fields, 1)
	assert.Len(t, f.videos.videos, 1)
	assert.Equal(t, 10, f.profiles.profiles[1].MaxCustomFields)

	// Fan-out ordering: discovery enqueued first, pages before per-entity tasks.
	log := f.queue.enqueueLog
	assert.Equal(t, model.TaskClientSync, log[0])
	assert.Less(t, indexOf(log, model.TaskVideoPageSync), indexOf(log, model.TaskVideoSync))
	assert.Less(t, indexOf(log, model.TaskClientSync), indexOf(log, model.TaskPlayerSync))
}

func TestRun_BudgetBoundsOneInvocation(t *testing.T) {
	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f := newOrchestratorFixture(&fakeCloud{}, usecase.Options{Budget: 5})

	for i := 0; i < 7; i++ {
		remote := remoteVideo(string(rune('a'+i)), updated)
		raw, err := json.Marshal(remote)
		assert.NoError(t, err)
		task, err := model.NewSyncTask(model.TaskVideoSync, remote.ID,
			model.EntitySyncPayload{ProfileID: 1, Object: raw})
		assert.NoError(t, err)
		assert.NoError(t, f.queue.Enqueue(context.Background(), task))
	}

	report, err := f.orch.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5, report.Processed)
	assert.False(t, report.FullyHandled)
	assert.Equal(t, 2, report.Remaining[model.TaskVideoSync])

	// A second invocation finishes the backlog.
	report, err = f.orch.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, report.FullyHandled)
	assert.Len(t, f.videos.videos, 7)
}

func TestRun_UnauthorizedDropsItem(t *testing.T) {
	cloud := &fakeCloud{
		getVideo: func(context.Context, string) (*dto.RemoteVideo, error) {
			return nil, unauthorizedErr()
		},
	}
	f := newOrchestratorFixture(cloud, usecase.Options{})
	f.videos.videos = append(f.videos.videos, &model.Video{ID: 10, ProfileID: 1, RemoteID: "v1"})

	task, err := model.NewSyncTask(model.TaskVideoDelete, "v1",
		model.DeleteCheckPayload{ProfileID: 1, LocalID: 10, RemoteID: "v1"})
	assert.NoError(t, err)
	assert.NoError(t, f.queue.Enqueue(context.Background(), task))

	report, err := f.orch.Run(context.Background())
	assert.NoError(t, err)

	// The credential is broken, not the item: completed, not requeued.
	assert.True(t, report.FullyHandled)
	assert.Equal(t, 1, f.queue.completed)
	assert.Equal(t, 0, f.queue.released)
	// And the local record survives a 401 probe.
	assert.Len(t, f.videos.videos, 1)
}

func TestRun_DependencyMissingReleasesAndStops(t *testing.T) {
	f := newOrchestratorFixture(&fakeCloud{}, usecase.Options{})

	remote := &dto.RemotePlaylist{
		ID:        "p1",
		Name:      "Favorites",
		VideoIDs:  []string{"v-not-synced"},
		UpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(remote)
	assert.NoError(t, err)
	task, err := model.NewSyncTask(model.TaskPlaylistSync, remote.ID,
		model.EntitySyncPayload{ProfileID: 1, Object: raw})
	assert.NoError(t, err)
	assert.NoError(t, f.queue.Enqueue(context.Background(), task))

	report, err := f.orch.Run(context.Background())
	assert.NoError(t, err)

	assert.False(t, report.FullyHandled)
	assert.Equal(t, 1, report.Remaining[model.TaskPlaylistSync])
	assert.Equal(t, 1, f.queue.released)
	assert.Equal(t, 0, f.queue.completed)
}

func TestRun_DuplicateEnqueueIsDeduplicated(t *testing.T) {
	f := newOrchestratorFixture(&fakeCloud{}, usecase.Options{})

	task, err := model.NewSyncTask(model.TaskVideoDelete, "v1",
		model.DeleteCheckPayload{ProfileID: 1, LocalID: 10, RemoteID: "v1"})
	assert.NoError(t, err)
	assert.NoError(t, f.queue.Enqueue(context.Background(), task))
	assert.NoError(t, f.queue.Enqueue(context.Background(), task))

	n, err := f.queue.Count(context.Background(), model.TaskVideoDelete)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncQueueOrder_Precedences(t *testing.T) {
	pos := map[model.TaskKind]int{}
	for i, k := range model.SyncQueueOrder {
		pos[k] = i
	}
	// Video deletes resolve before playlist deletes so a playlist referencing
	// a vanished video retries instead of dropping the reference.
	assert.Less(t, pos[model.TaskVideoDelete], pos[model.TaskPlaylistDelete])
	assert.Less(t, pos[model.TaskClientSync], pos[model.TaskPlayerSync])
	assert.Less(t, pos[model.TaskCustomFieldSync], pos[model.TaskVideoSync])
	assert.Less(t, pos[model.TaskVideoSync], pos[model.TaskCaptionTrackSync])
}
