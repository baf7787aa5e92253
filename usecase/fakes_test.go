package usecase_test

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"video-sync/domain/dto"
	"video-sync/domain/model"
	"video-sync/domain/repository"
)

// In-memory store fakes shared by the package tests.

type memProfileStore struct {
	profiles map[int64]*model.CredentialProfile
	saves    int
}

func newMemProfileStore(profiles ...*model.CredentialProfile) *memProfileStore {
	s := &memProfileStore{profiles: map[int64]*model.CredentialProfile{}}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *memProfileStore) GetByID(_ context.Context, id int64) (*model.CredentialProfile, error) {
	return s.profiles[id], nil
}

func (s *memProfileStore) GetByAccountID(_ context.Context, accountID string) (*model.CredentialProfile, error) {
	for _, p := range s.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memProfileStore) List(_ context.Context) ([]model.CredentialProfile, error) {
	out := make([]model.CredentialProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memProfileStore) Save(_ context.Context, profile *model.CredentialProfile) error {
	s.saves++
	s.profiles[profile.ID] = profile
	return nil
}

type memVideoStore struct {
	videos []*model.Video
	nextID int64
	saves  int
}

func (s *memVideoStore) GetByID(_ context.Context, id int64) (*model.Video, error) {
	for _, v := range s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (s *memVideoStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.Video, error) {
	for _, v := range s.videos {
		if v.ProfileID == profileID && v.RemoteID == remoteID {
			return v, nil
		}
	}
	return nil, nil
}

func (s *memVideoStore) List(_ context.Context, profileID int64) ([]model.Video, error) {
	var out []model.Video
	for _, v := range s.videos {
		if v.ProfileID == profileID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *memVideoStore) Save(_ context.Context, video *model.Video) error {
	s.saves++
	if video.ID == 0 {
		s.nextID++
		video.ID = s.nextID
		s.videos = append(s.videos, video)
		return nil
	}
	for i, v := range s.videos {
		if v.ID == video.ID {
			s.videos[i] = video
			return nil
		}
	}
	s.videos = append(s.videos, video)
	return nil
}

func (s *memVideoStore) Delete(_ context.Context, id int64) error {
	for i, v := range s.videos {
		if v.ID == id {
			s.videos = append(s.videos[:i], s.videos[i+1:]...)
			return nil
		}
	}
	return nil
}

type memPlaylistStore struct {
	playlists []*model.Playlist
	nextID    int64
	saves     int
}

func (s *memPlaylistStore) GetByID(_ context.Context, id int64) (*model.Playlist, error) {
	for _, p := range s.playlists {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memPlaylistStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.Playlist, error) {
	for _, p := range s.playlists {
		if p.ProfileID == profileID && p.RemoteID == remoteID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memPlaylistStore) List(_ context.Context, profileID int64) ([]model.Playlist, error) {
	var out []model.Playlist
	for _, p := range s.playlists {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPlaylistStore) Save(_ context.Context, playlist *model.Playlist) error {
	s.saves++
	if playlist.ID == 0 {
		s.nextID++
		playlist.ID = s.nextID
		s.playlists = append(s.playlists, playlist)
		return nil
	}
	for i, p := range s.playlists {
		if p.ID == playlist.ID {
			s.playlists[i] = playlist
			return nil
		}
	}
	s.playlists = append(s.playlists, playlist)
	return nil
}

func (s *memPlaylistStore) Delete(_ context.Context, id int64) error {
	for i, p := range s.playlists {
		if p.ID == id {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			return nil
		}
	}
	return nil
}

type memPlayerStore struct {
	players []*model.Player
	nextID  int64
}

func (s *memPlayerStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.Player, error) {
	for _, p := range s.players {
		if p.ProfileID == profileID && p.RemoteID == remoteID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memPlayerStore) List(_ context.Context, profileID int64) ([]model.Player, error) {
	var out []model.Player
	for _, p := range s.players {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPlayerStore) Save(_ context.Context, player *model.Player) error {
	if player.ID == 0 {
		s.nextID++
		player.ID = s.nextID
		s.players = append(s.players, player)
	}
	return nil
}

func (s *memPlayerStore) Delete(_ context.Context, id int64) error {
	for i, p := range s.players {
		if p.ID == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return nil
		}
	}
	return nil
}

type memFieldStore struct {
	fields []*model.CustomField
	nextID int64
}

func (s *memFieldStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.CustomField, error) {
	for _, f := range s.fields {
		if f.ProfileID == profileID && f.RemoteID == remoteID {
			return f, nil
		}
	}
	return nil, nil
}

func (s *memFieldStore) List(_ context.Context, profileID int64) ([]model.CustomField, error) {
	var out []model.CustomField
	for _, f := range s.fields {
		if f.ProfileID == profileID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *memFieldStore) Save(_ context.Context, field *model.CustomField) error {
	if field.ID == 0 {
		s.nextID++
		field.ID = s.nextID
		s.fields = append(s.fields, field)
	}
	return nil
}

func (s *memFieldStore) Delete(_ context.Context, id int64) error {
	for i, f := range s.fields {
		if f.ID == id {
			s.fields = append(s.fields[:i], s.fields[i+1:]...)
			return nil
		}
	}
	return nil
}

type memTrackStore struct {
	tracks []*model.CaptionTrack
	nextID int64
	saves  int
}

func (s *memTrackStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.CaptionTrack, error) {
	for _, t := range s.tracks {
		if t.ProfileID == profileID && t.RemoteID == remoteID {
			return t, nil
		}
	}
	return nil, nil
}

func (s *memTrackStore) List(_ context.Context, profileID int64) ([]model.CaptionTrack, error) {
	var out []model.CaptionTrack
	for _, t := range s.tracks {
		if t.ProfileID == profileID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTrackStore) ListByVideo(_ context.Context, videoID int64) ([]model.CaptionTrack, error) {
	var out []model.CaptionTrack
	for _, t := range s.tracks {
		if t.VideoID == videoID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTrackStore) Save(_ context.Context, track *model.CaptionTrack) error {
	s.saves++
	if track.ID == 0 {
		s.nextID++
		track.ID = s.nextID
		s.tracks = append(s.tracks, track)
		return nil
	}
	for i, t := range s.tracks {
		if t.ID == track.ID {
			s.tracks[i] = track
			return nil
		}
	}
	s.tracks = append(s.tracks, track)
	return nil
}

func (s *memTrackStore) Delete(_ context.Context, id int64) error {
	for i, t := range s.tracks {
		if t.ID == id {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			return nil
		}
	}
	return nil
}

type memSubStore struct {
	subs   []*model.Subscription
	nextID int64
	saves  int
}

func (s *memSubStore) GetByRemoteID(_ context.Context, profileID int64, remoteID string) (*model.Subscription, error) {
	for _, sub := range s.subs {
		if sub.ProfileID == profileID && sub.RemoteID == remoteID {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *memSubStore) GetByEndpoint(_ context.Context, profileID int64, endpoint string) (*model.Subscription, error) {
	for _, sub := range s.subs {
		if sub.ProfileID == profileID && sub.Endpoint == endpoint {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *memSubStore) List(_ context.Context, profileID int64) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, sub := range s.subs {
		if sub.ProfileID == profileID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *memSubStore) Save(_ context.Context, sub *model.Subscription) error {
	s.saves++
	if sub.ID == 0 {
		s.nextID++
		sub.ID = s.nextID
		s.subs = append(s.subs, sub)
		return nil
	}
	for i, existing := range s.subs {
		if existing.ID == sub.ID {
			s.subs[i] = sub
			return nil
		}
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *memSubStore) Delete(_ context.Context, id int64) error {
	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

type memTaxonomy struct {
	terms   map[string]int64
	deleted map[int64]bool
	nextID  int64
}

func newMemTaxonomy() *memTaxonomy {
	return &memTaxonomy{terms: map[string]int64{}, deleted: map[int64]bool{}}
}

func (s *memTaxonomy) EnsureTerm(_ context.Context, _ int64, name string) (int64, error) {
	if id, ok := s.terms[name]; ok {
		return id, nil
	}
	s.nextID++
	s.terms[name] = s.nextID
	return s.nextID, nil
}

func (s *memTaxonomy) TermExists(_ context.Context, id int64) (bool, error) {
	if s.deleted[id] {
		return false, nil
	}
	return id <= s.nextID, nil
}

type memImages struct {
	stored []string
	dims   map[string][2]int
}

func (s *memImages) Store(_ context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	s.stored = append(s.stored, name)
	return name, nil
}

func (s *memImages) Dimensions(_ context.Context, name string) (int, int, error) {
	if d, ok := s.dims[name]; ok {
		return d[0], d[1], nil
	}
	return 0, 0, fmt.Errorf("image %s not stored", name)
}

// memKeyValue implements repository.IKeyValueStore, recording the TTL of the
// last Set and supporting manual expiry.
type memKeyValue struct {
	values  map[string]string
	lastTTL time.Duration
	setErr  error
	getErr  error
}

func newMemKeyValue() *memKeyValue {
	return &memKeyValue{values: map[string]string{}}
}

func (s *memKeyValue) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *memKeyValue) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.lastTTL = ttl
	return nil
}

func (s *memKeyValue) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *memKeyValue) expire(key string) { delete(s.values, key) }

// memSemaphore implements repository.ISemaphoreStore with a real mutex-backed
// flag, counting concurrent holders to assert mutual exclusion.
type memSemaphore struct {
	mu         sync.Mutex
	held       bool
	holders    int
	maxHolders int
	acquires   int
	releases   int
}

func (s *memSemaphore) TryAcquire(_ context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquires++
	if s.held {
		return false, nil
	}
	s.held = true
	s.holders++
	if s.holders > s.maxHolders {
		s.maxHolders = s.holders
	}
	return true, nil
}

func (s *memSemaphore) Release(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	if s.held {
		s.held = false
		s.holders--
	}
	return nil
}

// memQueue implements repository.ITaskQueue in memory with idempotency-key
// dedup and a log of every enqueue for ordering assertions.
type memQueue struct {
	tasks      map[model.TaskKind][]*model.SyncTask
	seen       map[string]bool
	enqueueLog []model.TaskKind
	nextID     int64
	completed  int
	released   int
}

func newMemQueue() *memQueue {
	return &memQueue{tasks: map[model.TaskKind][]*model.SyncTask{}, seen: map[string]bool{}}
}

func (q *memQueue) Enqueue(_ context.Context, task model.SyncTask) error {
	if q.seen[task.IdempotencyKey] {
		return nil
	}
	q.seen[task.IdempotencyKey] = true
	q.nextID++
	task.ID = q.nextID
	q.tasks[task.Queue] = append(q.tasks[task.Queue], &task)
	q.enqueueLog = append(q.enqueueLog, task.Queue)
	return nil
}

func (q *memQueue) Claim(_ context.Context, queue model.TaskKind, _ time.Duration) (*model.SyncTask, error) {
	for _, t := range q.tasks[queue] {
		if t.LeasedUntil == nil {
			lease := time.Now().Add(time.Minute)
			t.LeasedUntil = &lease
			t.Attempts++
			return t, nil
		}
	}
	return nil, nil
}

func (q *memQueue) Complete(_ context.Context, id int64) error {
	for kind, tasks := range q.tasks {
		for i, t := range tasks {
			if t.ID == id {
				q.tasks[kind] = append(tasks[:i], tasks[i+1:]...)
				delete(q.seen, t.IdempotencyKey)
				q.completed++
				return nil
			}
		}
	}
	return fmt.Errorf("task %d not found", id)
}

func (q *memQueue) Release(_ context.Context, id int64) error {
	for _, tasks := range q.tasks {
		for _, t := range tasks {
			if t.ID == id {
				t.LeasedUntil = nil
				q.released++
				return nil
			}
		}
	}
	return fmt.Errorf("task %d not found", id)
}

func (q *memQueue) Count(_ context.Context, queue model.TaskKind) (int, error) {
	return len(q.tasks[queue]), nil
}

func (q *memQueue) Clear(_ context.Context, queue model.TaskKind) error {
	for _, t := range q.tasks[queue] {
		delete(q.seen, t.IdempotencyKey)
	}
	q.tasks[queue] = nil
	return nil
}

// fakeCloud implements repository.IVideoCloud via optional function fields;
// unset methods return empty results.
type fakeCloud struct {
	countVideos    func(context.Context) (int, error)
	listVideos     func(context.Context, int, int) ([]dto.RemoteVideo, error)
	getVideo       func(context.Context, string) (*dto.RemoteVideo, error)
	createVideo    func(context.Context, map[string]any) (*dto.RemoteVideo, error)
	updateVideo    func(context.Context, string, map[string]any) (*dto.RemoteVideo, error)
	getVideoImages func(context.Context, string) (*dto.RemoteImages, error)

	countPlaylists func(context.Context) (int, error)
	listPlaylists  func(context.Context, int, int) ([]dto.RemotePlaylist, error)
	getPlaylist    func(context.Context, string) (*dto.RemotePlaylist, error)
	createPlaylist func(context.Context, map[string]any) (*dto.RemotePlaylist, error)
	updatePlaylist func(context.Context, string, map[string]any) (*dto.RemotePlaylist, error)

	listPlayers func(context.Context) ([]dto.RemotePlayer, error)
	getPlayer   func(context.Context, string) (*dto.RemotePlayer, error)

	getCustomFields func(context.Context) (*dto.CustomFieldList, error)

	listSubscriptions  func(context.Context) ([]dto.RemoteSubscription, error)
	getSubscription    func(context.Context, string) (*dto.RemoteSubscription, error)
	createSubscription func(context.Context, string, []string) (*dto.RemoteSubscription, error)
	deleteSubscription func(context.Context, string) error

	submitIngest func(context.Context, string, *dto.IngestRequest) (string, error)
}

var _ repository.IVideoCloud = (*fakeCloud)(nil)

func (f *fakeCloud) CountVideos(ctx context.Context) (int, error) {
	if f.countVideos != nil {
		return f.countVideos(ctx)
	}
	return 0, nil
}

func (f *fakeCloud) ListVideos(ctx context.Context, offset, limit int) ([]dto.RemoteVideo, error) {
	if f.listVideos != nil {
		return f.listVideos(ctx, offset, limit)
	}
	return nil, nil
}

func (f *fakeCloud) GetVideo(ctx context.Context, id string) (*dto.RemoteVideo, error) {
	if f.getVideo != nil {
		return f.getVideo(ctx, id)
	}
	return &dto.RemoteVideo{ID: id}, nil
}

func (f *fakeCloud) CreateVideo(ctx context.Context, fields map[string]any) (*dto.RemoteVideo, error) {
	if f.createVideo != nil {
		return f.createVideo(ctx, fields)
	}
	return &dto.RemoteVideo{ID: "created"}, nil
}

func (f *fakeCloud) UpdateVideo(ctx context.Context, id string, fields map[string]any) (*dto.RemoteVideo, error) {
	if f.updateVideo != nil {
		return f.updateVideo(ctx, id, fields)
	}
	return &dto.RemoteVideo{ID: id}, nil
}

func (f *fakeCloud) DeleteVideo(context.Context, string) error { return nil }

func (f *fakeCloud) GetVideoImages(ctx context.Context, id string) (*dto.RemoteImages, error) {
	if f.getVideoImages != nil {
		return f.getVideoImages(ctx, id)
	}
	return &dto.RemoteImages{}, nil
}

func (f *fakeCloud) CountPlaylists(ctx context.Context) (int, error) {
	if f.countPlaylists != nil {
		return f.countPlaylists(ctx)
	}
	return 0, nil
}

func (f *fakeCloud) ListPlaylists(ctx context.Context, offset, limit int) ([]dto.RemotePlaylist, error) {
	if f.listPlaylists != nil {
		return f.listPlaylists(ctx, offset, limit)
	}
	return nil, nil
}

func (f *fakeCloud) GetPlaylist(ctx context.Context, id string) (*dto.RemotePlaylist, error) {
	if f.getPlaylist != nil {
		return f.getPlaylist(ctx, id)
	}
	return &dto.RemotePlaylist{ID: id}, nil
}

func (f *fakeCloud) CreatePlaylist(ctx context.Context, fields map[string]any) (*dto.RemotePlaylist, error) {
	if f.createPlaylist != nil {
		return f.createPlaylist(ctx, fields)
	}
	return &dto.RemotePlaylist{ID: "created"}, nil
}

func (f *fakeCloud) UpdatePlaylist(ctx context.Context, id string, fields map[string]any) (*dto.RemotePlaylist, error) {
	if f.updatePlaylist != nil {
		return f.updatePlaylist(ctx, id, fields)
	}
	return &dto.RemotePlaylist{ID: id}, nil
}

func (f *fakeCloud) DeletePlaylist(context.Context, string) error { return nil }

func (f *fakeCloud) ListPlayers(ctx context.Context) ([]dto.RemotePlayer, error) {
	if f.listPlayers != nil {
		return f.listPlayers(ctx)
	}
	return nil, nil
}

func (f *fakeCloud) GetPlayer(ctx context.Context, id string) (*dto.RemotePlayer, error) {
	if f.getPlayer != nil {
		return f.getPlayer(ctx, id)
	}
	return &dto.RemotePlayer{ID: id}, nil
}

func (f *fakeCloud) GetCustomFields(ctx context.Context) (*dto.CustomFieldList, error) {
	if f.getCustomFields != nil {
		return f.getCustomFields(ctx)
	}
	return &dto.CustomFieldList{}, nil
}

func (f *fakeCloud) ListSubscriptions(ctx context.Context) ([]dto.RemoteSubscription, error) {
	if f.listSubscriptions != nil {
		return f.listSubscriptions(ctx)
	}
	return nil, nil
}

func (f *fakeCloud) GetSubscription(ctx context.Context, id string) (*dto.RemoteSubscription, error) {
	if f.getSubscription != nil {
		return f.getSubscription(ctx, id)
	}
	return &dto.RemoteSubscription{ID: id}, nil
}

func (f *fakeCloud) CreateSubscription(ctx context.Context, endpoint string, events []string) (*dto.RemoteSubscription, error) {
	if f.createSubscription != nil {
		return f.createSubscription(ctx, endpoint, events)
	}
	return &dto.RemoteSubscription{ID: "sub", Endpoint: endpoint, Events: events}, nil
}

func (f *fakeCloud) DeleteSubscription(ctx context.Context, id string) error {
	if f.deleteSubscription != nil {
		return f.deleteSubscription(ctx, id)
	}
	return nil
}

func (f *fakeCloud) SubmitIngest(ctx context.Context, videoID string, req *dto.IngestRequest) (string, error) {
	if f.submitIngest != nil {
		return f.submitIngest(ctx, videoID, req)
	}
	return "job-1", nil
}

func notFoundErr() error     { return &dto.APIError{StatusCode: 404, Message: "not found"} }
func unauthorizedErr() error { return &dto.APIError{StatusCode: 401, Message: "unauthorized"} }
