package usecase

import (
	"strings"
	"time"

	"video-sync/domain/repository"
)

// Reconciler applies the generic create-or-update algorithm to every mirrored
// entity kind. Lookup is by remote id, gated by the remote updated_at against
// the local changed timestamp; fields are written only on change so redelivery
// of an unchanged object is a no-op.
type Reconciler struct {
	videos    repository.IVideoStore
	playlists repository.IPlaylistStore
	players   repository.IPlayerStore
	fields    repository.ICustomFieldStore
	tracks    repository.ICaptionTrackStore
	subs      repository.ISubscriptionStore
	taxonomy  repository.ITaxonomyStore
	images    repository.IImageStore
}

func NewReconciler(
	videos repository.IVideoStore,
	playlists repository.IPlaylistStore,
	players repository.IPlayerStore,
	fields repository.ICustomFieldStore,
	tracks repository.ICaptionTrackStore,
	subs repository.ISubscriptionStore,
	taxonomy repository.ITaxonomyStore,
	images repository.IImageStore,
) *Reconciler {
	return &Reconciler{
		videos:    videos,
		playlists: playlists,
		players:   players,
		fields:    fields,
		tracks:    tracks,
		subs:      subs,
		taxonomy:  taxonomy,
		images:    images,
	}
}

type dirtyMarker interface {
	MarkDirty(field string)
}

// fieldChange is one entry of a per-kind field table: apply writes the remote
// value and reports whether anything changed.
type fieldChange struct {
	name  string
	apply func() bool
}

// applyFieldTable runs the table, marking each written field dirty, and
// reports whether any field was written.
func applyFieldTable(entity dirtyMarker, table []fieldChange) bool {
	changed := false
	for _, fc := range table {
		if fc.apply() {
			entity.MarkDirty(fc.name)
			changed = true
		}
	}
	return changed
}

func assign[T comparable](dst *T, src T) bool {
	if *dst == src {
		return false
	}
	*dst = src
	return true
}

func assignSlice[T comparable](dst *[]T, src []T) bool {
	if equalSlices(*dst, src) {
		return false
	}
	*dst = src
	return true
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assignMap(dst *map[string]string, src map[string]string) bool {
	if equalMaps(*dst, src) {
		return false
	}
	*dst = src
	return true
}

func equalMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func assignTimePtr(dst **time.Time, src *time.Time) bool {
	if *dst == nil && src == nil {
		return false
	}
	if *dst != nil && src != nil && (*dst).Equal(*src) {
		return false
	}
	*dst = src
	return true
}

// withScheme defaults bare link values to http:// so stored URLs always parse.
func withScheme(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}

// needsUpdate is the reconciliation gate: a local record is stale only when
// its changed timestamp is strictly older than the remote updated_at.
func needsUpdate(localChanged, remoteUpdated time.Time) bool {
	return localChanged.Before(remoteUpdated)
}
