package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/slotwatch/internal/booking"
	"github.com/example/slotwatch/internal/catalog"
	"github.com/example/slotwatch/internal/docstore"
	"github.com/example/slotwatch/internal/geo"
)

const recordsJSON = `[
 {"location":{"id":1000140,"name":"Stockholm","coordinates":{"latitude":59.33,"longitude":18.06}},"examinationCategories":[{"value":1},{"value":3}]},
 {"location":{"id":1000071,"name":"Uppsala","coordinates":{"latitude":59.85,"longitude":17.63}},"examinationCategories":[{"value":2}]}
]`

type stubSearcher struct {
	calls int
	recs  []booking.LocationRecord
	err   error
}

func (s *stubSearcher) SearchLocations(context.Context) ([]booking.LocationRecord, error) {
	s.calls++
	return s.recs, s.err
}

func records(t *testing.T) []booking.LocationRecord {
	t.Helper()
	var recs []booking.LocationRecord
	require.NoError(t, json.Unmarshal([]byte(recordsJSON), &recs))
	return recs
}

func TestLocations_coldThenWarm(t *testing.T) {
	ctx := context.Background()
	remote := &stubSearcher{recs: records(t)}
	cache := docstore.NewFileStore(t.TempDir())
	c := catalog.New(remote, cache, nil)

	first, err := c.Locations(ctx)
	require.NoError(t, err)
	second, err := c.Locations(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, catalog.Location{
		ID:          booking.LocationID("1000140"),
		Name:        "Stockholm",
		Coordinates: geo.Coordinate{Latitude: 59.33, Longitude: 18.06},
		Categories:  []int{1, 3},
	}, first[0])

	b, err := cache.Get(ctx, catalog.CacheKey)
	require.NoError(t, err)
	assert.JSONEq(t, recordsJSON, string(b))
}

func TestLocations_unavailable(t *testing.T) {
	remote := &stubSearcher{err: errors.New("dial tcp: refused")}
	c := catalog.New(remote, docstore.NewFileStore(t.TempDir()), nil)

	_, err := c.Locations(context.Background())

	require.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	assert.ErrorContains(t, err, "refused")
}

func TestLocations_cacheWinsOverBrokenRemote(t *testing.T) {
	ctx := context.Background()
	cache := docstore.NewFileStore(t.TempDir())
	require.NoError(t, cache.Put(ctx, catalog.CacheKey, []byte(recordsJSON)))
	remote := &stubSearcher{err: errors.New("down")}

	locs, err := catalog.New(remote, cache, nil).Locations(ctx)

	require.NoError(t, err)
	assert.Len(t, locs, 2)
	assert.Zero(t, remote.calls)
}

func TestLocations_corruptCacheIsRefetched(t *testing.T) {
	ctx := context.Background()
	cache := docstore.NewFileStore(t.TempDir())
	require.NoError(t, cache.Put(ctx, catalog.CacheKey, []byte(`[{"location":`)))
	remote := &stubSearcher{recs: records(t)}

	locs, err := catalog.New(remote, cache, nil).Locations(ctx)

	require.NoError(t, err)
	assert.Len(t, locs, 2)
	assert.Equal(t, 1, remote.calls)
}

func TestRefresh_overwritesCache(t *testing.T) {
	ctx := context.Background()
	cache := docstore.NewFileStore(t.TempDir())
	require.NoError(t, cache.Put(ctx, catalog.CacheKey, []byte(`[]`)))
	remote := &stubSearcher{recs: records(t)}

	locs, err := catalog.New(remote, cache, nil).Refresh(ctx)

	require.NoError(t, err)
	assert.Len(t, locs, 2)
	b, err := cache.Get(ctx, catalog.CacheKey)
	require.NoError(t, err)
	assert.JSONEq(t, recordsJSON, string(b))
}

type readOnly struct{ docstore.Store }

func (readOnly) Put(context.Context, string, []byte) error { return errors.New("read-only") }

func TestRefresh_cacheWriteFailureStillReturnsLocations(t *testing.T) {
	remote := &stubSearcher{recs: records(t)}
	c := catalog.New(remote, readOnly{docstore.NewFileStore(t.TempDir())}, nil)

	locs, err := c.Locations(context.Background())

	require.NoError(t, err)
	assert.Len(t, locs, 2)
}
