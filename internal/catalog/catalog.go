// Package catalog provides the list of bookable locations, cached between runs.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/slotwatch/internal/booking"
	"github.com/example/slotwatch/internal/docstore"
	"github.com/example/slotwatch/internal/geo"
)

// CacheKey is the document the raw location records are kept under.
const CacheKey = "locations"

// ErrCatalogUnavailable means there is neither a cache nor a reachable service.
var ErrCatalogUnavailable = errors.New("location catalog unavailable")

// Location is a place where slots can be booked. Name is unique and keys the snapshot.
type Location struct {
	ID          booking.LocationID
	Name        string
	Coordinates geo.Coordinate
	Categories  []int
}

// Searcher is the remote half of the catalog.
type Searcher interface {
	SearchLocations(ctx context.Context) ([]booking.LocationRecord, error)
}

type Catalog struct {
	remote Searcher
	cache  docstore.Store
	log    *slog.Logger
}

func New(remote Searcher, cache docstore.Store, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{remote: remote, cache: cache, log: log}
}

// Locations returns the cached list when there is one and otherwise asks the
// service once and caches the answer.
func (c *Catalog) Locations(ctx context.Context) ([]Location, error) {
	b, err := c.cache.Get(ctx, CacheKey)
	switch {
	case err == nil:
		var recs []booking.LocationRecord
		derr := json.Unmarshal(b, &recs)
		if derr == nil {
			c.log.Debug("location catalog loaded from cache", "count", len(recs))
			return fromRecords(recs), nil
		}
		c.log.Warn("location cache unreadable, refetching", "error", derr)
	case errors.Is(err, docstore.ErrNotFound):
	default:
		c.log.Warn("location cache read failed, refetching", "error", err)
	}
	return c.Refresh(ctx)
}

// Refresh ignores the cache, asks the service and overwrites the cache.
func (c *Catalog) Refresh(ctx context.Context) ([]Location, error) {
	recs, err := c.remote.SearchLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	c.log.Info("location catalog fetched", "count", len(recs))

	if recs == nil {
		recs = []booking.LocationRecord{}
	}
	b, err := json.Marshal(recs)
	if err == nil {
		err = c.cache.Put(ctx, CacheKey, b)
	}
	if err != nil {
		c.log.Warn("location cache write failed", "error", err)
	}
	return fromRecords(recs), nil
}

func fromRecords(recs []booking.LocationRecord) []Location {
	out := make([]Location, 0, len(recs))
	for _, r := range recs {
		cats := make([]int, 0, len(r.ExaminationCategories))
		for _, c := range r.ExaminationCategories {
			cats = append(cats, c.Value)
		}
		out = append(out, Location{
			ID:   r.Location.ID,
			Name: r.Location.Name,
			Coordinates: geo.Coordinate{
				Latitude:  r.Location.Coordinates.Latitude,
				Longitude: r.Location.Coordinates.Longitude,
			},
			Categories: cats,
		})
	}
	return out
}
