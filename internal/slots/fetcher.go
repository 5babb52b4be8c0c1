package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/example/slotwatch/internal/booking"
	"github.com/example/slotwatch/internal/catalog"
)

// OccasionSource is the part of the booking client the fetcher needs.
type OccasionSource interface {
	Occasions(ctx context.Context, id booking.LocationID, start time.Time) ([]booking.OccasionGroup, error)
}

// Fetcher looks up the soonest slots at one location.
type Fetcher struct {
	Source OccasionSource
	Now    func() time.Time
}

func NewFetcher(src OccasionSource) *Fetcher {
	return &Fetcher{Source: src, Now: time.Now}
}

// Fetch returns up to MaxPerLocation slots, soonest first. An empty result
// means the location has no slots; any failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, loc catalog.Location) ([]TimeSlot, error) {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	groups, err := f.Source.Occasions(ctx, loc.ID, now())
	if err != nil {
		return nil, &FetchError{Location: loc.Name, Err: err}
	}
	return Normalize(groups), nil
}

// FetchError marks a location whose slots could not be read on this run.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch slots for %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
