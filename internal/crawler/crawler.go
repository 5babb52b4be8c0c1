// Package crawler fetches slots for every admitted location in parallel.
package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/slotwatch/internal/catalog"
	"github.com/example/slotwatch/internal/geo"
	"github.com/example/slotwatch/internal/slots"
	"github.com/example/slotwatch/internal/snapshot"
)

const (
	DefaultWorkers = 30
	DefaultTimeout = 30 * time.Second
)

// SlotFetcher returns the soonest slots at one location.
type SlotFetcher interface {
	Fetch(ctx context.Context, loc catalog.Location) ([]slots.TimeSlot, error)
}

type Crawler struct {
	Fetcher SlotFetcher
	Policy  geo.Policy
	Workers int
	Timeout time.Duration
	Log     *slog.Logger
}

// Result is one pass over the catalog.
type Result struct {
	// Snapshot holds every admitted location whose fetch succeeded.
	Snapshot snapshot.Snapshot
	// Unavailable lists admitted locations whose fetch failed, sorted.
	Unavailable []string
	Admitted    int
}

type outcome struct {
	name  string
	slots []slots.TimeSlot
	err   error
}

// Crawl fetches every location the policy admits, at most Workers at a time,
// and waits for all of them. A failed fetch leaves its location out of the
// snapshot and never stops the others.
func (c *Crawler) Crawl(ctx context.Context, locations []catalog.Location) Result {
	log := c.Log
	if log == nil {
		log = slog.Default()
	}
	workers := c.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	admitted := make([]catalog.Location, 0, len(locations))
	names := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if c.Policy.Admit(loc.Coordinates, loc.Categories) {
			if names[loc.Name] {
				log.Warn("duplicate location name", "location", loc.Name, "id", loc.ID)
			}
			names[loc.Name] = true
			admitted = append(admitted, loc)
		}
	}
	log.Info("crawl started", "locations", len(locations), "admitted", len(admitted), "workers", workers)

	// one slot per task, written only by that task
	outcomes := make([]outcome, len(admitted))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, loc := range admitted {
		if ctx.Err() != nil {
			outcomes[i] = outcome{name: loc.Name, err: &slots.FetchError{Location: loc.Name, Err: ctx.Err()}}
			continue
		}
		g.Go(func() error {
			outcomes[i] = c.fetchOne(ctx, loc, timeout)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Snapshot: snapshot.Snapshot{}, Admitted: len(admitted)}
	for _, o := range outcomes {
		if o.err == nil {
			res.Snapshot[o.name] = o.slots
		}
	}
	// a name observed by any of its locations is not unavailable
	missing := map[string]bool{}
	for _, o := range outcomes {
		if o.err == nil {
			continue
		}
		log.Warn("location unavailable", "location", o.name, "error", o.err)
		if _, ok := res.Snapshot[o.name]; ok || missing[o.name] {
			continue
		}
		missing[o.name] = true
		res.Unavailable = append(res.Unavailable, o.name)
	}
	sort.Strings(res.Unavailable)

	log.Info("crawl finished", "fetched", len(res.Snapshot), "unavailable", len(res.Unavailable))
	return res
}

func (c *Crawler) fetchOne(ctx context.Context, loc catalog.Location, timeout time.Duration) outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ss, err := c.Fetcher.Fetch(ctx, loc)
	if err != nil {
		var fe *slots.FetchError
		if !errors.As(err, &fe) {
			err = &slots.FetchError{Location: loc.Name, Err: err}
		}
		return outcome{name: loc.Name, err: err}
	}
	if ss == nil {
		ss = []slots.TimeSlot{}
	}
	return outcome{name: loc.Name, slots: ss}
}
