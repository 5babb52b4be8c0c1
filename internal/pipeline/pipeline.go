// Package pipeline runs one crawl from catalog to notification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/slotwatch/internal/catalog"
	"github.com/example/slotwatch/internal/crawler"
	"github.com/example/slotwatch/internal/slots"
	"github.com/example/slotwatch/internal/snapshot"
)

type LocationSource interface {
	Locations(ctx context.Context) ([]catalog.Location, error)
}

type Crawler interface {
	Crawl(ctx context.Context, locations []catalog.Location) crawler.Result
}

type SnapshotStore interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
	Save(ctx context.Context, snap snapshot.Snapshot) error
}

type Notifier interface {
	Notify(ctx context.Context, diff snapshot.Diff) (bool, error)
}

// Runner wires the stages of a run together.
type Runner struct {
	Catalog   LocationSource
	Crawler   Crawler
	Snapshots SnapshotStore
	Notifier  Notifier
	Cutoff    slots.TimeSlot

	// DryRun stops after the diff: nothing is persisted or sent.
	DryRun bool
	Log    *slog.Logger
}

// Report summarises a run.
type Report struct {
	RunID       string
	Locations   int
	Admitted    int
	Fetched     int
	Unavailable []string
	Baseline    bool
	Diff        snapshot.Diff
	Snapshot    snapshot.Snapshot
	Persisted   bool
	Notified    bool
	Duration    time.Duration
}

// Run loads the previous snapshot, crawls, diffs, persists the new snapshot
// and then notifies. Only catalog and persistence failures fail the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	started := time.Now()
	rep := Report{RunID: newRunID(), Diff: snapshot.Diff{}}

	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", rep.RunID)
	log.Info("run started", "dry_run", r.DryRun, "cutoff", r.Cutoff)

	prior, err := r.Snapshots.Load(ctx)
	switch {
	case err == nil:
		rep.Baseline = true
	case errors.Is(err, snapshot.ErrNoBaseline):
		log.Info("no previous snapshot, this run sets the baseline", "reason", err)
	default:
		log.Warn("previous snapshot unreadable, skipping diff", "error", err)
	}

	locations, err := r.Catalog.Locations(ctx)
	if err != nil {
		return rep, fmt.Errorf("load locations: %w", err)
	}
	rep.Locations = len(locations)

	res := r.Crawler.Crawl(ctx, locations)
	if err := ctx.Err(); err != nil {
		// a partial snapshot must not replace the stored one
		return rep, fmt.Errorf("crawl interrupted: %w", err)
	}
	rep.Admitted = res.Admitted
	rep.Fetched = len(res.Snapshot)
	rep.Unavailable = res.Unavailable
	rep.Snapshot = res.Snapshot

	if rep.Baseline {
		rep.Diff = snapshot.Compare(prior, res.Snapshot, r.Cutoff)
	}
	log.Info("diff computed", "baseline", rep.Baseline, "improved_cities", len(rep.Diff))

	if r.DryRun {
		rep.Duration = time.Since(started)
		log.Info("dry run finished", "duration", rep.Duration)
		return rep, nil
	}

	if err := r.Snapshots.Save(ctx, res.Snapshot); err != nil {
		return rep, err
	}
	rep.Persisted = true

	sent, err := r.Notifier.Notify(ctx, rep.Diff)
	if err != nil {
		log.Error("notification failed", "error", err)
	}
	rep.Notified = sent

	rep.Duration = time.Since(started)
	log.Info("run finished",
		"locations", rep.Locations,
		"admitted", rep.Admitted,
		"fetched", rep.Fetched,
		"unavailable", len(rep.Unavailable),
		"notified", rep.Notified,
		"duration", rep.Duration,
	)
	return rep, nil
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
