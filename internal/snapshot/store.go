package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/example/slotwatch/internal/docstore"
	"github.com/example/slotwatch/internal/slots"
)

// Key is the document the latest snapshot is kept under.
const Key = "timeslots_per_city"

// ErrNoBaseline means there is no usable previous snapshot.
var ErrNoBaseline = errors.New("no previous snapshot")

// PersistenceError is a failed snapshot write.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persist snapshot: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

type Store struct {
	docs docstore.Store
}

func NewStore(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// Load returns the previous snapshot. Missing or undecodable documents are
// reported as ErrNoBaseline; other read failures are returned as they are.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	b, err := s.docs.Get(ctx, Key)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNoBaseline
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBaseline, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is null", ErrNoBaseline)
	}
	snap := make(Snapshot, len(raw))
	for city, list := range raw {
		out := make([]slots.TimeSlot, 0, len(list))
		for _, v := range list {
			// earlier deployments wrote whatever the service returned
			if ts, ok := slots.Parse(v); ok {
				out = append(out, ts)
			}
		}
		if len(list) > 0 && len(out) == 0 {
			// nothing usable is not the same as no slots
			continue
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		snap[city] = out
	}
	return snap, nil
}

// Save replaces the stored snapshot with snap.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	doc := make(map[string][]slots.TimeSlot, len(snap))
	for city, list := range snap {
		if list == nil {
			list = []slots.TimeSlot{}
		}
		doc[city] = list
	}
	b, err := encode(doc, "")
	if err != nil {
		return &PersistenceError{Err: err}
	}
	if err := s.docs.Put(ctx, Key, b); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}
