// Package snapshot holds what was seen on a crawl, compares it with the
// previous crawl and keeps it for the next one.
package snapshot

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/example/slotwatch/internal/slots"
)

// Snapshot maps a location name to its soonest slots, soonest first.
// A location missing from the map was not observed; an empty list was
// observed with no slots.
type Snapshot map[string][]slots.TimeSlot

// Diff maps a location name to the slots that beat the previous snapshot.
// It never holds an empty list.
type Diff map[string][]slots.TimeSlot

// Cities returns the keys in sorted order.
func (s Snapshot) Cities() []string { return sortedKeys(s) }

// Cities returns the keys in sorted order.
func (d Diff) Cities() []string { return sortedKeys(d) }

// Empty reports whether there is nothing to tell.
func (d Diff) Empty() bool { return len(d) == 0 }

// Compare returns the slots in current that are earlier than anything prior
// held for the same city and earlier than cutoff. Cities missing from prior
// are never reported. An empty prior list has no earliest slot, so every
// current slot before cutoff counts.
func Compare(prior, current Snapshot, cutoff slots.TimeSlot) Diff {
	diff := Diff{}
	for city, known := range prior {
		seen, ok := current[city]
		if !ok {
			continue
		}
		var better []slots.TimeSlot
		for _, s := range seen {
			if !s.Before(cutoff) {
				continue
			}
			if len(known) > 0 && !s.Before(known[0]) {
				continue
			}
			better = append(better, s)
		}
		if len(better) > 0 {
			diff[city] = better
		}
	}
	return diff
}

// MarshalIndent encodes d the way it is shown to people: sorted keys,
// four-space indent, no HTML escaping.
func (d Diff) MarshalIndent() ([]byte, error) {
	return encode(map[string][]slots.TimeSlot(d), "    ")
}

// MarshalIndent encodes s like Diff.MarshalIndent.
func (s Snapshot) MarshalIndent() ([]byte, error) {
	return encode(map[string][]slots.TimeSlot(s), "    ")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
