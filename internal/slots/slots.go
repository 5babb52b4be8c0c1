// Package slots turns occasion responses into short, ordered slot lists.
package slots

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/slotwatch/internal/booking"
)

// Layout is the encoding of a TimeSlot. Lexicographic order of values in this
// layout is chronological order.
const Layout = "2006-01-02 15:04"

// MaxPerLocation caps how many slots are kept for one location.
const MaxPerLocation = 5

// TimeSlot is one bookable local time, "YYYY-MM-DD HH:MM".
type TimeSlot string

// Parse validates s and returns it in canonical form. Seconds are dropped.
func Parse(s string) (TimeSlot, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{Layout, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeSlot(t.Format(Layout)), true
		}
	}
	return "", false
}

// FromTime formats t in its own location.
func FromTime(t time.Time) TimeSlot { return TimeSlot(t.Format(Layout)) }

// Before reports whether s is strictly earlier than o.
func (s TimeSlot) Before(o TimeSlot) bool { return s < o }

// Normalize flattens groups into slots, drops malformed entries, sorts the
// rest and keeps the first MaxPerLocation.
func Normalize(groups []booking.OccasionGroup) []TimeSlot {
	out := make([]TimeSlot, 0, MaxPerLocation)
	for _, g := range groups {
		for _, o := range g.Occasions {
			raw := o.Date + " " + o.Time
			ts, ok := Parse(raw)
			if !ok {
				slog.Debug("dropping malformed occasion", "value", raw)
				continue
			}
			out = append(out, ts)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > MaxPerLocation {
		out = out[:MaxPerLocation]
	}
	return out
}
