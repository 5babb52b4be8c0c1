package booking

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	LocationQueryFile = "location-query.json"
	TimeslotQueryFile = "timeslot-query.json"
)

//go:embed templates/*.json
var defaults embed.FS

// Templates holds the request bodies the service expects, before the
// per-request fields are filled in. They are kept as raw JSON and decoded
// afresh for every request, so concurrent requests never share a map.
type Templates struct {
	Location json.RawMessage
	Timeslot json.RawMessage
}

// LoadTemplates reads both query templates from dir. A template missing from
// dir falls back to the built-in default.
func LoadTemplates(dir string) (Templates, error) {
	loc, err := readTemplate(dir, LocationQueryFile)
	if err != nil {
		return Templates{}, err
	}
	ts, err := readTemplate(dir, TimeslotQueryFile)
	if err != nil {
		return Templates{}, err
	}
	return Templates{Location: loc, Timeslot: ts}, nil
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() Templates {
	t, err := LoadTemplates("")
	if err != nil {
		panic(err)
	}
	return t
}

func readTemplate(dir, name string) (json.RawMessage, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, name))
		switch {
		case err == nil:
			if !json.Valid(b) {
				return nil, fmt.Errorf("query template %s: invalid JSON", name)
			}
			return b, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("query template %s: %w", name, err)
		}
	}
	return defaults.ReadFile("templates/" + name)
}

func (t Templates) location() (map[string]any, error) { return decodeTemplate(t.Location) }
func (t Templates) timeslot() (map[string]any, error) { return decodeTemplate(t.Timeslot) }

func decodeTemplate(raw json.RawMessage) (map[string]any, error) {
	q := map[string]any{}
	if len(raw) == 0 {
		return q, nil
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("query template: %w", err)
	}
	return q, nil
}
