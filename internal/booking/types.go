package booking

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// LocationID is the service's opaque location identifier. The service sends
// numbers today; strings are accepted too and either form is sent back verbatim.
type LocationID string

func (id LocationID) String() string {
	if s, err := strconv.Unquote(string(id)); err == nil {
		return s
	}
	return string(id)
}

func (id LocationID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *LocationID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	switch b[0] {
	case '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*id = LocationID(b)
		return nil
	}
	return errors.New("booking: location id must be a number or string")
}

// Coordinates as the service encodes them.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Category struct {
	Value int `json:"value"`
}

// LocationRecord is one entry of the search-information response. The raw
// record is kept so a cached copy round-trips unchanged.
type LocationRecord struct {
	Location struct {
		ID          LocationID  `json:"id"`
		Name        string      `json:"name"`
		Coordinates Coordinates `json:"coordinates"`
	} `json:"location"`
	ExaminationCategories []Category `json:"examinationCategories"`

	raw json.RawMessage
}

type locationRecordFields LocationRecord

func (r *LocationRecord) UnmarshalJSON(b []byte) error {
	var f locationRecordFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = LocationRecord(f)
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r LocationRecord) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(locationRecordFields(r))
}

// Occasion is a single bookable time.
type Occasion struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// OccasionGroup is one bundle of occasions in an occasion-bundles response.
type OccasionGroup struct {
	Occasions []Occasion `json:"occasions"`
}

type searchResponse struct {
	Data struct {
		Locations []LocationRecord `json:"locations"`
	} `json:"data"`
}

type occasionsResponse struct {
	Data []OccasionGroup `json:"data"`
}
