package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/slotwatch/internal/booking"
)

const searchBody = `{"data":{"locations":[
  {"location":{"id":1000140,"name":"Stockholm","coordinates":{"latitude":59.33,"longitude":18.06},"extra":"kept"},"examinationCategories":[{"value":1},{"value":3}]},
  {"location":{"id":"abc","name":"Uppsala","coordinates":{"latitude":59.85,"longitude":17.63}},"examinationCategories":[]}
]}}`

func TestSearchLocations(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search-information", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, searchBody)
	}))
	defer srv.Close()

	c := booking.New(srv.URL, "19900101-0000", booking.DefaultTemplates(), srv.Client())
	locs, err := c.SearchLocations(context.Background())

	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "19900101-0000", got["socialSecurityNumber"])
	assert.Equal(t, "Stockholm", locs[0].Location.Name)
	assert.Equal(t, "1000140", locs[0].Location.ID.String())
	assert.Equal(t, []booking.Category{{Value: 1}, {Value: 3}}, locs[0].ExaminationCategories)
	assert.Equal(t, "abc", locs[1].Location.ID.String())

	// unknown fields survive a round trip
	b, err := json.Marshal(locs[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"extra":"kept"`)
}

func TestOccasions(t *testing.T) {
	var got struct {
		SSN   string `json:"socialSecurityNumber"`
		Query struct {
			StartDate     string          `json:"startDate"`
			LocationID    json.RawMessage `json:"locationId"`
			VehicleTypeID int             `json:"vehicleTypeId"`
		} `json:"occasionBundleQuery"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/occasion-bundles", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"data":[
			{"occasions":[{"date":"2020-05-01","time":"08:15"},{"date":"2020-05-01","time":"09:00"}]},
			{"occasions":[{"date":"2020-05-02","time":"10:30"}]}
		]}`)
	}))
	defer srv.Close()

	start := time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC)
	c := booking.New(srv.URL+"/", "token", booking.DefaultTemplates(), nil)
	groups, err := c.Occasions(context.Background(), booking.LocationID("1000140"), start)

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Occasions, 2)
	assert.Equal(t, booking.Occasion{Date: "2020-05-02", Time: "10:30"}, groups[1].Occasions[0])

	assert.Equal(t, "token", got.SSN)
	assert.Equal(t, "2020-04-01T12:00:00Z", got.Query.StartDate)
	assert.JSONEq(t, `1000140`, string(got.Query.LocationID))
	assert.Equal(t, 4, got.Query.VehicleTypeID)
}

func TestOccasions_statusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := booking.New(srv.URL, "token", booking.DefaultTemplates(), nil)
	_, err := c.Occasions(context.Background(), booking.LocationID(`"x"`), time.Now())

	var se *booking.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestOccasions_decodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":`)
	}))
	defer srv.Close()

	c := booking.New(srv.URL, "token", booking.DefaultTemplates(), nil)
	_, err := c.Occasions(context.Background(), booking.LocationID("1"), time.Now())

	require.Error(t, err)
	assert.ErrorContains(t, err, "decode response")
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, booking.LocationQueryFile), []byte(`{"licenceId":9}`), 0o644))

	tpl, err := booking.LoadTemplates(dir)

	require.NoError(t, err)
	assert.JSONEq(t, `{"licenceId":9}`, string(tpl.Location))
	assert.Contains(t, string(tpl.Timeslot), "occasionBundleQuery")
}

func TestLoadTemplates_invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, booking.TimeslotQueryFile), []byte(`{`), 0o644))

	_, err := booking.LoadTemplates(dir)

	assert.ErrorContains(t, err, booking.TimeslotQueryFile)
}

func TestLocationID_JSON(t *testing.T) {
	var ids []booking.LocationID
	require.NoError(t, json.Unmarshal([]byte(`[12, "a-b", null]`), &ids))

	assert.Equal(t, []string{"12", "a-b", ""}, []string{ids[0].String(), ids[1].String(), ids[2].String()})

	err := json.Unmarshal([]byte(`[true]`), &ids)
	assert.Error(t, err)
}
