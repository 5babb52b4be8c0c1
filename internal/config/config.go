// Package config reads slotwatch settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/slotwatch/internal/booking"
	"github.com/example/slotwatch/internal/docstore"
	"github.com/example/slotwatch/internal/geo"
	"github.com/example/slotwatch/internal/notify"
	"github.com/example/slotwatch/internal/slots"
)

type Config struct {
	// required by commands that talk to the booking service or Mailjet
	IdentityToken string // SSN
	MailjetToken  string
	FromEmail     string
	ToEmail       string

	BookingBaseURL string
	MailjetURL     string
	QueryDir       string
	DataDir        string
	LogLevel       slog.Level

	// storage
	StoreBackend string
	DatabaseURL  string
	SQLitePath   string
	MinIO        docstore.MinIOConfig

	// admission and diff policy
	CategoryCode         int
	Reference            geo.Coordinate
	MaxDistanceKm        float64
	LegacyAbsCoordinates bool
	Cutoff               slots.TimeSlot

	// crawl
	Workers      int
	FetchTimeout time.Duration
}

// FromEnv reads the environment. Credentials are read but not checked, see
// RequireCredentials.
func FromEnv() (Config, error) {
	cfg := Config{
		IdentityToken:  os.Getenv("SSN"),
		MailjetToken:   os.Getenv("MAILJET_TOKEN"),
		FromEmail:      os.Getenv("FROM_EMAIL"),
		ToEmail:        os.Getenv("TO_EMAIL"),
		BookingBaseURL: getenv("BOOKING_BASE_URL", booking.DefaultBaseURL),
		MailjetURL:     getenv("MAILJET_URL", notify.DefaultMailjetURL),
		QueryDir:       getenv("QUERY_DIR", "data"),
		DataDir:        getenv("DATA_DIR", "data"),
		StoreBackend:   strings.ToLower(getenv("STORE_BACKEND", docstore.BackendFile)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MinIO: docstore.MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenv("MINIO_BUCKET", "slotwatch"),
		},
	}
	cfg.SQLitePath = getenv("SQLITE_PATH", cfg.DataDir+"/slotwatch.db")

	var err error
	if cfg.LogLevel, err = parseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	switch cfg.StoreBackend {
	case docstore.BackendFile, docstore.BackendSQLite:
	case docstore.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case docstore.BackendMinIO:
		if cfg.MinIO.Endpoint == "" {
			return Config{}, fmt.Errorf("MINIO_ENDPOINT is required when STORE_BACKEND=minio")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.MinIO.UseSSL, err = parseBool("MINIO_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.LegacyAbsCoordinates, err = parseBool("LEGACY_ABS_COORDINATES", false); err != nil {
		return Config{}, err
	}

	if cfg.CategoryCode, err = strconv.Atoi(getenv("CATEGORY_CODE", "1")); err != nil {
		return Config{}, fmt.Errorf("invalid CATEGORY_CODE")
	}
	if cfg.Reference.Latitude, err = parseFloat("REFERENCE_LAT", "59.3295887"); err != nil {
		return Config{}, err
	}
	if cfg.Reference.Longitude, err = parseFloat("REFERENCE_LON", "18.0669343"); err != nil {
		return Config{}, err
	}
	if cfg.MaxDistanceKm, err = parseFloat("MAX_DISTANCE_KM", "200"); err != nil || cfg.MaxDistanceKm < 0 {
		return Config{}, fmt.Errorf("invalid MAX_DISTANCE_KM")
	}

	cutoff := getenv("CUTOFF_DATE", "2020-06-26")
	d, err := time.Parse("2006-01-02", cutoff)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CUTOFF_DATE %q: want YYYY-MM-DD", cutoff)
	}
	cfg.Cutoff = slots.FromTime(d)

	workers, err := strconv.Atoi(getenv("WORKERS", "30"))
	if err != nil || workers < 1 {
		return Config{}, fmt.Errorf("invalid WORKERS")
	}
	cfg.Workers = workers

	timeoutSec, err := strconv.Atoi(getenv("FETCH_TIMEOUT_SECONDS", "30"))
	if err != nil || timeoutSec < 1 {
		return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS")
	}
	cfg.FetchTimeout = time.Duration(timeoutSec) * time.Second

	return cfg, nil
}

// RequireCredentials names every missing variable the crawl needs to reach
// the booking service and Mailjet.
func (c Config) RequireCredentials() error {
	var missing []string
	for _, kv := range [][2]string{
		{"SSN", c.IdentityToken},
		{"MAILJET_TOKEN", c.MailjetToken},
		{"FROM_EMAIL", c.FromEmail},
		{"TO_EMAIL", c.ToEmail},
	} {
		if kv[1] == "" {
			missing = append(missing, kv[0])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Policy returns the location admission rule.
func (c Config) Policy() geo.Policy {
	return geo.Policy{
		CategoryCode:         c.CategoryCode,
		Reference:            c.Reference,
		MaxDistanceKm:        c.MaxDistanceKm,
		LegacyAbsCoordinates: c.LegacyAbsCoordinates,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return l, nil
}

func parseBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s", k)
	}
	return b, nil
}

func parseFloat(k, def string) (float64, error) {
	f, err := strconv.ParseFloat(getenv(k, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return f, nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
