package exitcode

import (
	"errors"

	"github.com/example/slotwatch/internal/catalog"
	"github.com/example/slotwatch/internal/snapshot"
)

// Exit codes for slotwatch. A scheduler re-running the crawl can use them
// to tell a broken setup from a transient outage.
const (
	Success = 0

	// ConfigError - missing or invalid configuration
	// Don't retry: fix the config first
	ConfigError = 1

	// CatalogError - no cached locations and the booking service could not list them
	// Retry later
	CatalogError = 2

	// StorageError - the new snapshot could not be written
	// Retry after checking the store; the next diff would be wrong otherwise
	StorageError = 3

	// ApplicationError - anything else
	ApplicationError = 4
)

// ConfigErr marks errors raised while reading configuration or opening stores.
type ConfigErr struct{ Err error }

func (e *ConfigErr) Error() string { return e.Err.Error() }
func (e *ConfigErr) Unwrap() error { return e.Err }

// For maps a run error to its exit code.
func For(err error) int {
	var ce *ConfigErr
	var pe *snapshot.PersistenceError
	switch {
	case err == nil:
		return Success
	case errors.As(err, &ce):
		return ConfigError
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return CatalogError
	case errors.As(err, &pe):
		return StorageError
	}
	return ApplicationError
}
