// Package docstore keeps small named JSON documents in a directory, a SQL
// table or an object storage bucket.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document has the key.
var ErrNotFound = errors.New("docstore: document not found")

// Store reads and replaces whole documents by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Backend names accepted by STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

func validKey(key string) error {
	if key == "" {
		return errors.New("docstore: empty key")
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("docstore: invalid key %q", key)
		}
	}
	return nil
}
