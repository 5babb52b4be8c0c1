package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/example/slotwatch/internal/db"
)

// SQLStore keeps documents as rows of the documents table.
type SQLStore struct {
	db  *db.DB
	now func() time.Time
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRow(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if db.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: get %s: %w", key, db.WrapNotFound(err))
	}
	return []byte(body), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, body []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := s.db.Exec(ctx, `INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), s.now().UTC())
	if err != nil {
		return fmt.Errorf("docstore: put %s: %w", key, err)
	}
	return nil
}
