// Package sqlite persists headlines in a SQLite database, useful for
// accumulating results across many runs and querying them later.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/newshound/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS headlines (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	title TEXT NOT NULL,
	link TEXT,
	page INTEGER NOT NULL,
	collected_at DATETIME NOT NULL
);
`

// New creates a SQLite-backed storage.Backend at the given DSN.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, h *storage.Headline) error {
	query := `
	INSERT INTO headlines (id, query, title, link, page, collected_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := b.db.ExecContext(ctx, query,
		h.ID, h.Query, h.Title, h.Link, h.Page, h.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Headline, error) {
	query := `SELECT id, query, title, link, page, collected_at FROM headlines WHERE 1=1`
	args := []any{}

	if filter.Query != "" {
		query += ` AND query = ?`
		args = append(args, filter.Query)
	}
	if filter.Since != nil {
		query += ` AND collected_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY collected_at ASC, id ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// OFFSET is only valid after LIMIT; -1 means unbounded.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select: %w", err)
	}
	defer rows.Close()

	var results []*storage.Headline
	for rows.Next() {
		var h storage.Headline
		if err := rows.Scan(&h.ID, &h.Query, &h.Title, &h.Link, &h.Page, &h.CollectedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		results = append(results, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
