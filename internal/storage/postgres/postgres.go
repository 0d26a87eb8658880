// Package postgres persists headlines in PostgreSQL via pgx, for setups
// where multiple collectors share one result store.
package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/newshound/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS headlines (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	title TEXT NOT NULL,
	link TEXT,
	page INTEGER NOT NULL,
	collected_at TIMESTAMPTZ NOT NULL
);
`

// New creates a Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, h *storage.Headline) error {
	query := `
	INSERT INTO headlines (id, query, title, link, page, collected_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := b.pool.Exec(ctx, query,
		h.ID, h.Query, h.Title, h.Link, h.Page, h.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Headline, error) {
	query := `SELECT id, query, title, link, page, collected_at FROM headlines WHERE 1=1`
	args := []any{}
	argpos := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND query = $%d`, argpos)
		args = append(args, filter.Query)
		argpos++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND collected_at >= $%d`, argpos)
		args = append(args, *filter.Since)
		argpos++
	}

	query += ` ORDER BY collected_at ASC, id ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argpos)
		args = append(args, filter.Limit)
		argpos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argpos)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: select: %w", err)
	}
	defer rows.Close()

	var results []*storage.Headline
	for rows.Next() {
		var h storage.Headline
		if err := rows.Scan(&h.ID, &h.Query, &h.Title, &h.Link, &h.Page, &h.CollectedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		results = append(results, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
