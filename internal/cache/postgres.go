package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgxPool is the subset of pgxpool.Pool the backend uses; pgxmock
// implements it for tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// postgresBackend stores entries in a single table with explicit expiry.
type postgresBackend struct {
	pool pgxPool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS location_cache (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_location_cache_expires ON location_cache(expires_at);
`

func newPostgres(ctx context.Context, connString string) (Backend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres connect")
	}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres migrate")
	}
	return &postgresBackend{pool: pool}, nil
}

func (p *postgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	row := p.pool.QueryRow(ctx,
		`SELECT value FROM location_cache WHERE key = $1 AND expires_at > now()`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "cache: postgres get")
	}
	return value, true, nil
}

func (p *postgresBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	_, err := p.pool.Exec(ctx, `
		INSERT INTO location_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return eris.Wrap(err, "cache: postgres set")
	}
	return nil
}

func (p *postgresBackend) Close() error {
	p.pool.Close()
	return nil
}
