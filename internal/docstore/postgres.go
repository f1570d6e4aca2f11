package docstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lock_not_available, raised by FOR UPDATE NOWAIT
const pgLockNotAvailable = "55P03"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	body       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps documents as rows of a single table. A Put that finds the
// row locked by another transaction fails with ErrLocked instead of waiting.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "create documents table")
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, name string) ([]byte, error) {
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var body []byte
	err = p.pool.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, n).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select document %s", name)
	}
	return body, nil
}

func (p *Postgres) Put(ctx context.Context, name string, data []byte) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM documents WHERE name = $1 FOR UPDATE NOWAIT`, n).Scan(&one)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case isLockNotAvailable(err):
		return ErrLocked
	case err != nil:
		return errors.Wrapf(err, "lock document %s", name)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, n, data)
	if isLockNotAvailable(err) {
		return ErrLocked
	}
	if err != nil {
		return errors.Wrapf(err, "upsert document %s", name)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
