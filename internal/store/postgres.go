package store

import (
	"context"
	"errors"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save relies on the primary key: a conflicting insert affects no rows and
// reports ErrKeyExists instead of overwriting.
func (p *PostgresStore) Save(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (short_key, target_url, owner, url_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (short_key) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Key),
		link.TargetURL,
		link.Owner,
		nullableString(link.URLHash),
		link.CreatedAt,
		nullableTime(link.ExpiresAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrKeyExists
	}

	return nil
}

func (p *PostgresStore) GetByKey(ctx context.Context, key shortener.Key) (*shortener.Link, error) {
	query := `
		SELECT short_key, target_url, owner, url_hash, created_at, expires_at, hits
		FROM links
		WHERE short_key = $1
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(key)))
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.Link, error) {
	query := `
		SELECT short_key, target_url, owner, url_hash, created_at, expires_at, hits
		FROM links
		WHERE url_hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(hash)))
}

func (p *PostgresStore) IncrementHits(ctx context.Context, key shortener.Key) error {
	tag, err := p.pool.Exec(ctx, `UPDATE links SET hits = hits + 1 WHERE short_key = $1`, string(key))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func scanLink(row pgx.Row) (*shortener.Link, error) {
	var (
		link      shortener.Link
		urlHash   *string
		expiresAt *time.Time
	)

	err := row.Scan(
		&link.Key,
		&link.TargetURL,
		&link.Owner,
		&urlHash,
		&link.CreatedAt,
		&expiresAt,
		&link.Hits,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if urlHash != nil {
		link.URLHash = shortener.URLHash(*urlHash)
	}

	if expiresAt != nil {
		link.ExpiresAt = *expiresAt
	}

	return &link, nil
}

func nullableString(s shortener.URLHash) *string {
	if s == "" {
		return nil
	}

	str := string(s)

	return &str
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

var _ shortener.Repository = (*PostgresStore)(nil)
