package store

import (
	"context"
	"errors"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresUserStore is a PostgreSQL implementation of auth.UserRepository.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a new PostgreSQL-backed user store.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Create leaves uniqueness to the users_username_key constraint.
func (p *PostgresUserStore) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrDuplicateUser
		}

		return err
	}

	return nil
}

func (p *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var user auth.User

	err := p.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}

var _ auth.UserRepository = (*PostgresUserStore)(nil)
