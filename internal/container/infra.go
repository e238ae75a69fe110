package container

import (
	"context"
	"fmt"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Redis owns the shared client so the injector closes it on shutdown.
type Redis struct {
	*redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// Postgres owns the connection pool so the injector closes it on shutdown.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// RedisPackage provides *Redis. The client connects lazily on first use.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides *Postgres with the schema migrated to the latest version.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := migrations.Up(opts.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		logger.Info("postgres ready")

		return &Postgres{Pool: pool}, nil
	})
}
