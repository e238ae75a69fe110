package container

import (
	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/resilience"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// RepositoryPackage provides shortener.Repository and auth.UserRepository for
// the configured storage. Networked stores are wrapped with retries, and
// postgres links get a Redis read-through cache when CacheTTL is set.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (resilience.Policy, error) {
		opts := do.MustInvoke[*Options](i)

		policy := resilience.DefaultPolicy()
		policy.Timeout = opts.StoreTimeout
		policy.Attempts = uint(opts.StoreRetries)

		return policy, nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		policy := do.MustInvoke[resilience.Policy](i)

		switch opts.Storage {
		case StoragePostgres:
			pg := do.MustInvoke[*Postgres](i)

			var links shortener.Repository = store.NewRetryRepository(store.NewPostgresStore(pg.Pool), policy)
			if opts.CacheTTL > 0 {
				rdb := do.MustInvoke[*Redis](i)
				links = store.NewRedisCacheRepository(links, rdb.Client, opts.CacheTTL)
			}

			logger.Info("link storage", zap.String("backend", "postgres"), zap.Duration("cacheTTL", opts.CacheTTL))

			return links, nil
		case StorageRedis:
			rdb := do.MustInvoke[*Redis](i)

			logger.Info("link storage", zap.String("backend", "redis"))

			return store.NewRetryRepository(store.NewRedisStore(rdb.Client), policy), nil
		default:
			logger.Info("link storage", zap.String("backend", "memory"))

			return store.NewMemoryStore(), nil
		}
	})

	do.Provide(injector, func(i *do.Injector) (auth.UserRepository, error) {
		opts := do.MustInvoke[*Options](i)
		policy := do.MustInvoke[resilience.Policy](i)

		switch opts.Storage {
		case StoragePostgres:
			pg := do.MustInvoke[*Postgres](i)

			return store.NewRetryUserRepository(store.NewPostgresUserStore(pg.Pool), policy), nil
		case StorageRedis:
			rdb := do.MustInvoke[*Redis](i)

			return store.NewRetryUserRepository(store.NewRedisUserStore(rdb.Client), policy), nil
		default:
			return store.NewMemoryUserStore(), nil
		}
	})
}
