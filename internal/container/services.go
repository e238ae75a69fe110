package container

import (
	"crypto/rand"
	"fmt"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/handlers"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// AuthPackage provides the credential store, token service and authenticator.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.Credentials, error) {
		opts := do.MustInvoke[*Options](i)
		users := do.MustInvoke[auth.UserRepository](i)

		return auth.NewCredentials(users, opts.BcryptCost)
	})

	do.Provide(injector, func(i *do.Injector) (*auth.TokenService, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		secret := []byte(opts.JWTSecret)
		if len(secret) == 0 {
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return nil, fmt.Errorf("generate token secret: %w", err)
			}

			logger.Warn("no jwt secret configured, tokens will not survive a restart")
		}

		return auth.NewTokenService(secret, opts.TokenTTL)
	})

	do.Provide(injector, func(i *do.Injector) (*auth.Authenticator, error) {
		return auth.NewAuthenticator(
			do.MustInvoke[*auth.TokenService](i),
			do.MustInvoke[auth.UserRepository](i),
		), nil
	})
}

// ShortenerPackage provides the shortening strategies keyed by name.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (map[handlers.Strategy]shortener.Strategy, error) {
		opts := do.MustInvoke[*Options](i)
		links := do.MustInvoke[shortener.Repository](i)

		gen, err := shortener.NewNanoidGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		keys := shortener.NewKeyGenerator(links, gen, shortener.DefaultMaxAttempts)
		keys.Reserve(handlers.ReservedKeys...)

		return map[handlers.Strategy]shortener.Strategy{
			handlers.StrategyToken: shortener.NewTokenStrategy(keys, opts.LinkTTL),
			handlers.StrategyHash:  shortener.NewHashStrategy(links, keys, opts.LinkTTL),
		}, nil
	})
}

// RateLimitPackage provides the policy limiter over memory or Redis counters.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()
		if opts.RateLimitStore == StorageRedis {
			counters = store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).Client)
		}

		policy := ratelimit.DefaultPolicy().Scale(float64(opts.RateLimitPercent) / 100)

		return ratelimit.NewPolicyLimiter(counters, policy), nil
	})
}
