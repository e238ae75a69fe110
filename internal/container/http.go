package container

import (
	"github.com/Harsh-Pachouri/Url-Shortener/internal/analytics"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/handlers"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/health"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/middleware"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// HealthPackage provides the health handler, checking only the backends in use.
func HealthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*health.Handler, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		checks := make(map[string]health.Checker)

		if opts.usesRedis() {
			checks["redis"] = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
		}

		if opts.Storage == StoragePostgres {
			checks["postgres"] = health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool)
		}

		return health.NewHandler(checks, logger), nil
	})
}

// HTTPPackage provides the chi router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		router.Use(chimw.RequestID)
		router.Use(middleware.AccessLog(logger))
		router.Use(chimw.Recoverer)
		router.Use(middleware.CORS(middleware.ParseOrigins(opts.CORSOrigins)))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))

		api.UseMiddleware(middleware.WithRequestMeta(api))
		api.UseMiddleware(middleware.Authenticate(api, do.MustInvoke[*auth.Authenticator](i), logger))
		api.UseMiddleware(middleware.RateLimit(
			api,
			do.MustInvoke[*ratelimit.PolicyLimiter](i),
			ratelimit.NewOperationScopeResolver(),
			logger,
		))

		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		authHandler := handlers.NewAuthHandler(
			do.MustInvoke[*auth.Credentials](i),
			do.MustInvoke[*auth.TokenService](i),
			logger,
		)

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[shortener.Repository](i),
			opts.PublicBaseURL(),
			do.MustInvoke[map[handlers.Strategy]shortener.Strategy](i),
			messaging.NewPublishFunc[analytics.LinkCreatedEvent](publisher, analytics.TopicLinkCreated),
			messaging.NewPublishFunc[analytics.LinkAccessedEvent](publisher, analytics.TopicLinkAccessed),
			logger,
		)

		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))
		handlers.RegisterRoutes(api, authHandler, urlHandler)

		return api, nil
	})
}
