package handlers

import (
	"net/http"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/middleware"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
)

// ReservedKeys are paths served by fixed routes, so they must never be issued as short keys.
var ReservedKeys = []shortener.Key{"docs", "health", "links", "openapi", "register", "schemas", "shorten", "token"}

var bearerAuth = []map[string][]string{{middleware.BearerScheme: {}}}

// RegisterRoutes registers the account and link routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, authHandler *AuthHandler, urlHandler *URLHandler) {
	registerSecurityScheme(api)

	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/register",
		Summary:     "Create an account",
		Tags:        []string{"Auth"},
		Errors:      []int{http.StatusBadRequest, http.StatusConflict},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeAuth},
		},
	}, authHandler.Register)

	huma.Register(api, huma.Operation{
		OperationID: "token",
		Method:      http.MethodPost,
		Path:        "/token",
		Summary:     "Log in",
		Description: "Exchanges form-encoded username and password for a bearer token.",
		Tags:        []string{"Auth"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeAuth},
		},
	}, authHandler.Login)

	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short URL",
		Description: "Creates a short link owned by the caller using the token or hash strategy.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
					{Window: 24 * time.Hour, Max: 1000},
				},
			},
		},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/links/{short_key}",
		Summary:     "Get link details",
		Description: "Returns one of the caller's links including its hit count.",
		Tags:        []string{"Links"},
		Security:    bearerAuth,
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, urlHandler.GetLink)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{short_key}",
		Summary:     "Redirect to target URL",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urlHandler.RedirectToURL)
}

func registerSecurityScheme(api huma.API) {
	components := api.OpenAPI().Components
	if components.SecuritySchemes == nil {
		components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}

	components.SecuritySchemes[middleware.BearerScheme] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
}
