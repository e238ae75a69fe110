package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/resilience"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// BearerScheme is the security scheme name operations reference to require a token.
const BearerScheme = "bearer"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.User, error)
}

// Authenticate returns a Huma middleware that enforces bearer authentication
// on operations whose Security lists BearerScheme. The authenticated user is
// stored in the request context.
func Authenticate(
	api huma.API,
	authn Authenticator,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresBearer(ctx.Operation()) {
			next(ctx)

			return
		}

		token, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			unauthorized(api, ctx, "Not authenticated")

			return
		}

		user, err := authn.Authenticate(ctx.Context(), token)

		switch {
		case err == nil:
			next(huma.WithContext(ctx, auth.ContextWithUser(ctx.Context(), user)))
		case errors.Is(err, auth.ErrExpiredToken):
			unauthorized(api, ctx, "Token has expired")
		case errors.Is(err, auth.ErrInvalidToken):
			unauthorized(api, ctx, "Could not validate credentials")
		case errors.Is(err, resilience.ErrUnavailable):
			logger.Warn("authentication backend unavailable", zap.Error(err))
			unavailable(api, ctx)
		default:
			logger.Error("authentication failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "Internal server error")
		}
	}
}

func requiresBearer(op *huma.Operation) bool {
	if op == nil {
		return false
	}

	for _, requirement := range op.Security {
		if _, ok := requirement[BearerScheme]; ok {
			return true
		}
	}

	return false
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(api huma.API, ctx huma.Context, detail string) {
	ctx.SetHeader("WWW-Authenticate", "Bearer")
	_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, detail)
}

// unavailable answers 503 for a backend that stayed unreachable after retries.
func unavailable(api huma.API, ctx huma.Context) {
	ctx.SetHeader("Retry-After", "1")
	_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
}
