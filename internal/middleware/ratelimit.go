package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RateLimit returns a Huma middleware that applies policy-based rate limiting.
// Scopes come from the resolver; operations may disable limiting or declare
// their own limits through ratelimit.MetadataKey metadata.
//
// Authenticated requests are counted per user, anonymous ones per IP and
// User-Agent, so Authenticate must run first.
func RateLimit(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		key := ClientKey(ctx)
		path := operationPath(ctx)

		var (
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			// Route templates, not concrete paths, so every short key shares one counter.
			exceeded, err = limiter.AllowLimits(ctx.Context(), key, ctx.Method()+" "+path, cfg.Limits)
		} else {
			exceeded, err = limiter.Allow(ctx.Context(), key, resolver.Resolve(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			unavailable(api, ctx)

			return
		}

		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(exceeded.Scope)),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Config.Max),
				zap.Duration("window", exceeded.Config.Window),
				zap.String("client_ip", ClientIP(ctx)),
			)

			retryAfter := int(math.Ceil(exceeded.Config.Window.Seconds()))
			ctx.SetHeader("Retry-After", strconv.Itoa(retryAfter))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests,
				fmt.Sprintf("Rate limit exceeded: %d requests per %s", exceeded.Config.Max, exceeded.Config.Window))

			return
		}

		next(ctx)
	}
}

// ClientKey identifies the caller for rate limiting: the username when the
// request is authenticated, otherwise a hash of IP and User-Agent.
func ClientKey(ctx huma.Context) string {
	if user, ok := auth.UserFromContext(ctx.Context()); ok {
		return "user:" + user.Username
	}

	hash := sha256.Sum256([]byte(ClientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return "anon:" + hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}
