package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/analytics"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/middleware"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// URLHandler handles shortening, redirects and link lookups.
type URLHandler struct {
	strategies          map[Strategy]shortener.Strategy
	store               shortener.Repository
	baseURL             string
	defaultStrategy     Strategy
	publishLinkCreated  messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkAccessed messaging.Publish[analytics.LinkAccessedEvent]
	logger              *zap.Logger
}

// NewURLHandler creates a new URL handler with injected strategies.
func NewURLHandler(
	store shortener.Repository,
	baseURL string,
	strategies map[Strategy]shortener.Strategy,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkAccessed messaging.Publish[analytics.LinkAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		strategies:          strategies,
		store:               store,
		baseURL:             strings.TrimSuffix(baseURL, "/"),
		defaultStrategy:     StrategyToken,
		publishLinkCreated:  publishLinkCreated,
		publishLinkAccessed: publishLinkAccessed,
		logger:              logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *ShortenRequest) (*LinkResponse, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	strategyName := req.Body.Strategy
	if strategyName == "" {
		strategyName = h.defaultStrategy
	}

	strategy, ok := h.strategies[strategyName]
	if !ok {
		return nil, huma.Error400BadRequest("Invalid strategy: must be 'token' or 'hash'")
	}

	started := time.Now().UTC()

	link, err := strategy.Shorten(ctx, user.Username, req.Body.TargetURL)
	if err != nil {
		return nil, linkError(h.logger, err)
	}

	meta, _ := middleware.RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Key:       string(link.Key),
		TargetURL: link.TargetURL,
		Owner:     link.Owner,
		Strategy:  string(strategyName),
		Reused:    link.CreatedAt.Before(started),
		CreatedAt: link.CreatedAt,
		ExpiresAt: link.ExpiresAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishLinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	return &LinkResponse{Body: h.linkBody(link)}, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *ShortKeyRequest) (*RedirectResponse, error) {
	key := shortener.Key(req.ShortKey)
	if !key.Valid() {
		return nil, huma.Error404NotFound("Short link not found")
	}

	link, err := h.store.GetByKey(ctx, key)
	if err != nil {
		return nil, linkError(h.logger, err)
	}

	now := time.Now()
	if link.Expired(now) {
		return nil, huma.Error404NotFound("Short link not found")
	}

	if err := h.store.IncrementHits(ctx, key); err != nil && !errors.Is(err, shortener.ErrNotFound) {
		h.logger.Error("failed to count hit", zap.String("key", req.ShortKey), zap.Error(err))
	}

	meta, _ := middleware.RequestMetaFromContext(ctx)
	event := &analytics.LinkAccessedEvent{
		Key:        req.ShortKey,
		AccessedAt: now.UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishLinkAccessed(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Location = link.TargetURL
	resp.CacheControl = "private, max-age=0"

	return resp, nil
}

// GetLink returns a link owned by the caller. Links of other users are
// reported as missing so keys cannot be probed for ownership.
func (h *URLHandler) GetLink(ctx context.Context, req *ShortKeyRequest) (*LinkResponse, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	key := shortener.Key(req.ShortKey)
	if !key.Valid() {
		return nil, huma.Error404NotFound("Short link not found")
	}

	link, err := h.store.GetByKey(ctx, key)
	if err != nil {
		return nil, linkError(h.logger, err)
	}

	if link.Owner != user.Username || link.Expired(time.Now()) {
		return nil, huma.Error404NotFound("Short link not found")
	}

	return &LinkResponse{Body: h.linkBody(link)}, nil
}

func (h *URLHandler) linkBody(link *shortener.Link) LinkBody {
	body := LinkBody{
		ShortKey:  string(link.Key),
		ShortURL:  h.baseURL + "/" + string(link.Key),
		TargetURL: link.TargetURL,
		Owner:     link.Owner,
		Hits:      link.Hits,
		CreatedAt: link.CreatedAt,
	}

	if !link.ExpiresAt.IsZero() {
		expiresAt := link.ExpiresAt
		body.ExpiresAt = &expiresAt
	}

	return body
}
