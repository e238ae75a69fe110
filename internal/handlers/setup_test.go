package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/analytics"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/handlers"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/middleware"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const baseURL = "http://sho.rt"

// events records published analytics events.
type events struct {
	mu       sync.Mutex
	created  []analytics.LinkCreatedEvent
	accessed []analytics.LinkAccessedEvent
}

func (e *events) publishCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.created = append(e.created, *event)

	return nil
}

func (e *events) publishAccessed(_ context.Context, event *analytics.LinkAccessedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.accessed = append(e.accessed, *event)

	return nil
}

type server struct {
	t      *testing.T
	router *chi.Mux
	links  shortener.Repository
	events *events
}

type serverOption func(*serverConfig)

type serverConfig struct {
	links shortener.Repository
	users auth.UserRepository
	ttl   time.Duration
}

func withLinks(links shortener.Repository) serverOption {
	return func(c *serverConfig) { c.links = links }
}

func withUsers(users auth.UserRepository) serverOption {
	return func(c *serverConfig) { c.users = users }
}

func withTTL(ttl time.Duration) serverOption {
	return func(c *serverConfig) { c.ttl = ttl }
}

// newServer assembles the API the way the server binary does, on in-memory stores.
func newServer(t *testing.T, opts ...serverOption) *server {
	t.Helper()

	cfg := &serverConfig{
		links: store.NewMemoryStore(),
		users: store.NewMemoryUserStore(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := zap.NewNop()

	credentials, err := auth.NewCredentials(cfg.users, bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService([]byte("handlers-test-secret"), time.Hour)
	require.NoError(t, err)

	gen, err := shortener.NewNanoidGenerator(shortener.MaxKeyLength)
	require.NoError(t, err)

	keys := shortener.NewKeyGenerator(cfg.links, gen, 0)
	keys.Reserve(handlers.ReservedKeys...)

	strategies := map[handlers.Strategy]shortener.Strategy{
		handlers.StrategyToken: shortener.NewTokenStrategy(keys, cfg.ttl),
		handlers.StrategyHash:  shortener.NewHashStrategy(cfg.links, keys, cfg.ttl),
	}

	rec := &events{}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("URL Shortener", "test"))
	api.UseMiddleware(middleware.WithRequestMeta(api))
	api.UseMiddleware(middleware.Authenticate(api, auth.NewAuthenticator(tokens, cfg.users), logger))

	limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.DefaultPolicy().Scale(1000))
	api.UseMiddleware(middleware.RateLimit(api, limiter, ratelimit.NewOperationScopeResolver(), logger))

	handlers.RegisterRoutes(api,
		handlers.NewAuthHandler(credentials, tokens, logger),
		handlers.NewURLHandler(cfg.links, baseURL, strategies, rec.publishCreated, rec.publishAccessed, logger),
	)

	return &server{t: t, router: router, links: cfg.links, events: rec}
}

func (s *server) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *server) postJSON(path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader

	switch b := body.(type) {
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)

		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.do(req)
}

func (s *server) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req)
}

func (s *server) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.do(req)
}

// login registers username and returns a bearer token for it.
func (s *server) login(username, password string) string {
	s.t.Helper()

	w := s.postJSON("/register", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	w = s.postForm("/token", url.Values{"username": {username}, "password": {password}})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
	}

	decode(s.t, w, &body)

	return body.AccessToken
}

func (s *server) shorten(token, target string) handlers.LinkBody {
	s.t.Helper()

	w := s.postJSON("/shorten", token, map[string]string{"target_url": target})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var link handlers.LinkBody
	decode(s.t, w, &link)

	return link
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]any
	decode(t, w, &body)

	for k := range body {
		require.Contains(t, []string{"detail", "$schema"}, k, "unexpected error field in %s", w.Body.String())
	}

	d, ok := body["detail"].(string)
	require.True(t, ok, w.Body.String())

	return d
}
