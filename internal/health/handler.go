package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	Healthy        = "healthy"
	Unhealthy      = "unhealthy"

	// DefaultTimeout bounds each dependency check.
	DefaultTimeout = 2 * time.Second
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewRedisChecker reports whether Redis answers PING.
func NewRedisChecker(client *redis.Client) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// NewPostgresChecker reports whether the pool can reach PostgreSQL.
func NewPostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(pool.Ping)
}

// Handler reports the health of the service and the dependencies it was given.
type Handler struct {
	checks  map[string]Checker
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler creates a health handler over named dependency checks.
func NewHandler(checks map[string]Checker, logger *zap.Logger) *Handler {
	return &Handler{checks: checks, timeout: DefaultTimeout, logger: logger}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string            `doc:"ok when every dependency is healthy" enum:"ok,degraded" json:"status"`
		Checks map[string]string `doc:"Per-dependency status"                                   json:"checks,omitempty"`
	}
}

// Check pings every dependency concurrently. The service stays up when a
// dependency fails, so the response is always 200 and Status turns degraded.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Checks = make(map[string]string, len(h.checks))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for name, checker := range h.checks {
		wg.Add(1)

		go func() {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			status := Healthy
			if err := checker.Ping(checkCtx); err != nil {
				h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))

				status = Unhealthy
			}

			mu.Lock()
			resp.Body.Checks[name] = status
			mu.Unlock()
		}()
	}

	wg.Wait()

	for _, status := range resp.Body.Checks {
		if status != Healthy {
			resp.Body.Status = StatusDegraded
		}
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
	}, h.Check)
}
