// Package resilience bounds how long and how often store operations are tried.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnavailable is returned once a transient failure outlived every retry.
var ErrUnavailable = errors.New("service unavailable")

// Policy sets the per-attempt timeout and retry budget for an operation.
type Policy struct {
	Timeout  time.Duration
	Attempts uint
	Backoff  time.Duration
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:  2 * time.Second,
		Attempts: 3,
		Backoff:  25 * time.Millisecond,
	}
}

// Do runs op, giving each attempt its own timeout. Transient failures are
// retried with exponential backoff; when attempts run out the last failure is
// returned wrapped in ErrUnavailable. Other errors are returned unchanged.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var permanent, lastErr error

	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	retryErr := retry.Retry(
		func(_ uint) error {
			if err := ctx.Err(); err != nil {
				permanent = err

				return nil
			}

			err := p.attempt(ctx, op)
			if err == nil {
				lastErr = nil

				return nil
			}

			if !IsTransient(err) || ctx.Err() != nil {
				permanent = err

				return nil
			}

			lastErr = err

			return err
		},
		strategy.Limit(attempts),
		strategy.Backoff(backoff.Exponential(p.Backoff, 2)),
	)

	if permanent != nil {
		return permanent
	}

	if retryErr != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
	}

	return nil
}

func (p Policy) attempt(ctx context.Context, op func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	return op(attemptCtx)
}

// IsTransient reports whether err is worth retrying: timeouts, dropped or
// refused connections, and postgres errors that happened before any data was sent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
