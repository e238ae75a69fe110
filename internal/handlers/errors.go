package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/resilience"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// ErrorBody is the body of every error response.
type ErrorBody struct {
	status int
	Detail string `doc:"Human readable explanation" json:"detail"`
}

func (e *ErrorBody) Error() string { return e.Detail }

func (e *ErrorBody) GetStatus() int { return e.status }

// Schema validation and content type failures are reported as 400 rather
// than huma's 422 and 415, and every error body carries a single detail
// string. Offending values are left out because they may be passwords.
func init() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity || status == http.StatusUnsupportedMediaType {
			status = http.StatusBadRequest
		}

		if len(errs) > 0 {
			details := make([]string, 0, len(errs))
			for _, err := range errs {
				if err != nil {
					details = append(details, describe(err))
				}
			}

			if len(details) > 0 {
				msg = msg + ": " + strings.Join(details, "; ")
			}
		}

		return &ErrorBody{status: status, Detail: msg}
	}
}

// describe renders a validation error with its location but without the value.
func describe(err error) string {
	var detailer huma.ErrorDetailer
	if !errors.As(err, &detailer) {
		return err.Error()
	}

	detail := detailer.ErrorDetail()

	if detail.Location == "" {
		return detail.Message
	}

	return detail.Message + " (" + detail.Location + ")"
}

// errUnavailable is the response for backends that stayed unreachable after retries.
func errUnavailable() error {
	return huma.ErrorWithHeaders(
		huma.Error503ServiceUnavailable("Service temporarily unavailable, please retry"),
		http.Header{"Retry-After": {"1"}},
	)
}

// linkError translates link store and shortener failures.
func linkError(logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("Short link not found")
	case errors.Is(err, shortener.ErrInvalidTarget):
		return huma.Error400BadRequest(capitalize(err.Error()))
	case errors.Is(err, resilience.ErrUnavailable), errors.Is(err, shortener.ErrKeySpaceExhausted):
		logger.Warn("link store unavailable", zap.Error(err))

		return errUnavailable()
	default:
		logger.Error("link operation failed", zap.Error(err))

		return huma.Error500InternalServerError("Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
