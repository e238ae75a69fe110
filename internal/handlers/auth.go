package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/resilience"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	credentials *auth.Credentials
	tokens      *auth.TokenService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(credentials *auth.Credentials, tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{credentials: credentials, tokens: tokens, logger: logger}
}

func (h *AuthHandler) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	user, err := h.credentials.Register(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUser):
			return nil, huma.Error409Conflict("Username already taken")
		case errors.Is(err, auth.ErrPasswordTooLong):
			return nil, huma.Error400BadRequest("Password must be at most 72 bytes")
		case errors.Is(err, resilience.ErrUnavailable):
			h.logger.Warn("user store unavailable", zap.Error(err))

			return nil, errUnavailable()
		default:
			h.logger.Error("registration failed", zap.Error(err))

			return nil, huma.Error500InternalServerError("Internal server error")
		}
	}

	h.logger.Info("user registered", zap.String("username", user.Username), zap.Int64("id", user.ID))

	resp := &UserResponse{}
	resp.Body.ID = user.ID
	resp.Body.Username = user.Username
	resp.Body.CreatedAt = user.CreatedAt

	return resp, nil
}

func (h *AuthHandler) Login(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	username, password, err := parseCredentials(req.ContentType, req.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest(capitalize(err.Error()))
	}

	ok, err := h.credentials.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, resilience.ErrUnavailable) {
			h.logger.Warn("user store unavailable", zap.Error(err))

			return nil, errUnavailable()
		}

		h.logger.Error("credential check failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("Internal server error")
	}

	if !ok {
		return nil, huma.ErrorWithHeaders(
			huma.Error401Unauthorized("Incorrect username or password"),
			http.Header{"WWW-Authenticate": {"Bearer"}},
		)
	}

	token, expiresAt, err := h.tokens.Issue(username)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("Internal server error")
	}

	resp := &TokenResponse{}
	resp.CacheControl = "no-store"
	resp.Body.AccessToken = token
	resp.Body.TokenType = auth.TokenType
	resp.Body.ExpiresAt = expiresAt

	return resp, nil
}

var (
	errMissingCredentials = errors.New("username and password are required")
	errMalformedBody      = errors.New("malformed request body")
)

// parseCredentials reads username and password from a form body, or from a
// JSON object when the request says so.
func parseCredentials(contentType string, body []byte) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var username, password string

	if mediaType == "application/json" {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}

		if err := json.Unmarshal(body, &creds); err != nil {
			return "", "", errMalformedBody
		}

		username, password = creds.Username, creds.Password
	} else {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return "", "", errMalformedBody
		}

		username, password = form.Get("username"), form.Get("password")
	}

	if username == "" || password == "" {
		return "", "", errMissingCredentials
	}

	return username, password, nil
}
