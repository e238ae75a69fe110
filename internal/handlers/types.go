package handlers

import "time"

// Strategy selects how a short key is chosen for a URL.
type Strategy string

const (
	StrategyToken Strategy = "token"
	StrategyHash  Strategy = "hash"
)

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Body struct {
		Username string `doc:"Unique, case-sensitive" example:"alice"   json:"username" maxLength:"64" minLength:"1"`
		Password string `doc:"At most 72 bytes"       example:"s3cret!" json:"password" maxLength:"72" minLength:"1"`
	}
}

// UserResponse summarizes a registered user. The password hash is never returned.
type UserResponse struct {
	Body struct {
		ID        int64     `doc:"User id"              example:"1"     json:"id"`
		Username  string    `doc:"Username"             example:"alice" json:"username"`
		CreatedAt time.Time `doc:"Registration time"    json:"created_at"`
	}
}

// TokenRequest carries OAuth2 password-flow style credentials.
type TokenRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/x-www-form-urlencoded"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	CacheControl string `header:"Cache-Control"`
	Body         struct {
		AccessToken string    `doc:"Bearer token for protected endpoints" json:"access_token"`
		TokenType   string    `doc:"Always bearer" example:"bearer"      json:"token_type"`
		ExpiresAt   time.Time `doc:"Token expiry"                         json:"expires_at"`
	}
}

// ShortenRequest is the request body for shortening a URL.
type ShortenRequest struct {
	Body struct {
		TargetURL string   `doc:"Absolute http(s) URL to shorten" example:"https://example.com/very/long/path" json:"target_url"`
		Strategy  Strategy `doc:"token always issues a new key, hash reuses your existing key for the same URL" enum:"token,hash" json:"strategy,omitempty"`
	}
}

// LinkBody describes a short link.
type LinkBody struct {
	ShortKey  string     `doc:"The short key"          example:"Ab3_x-9Z"                          json:"short_key"`
	ShortURL  string     `doc:"The full short URL"     example:"http://localhost:8888/Ab3_x-9Z"    json:"short_url"`
	TargetURL string     `doc:"The target URL"         example:"https://example.com/very/long/path" json:"target_url"`
	Owner     string     `doc:"Username of the owner"  example:"alice"                             json:"owner"`
	Hits      int64      `doc:"Number of redirects"    example:"0"                                 json:"hits"`
	CreatedAt time.Time  `doc:"Creation time"          json:"created_at"`
	ExpiresAt *time.Time `doc:"Expiry time, if any"    json:"expires_at,omitempty"`
}

// LinkResponse wraps a LinkBody.
type LinkResponse struct {
	Body LinkBody
}

// ShortKeyRequest identifies a link by its short key.
type ShortKeyRequest struct {
	ShortKey string `doc:"The short key" example:"Ab3_x-9Z" path:"short_key"`
}

// RedirectResponse redirects the client to the target URL.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
}
