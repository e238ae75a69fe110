package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS lets the browser client call the API from the listed origins.
// A "*" entry allows any origin. Tokens travel in the Authorization header,
// so credentials (cookies) are never allowed.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location", "Retry-After"},
		MaxAge:         600,
	})
}

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(raw string) []string {
	var origins []string

	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
