package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// MaxTargetLength bounds the size of accepted target URLs.
const MaxTargetLength = 2048

// ValidateTarget checks that raw is an absolute http or https URL with a host.
// Anything else (relative paths, javascript:, data:, ftp:) is rejected with ErrInvalidTarget.
func ValidateTarget(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidTarget)
	}

	if len(raw) > MaxTargetLength {
		return fmt.Errorf("%w: url exceeds %d characters", ErrInvalidTarget, MaxTargetLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: url is malformed", ErrInvalidTarget)
	}

	if !u.IsAbs() {
		return fmt.Errorf("%w: url must be absolute", ErrInvalidTarget)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidTarget)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidTarget)
	}

	return nil
}

// NormalizeURL normalizes a URL for consistent hashing.
// - Lowercases the scheme and host
// - Removes default ports (80 for http, 443 for https)
// - Removes trailing slashes from path (unless path is just "/")
// - Drops the fragment
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// HashURL scopes a normalized URL to its owner and returns the hex SHA256 digest.
// Two owners shortening the same URL get different hashes, so deduplication never
// hands out a link owned by someone else.
func HashURL(owner, normalizedURL string) URLHash {
	h := sha256.Sum256([]byte(owner + "\n" + normalizedURL))

	return URLHash(hex.EncodeToString(h[:]))
}
