package shortener

import "time"

// Key is the short identifier a link is served under.
type Key string

// URLHash identifies an owner's normalized target URL.
type URLHash string

// Link maps a short key to its target URL.
type Link struct {
	Key       Key
	TargetURL string
	Owner     string
	URLHash   URLHash // empty for token strategy, populated for hash strategy
	CreatedAt time.Time
	ExpiresAt time.Time // zero when the link never expires
	Hits      int64
}

// Expired reports whether the link is past its expiry at now.
func (l *Link) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt)
}

// Valid reports whether k could have been issued: MinKeyLength to
// MaxKeyLength characters of A-Za-z0-9_-.
func (k Key) Valid() bool {
	if len(k) < MinKeyLength || len(k) > MaxKeyLength {
		return false
	}

	for i := 0; i < len(k); i++ {
		c := k[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '-') {
			return false
		}
	}

	return true
}
