package analytics

import "time"

const (
	TopicLinkCreated  = "link.created"
	TopicLinkAccessed = "link.accessed"
)

// LinkCreatedEvent is emitted when a user shortens a URL.
type LinkCreatedEvent struct {
	Key       string    `json:"key"`
	TargetURL string    `json:"targetUrl"`
	Owner     string    `json:"owner"`
	Strategy  string    `json:"strategy"`
	Reused    bool      `json:"reused,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkAccessedEvent is emitted on every successful redirect.
type LinkAccessedEvent struct {
	Key        string    `json:"key"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}
