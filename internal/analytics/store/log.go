package store

import (
	"context"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/analytics"
	"go.uber.org/zap"
)

// Log is an analytics.Store that only writes events to the log.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging analytics store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	l.logger.Info("link created",
		zap.String("key", event.Key),
		zap.String("owner", event.Owner),
		zap.String("strategy", event.Strategy),
		zap.Bool("reused", event.Reused),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (l *Log) SaveLinkAccessed(_ context.Context, event *analytics.LinkAccessedEvent) error {
	l.logger.Info("link accessed",
		zap.String("key", event.Key),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

var _ analytics.Store = (*Log)(nil)
