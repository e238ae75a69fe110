package analytics

import (
	"context"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Store persists analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkAccessed(ctx context.Context, event *LinkAccessedEvent) error
}

// Consumers returns one consumer per analytics topic, each writing into store.
func Consumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer[LinkCreatedEvent](subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer[LinkAccessedEvent](subscriber, TopicLinkAccessed, store.SaveLinkAccessed, logger),
	}
}
