package container

import (
	"github.com/Harsh-Pachouri/Url-Shortener/internal/analytics"
	analyticsstore "github.com/Harsh-Pachouri/Url-Shortener/internal/analytics/store"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// AnalyticsConsumerGroup is the Redis stream consumer group analytics consumers join.
const AnalyticsConsumerGroup = "analytics"

// PublisherGroupPackage provides the event publisher. In memory mode events go
// through an in-process channel shared with ConsumerGroupPackage.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Events == EventsRedis {
			publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client: do.MustInvoke[*Redis](i).Client,
			}, do.MustInvoke[watermill.LoggerAdapter](i))
			if err != nil {
				return nil, err
			}

			return messaging.NewPublisherGroup(publisher), nil
		}

		return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers and their subscriber.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		if opts.Events == EventsRedis {
			var err error

			subscriber, err = redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*Redis](i).Client,
				ConsumerGroup: AnalyticsConsumerGroup,
			}, do.MustInvoke[watermill.LoggerAdapter](i))
			if err != nil {
				return nil, err
			}
		} else {
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.Consumers(subscriber, analyticsstore.NewLog(logger), logger)...)

		return group, nil
	})
}

// WatermillPackage provides the watermill logger and the in-process channel
// used when events stay in memory.
func WatermillPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (watermill.LoggerAdapter, error) {
		return messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, do.MustInvoke[watermill.LoggerAdapter](i)), nil
	})
}
