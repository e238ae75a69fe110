package main

import (
	"context"
	"os"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/container"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/messaging"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Consumes analytics events the server publishes to Redis streams.
func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		options.Events = container.EventsRedis

		injector := do.New()
		do.ProvideValue(injector, options)
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.WatermillPackage(injector)
		container.ConsumerGroupPackage(injector)

		ctx, cancel := context.WithCancel(context.Background())

		var logger *zap.Logger

		hooks.OnStart(func() {
			if !container.CheckOptions(os.Stderr, options) {
				os.Exit(1)
			}

			logger = do.MustInvoke[*zap.Logger](injector)
			group := do.MustInvoke[*messaging.ConsumerGroup](injector)

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			logger.Info("consumer started",
				zap.String("redis", options.RedisAddr),
				zap.String("group", container.AnalyticsConsumerGroup),
			)

			<-ctx.Done()
		})

		hooks.OnStop(func() {
			cancel()

			if logger == nil {
				return
			}

			logger.Info("shutting down")

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Run()
}
