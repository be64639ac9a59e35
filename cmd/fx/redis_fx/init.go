package redis_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"memoria/internal/config"
	"memoria/internal/infra"
	"memoria/pkg/ratelimit"
)

var Module = fx.Provide(
	provideRedis, provideRateCounter)

func provideRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *redis.Client {
	client := infra.InitRedis(cfg, log)
	if client != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}
	return client
}

// provideRateCounter yields a nil Counter when Redis is not configured,
// which turns rate limiting off.
func provideRateCounter(client *redis.Client) ratelimit.Counter {
	if client == nil {
		return nil
	}
	return ratelimit.NewRedisCounter(client)
}
