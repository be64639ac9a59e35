package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"memoria/internal/config"
)

// InitRedis returns nil when REDIS_ADDR is unset or the server does not
// answer; callers treat a nil client as "no rate limiting".
func InitRedis(cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, continuing without it", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}
