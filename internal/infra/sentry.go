package infra

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"memoria/internal/config"
)

// InitSentry configures the global hub. It reports whether capture is active.
func InitSentry(cfg *config.Config, log *zap.Logger) bool {
	if cfg.SentryDSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		log.Warn("sentry initialization failed", zap.Error(err))
		return false
	}
	return true
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
