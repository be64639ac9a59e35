package media_fx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"memoria/internal/config"
	"memoria/internal/services"
	"memoria/pkg/mediastore"
)

var Module = fx.Provide(
	provideStore, provideMediaLifecycle)

func provideStore(cfg *config.Config, log *zap.Logger) (mediastore.Store, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendS3:
		store, err := mediastore.NewS3Store(context.Background(), mediastore.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 media store: %w", err)
		}
		log.Info("media store ready", zap.String("backend", "s3"), zap.String("bucket", cfg.S3Bucket))
		return store, nil
	case config.MediaBackendMemory, "":
		log.Warn("media store is in-memory; uploads are lost on restart")
		return mediastore.NewMemoryStore(cfg.SiteURL + "/media"), nil
	default:
		return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}

func provideMediaLifecycle(store mediastore.Store, cfg *config.Config, log *zap.Logger) services.MediaLifecycle {
	return services.NewMediaLifecycle(store, cfg.MediaPurgeDelay, log)
}
