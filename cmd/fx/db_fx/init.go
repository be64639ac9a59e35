package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/infra"
)

var Module = fx.Provide(
	provideDB)

func provideDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
