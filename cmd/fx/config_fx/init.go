package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"memoria/internal/config"
	"memoria/internal/infra"
)

var Module = fx.Provide(
	config.Load, provideLogger)

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := infra.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}
