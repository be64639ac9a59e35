package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/repositories"
	"memoria/internal/services"
	mem "memoria/pkg/memcache"
	"memoria/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo, provideJWTManager)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	jwt *utils.JWTManager,
	cfg *config.Config,
	memcache mem.ResetTokenStore,
	mailService services.IMailService,
	log *zap.Logger,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, jwt, cfg.JWTTTL, memcache, mailService, log)
}
