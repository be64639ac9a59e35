package contribution_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/repositories"
	"memoria/internal/services"
)

var Module = fx.Provide(provideContributionRepo, provideContributionService)

func provideContributionRepo(db *gorm.DB) repositories.ContributionRepository {
	return repositories.NewContributionRepository(db)
}

func provideContributionService(
	contributionRepo repositories.ContributionRepository,
	memorialRepo repositories.MemorialRepository,
	accountRepo repositories.AccountRepository,
	mailer services.IMailService,
	cfg *config.Config,
	log *zap.Logger,
) services.ContributionService {
	return services.NewContributionService(contributionRepo, memorialRepo, accountRepo, mailer, cfg.SiteURL, log)
}
