package contact_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/repositories"
	"memoria/internal/services"
)

var Module = fx.Provide(
	provideContactRepo, provideContactService,
	provideNewsletterRepo, provideNewsletterService,
)

func provideContactRepo(db *gorm.DB) repositories.ContactRepositoryInterface {
	return repositories.NewContactRepository(db)
}

func provideContactService(repo repositories.ContactRepositoryInterface, mailer services.IMailService, cfg *config.Config, log *zap.Logger) services.ContactServiceInterface {
	return services.NewContactService(repo, mailer, cfg.ContactEmail, log)
}

func provideNewsletterRepo(db *gorm.DB) repositories.NewsletterRepository {
	return repositories.NewNewsletterRepository(db)
}

func provideNewsletterService(repo repositories.NewsletterRepository, mailer services.IMailService, cfg *config.Config, log *zap.Logger) services.NewsletterService {
	return services.NewNewsletterService(repo, mailer, cfg.SiteURL, log)
}
