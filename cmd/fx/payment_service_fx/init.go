package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/repositories"
	"memoria/internal/services"
)

var Module = fx.Provide(
	providePlanRepo, providePlanService, provideBillingEventRepo,
	provideGateway, providePaymentService,
)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository) services.PlanServiceInterface {
	return services.NewPlanService(planRepo)
}

func provideBillingEventRepo(db *gorm.DB) repositories.BillingEventRepository {
	return repositories.NewBillingEventRepository(db)
}

func provideGateway(cfg *config.Config, log *zap.Logger) services.PaymentGateway {
	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if !gateway.Enabled() {
		log.Warn("stripe keys are not set; paid checkouts are disabled")
	}
	return gateway
}

func providePaymentService(
	memorialRepo repositories.MemorialRepository,
	galleryRepo repositories.GalleryRepository,
	accountRepo repositories.AccountRepository,
	eventRepo repositories.BillingEventRepository,
	planService services.PlanServiceInterface,
	media services.MediaLifecycle,
	gateway services.PaymentGateway,
	cfg *config.Config,
	log *zap.Logger,
) services.PaymentService {
	return services.NewPaymentService(memorialRepo, galleryRepo, accountRepo, eventRepo,
		planService, media, gateway, cfg.SiteURL, log)
}
