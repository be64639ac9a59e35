package memorial_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/config"
	"memoria/internal/repositories"
	"memoria/internal/services"
)

var Module = fx.Provide(
	provideMemorialRepo, provideGalleryRepo, services.NewQRGenerator,
	provideMemorialService, provideGalleryService,
)

func provideMemorialRepo(db *gorm.DB) repositories.MemorialRepository {
	return repositories.NewMemorialRepository(db)
}

func provideGalleryRepo(db *gorm.DB) repositories.GalleryRepository {
	return repositories.NewGalleryRepository(db)
}

func provideMemorialService(
	memorialRepo repositories.MemorialRepository,
	galleryRepo repositories.GalleryRepository,
	planService services.PlanServiceInterface,
	media services.MediaLifecycle,
	gateway services.PaymentGateway,
	qr services.QRGenerator,
	cfg *config.Config,
	log *zap.Logger,
) services.MemorialService {
	return services.NewMemorialService(memorialRepo, galleryRepo, planService, media, gateway, qr, cfg.SiteURL, log)
}

func provideGalleryService(
	galleryRepo repositories.GalleryRepository,
	memorialRepo repositories.MemorialRepository,
	media services.MediaLifecycle,
	log *zap.Logger,
) services.GalleryService {
	return services.NewGalleryService(galleryRepo, memorialRepo, media, log)
}
