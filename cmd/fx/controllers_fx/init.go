package controllers_fx

import (
	"go.uber.org/fx"

	"memoria/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewMemorialController),
	fx.Provide(controllers.NewGalleryController),
	fx.Provide(controllers.NewContributionController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewContactController),
	fx.Provide(controllers.NewMediaController),
	fx.Provide(controllers.NewDashboardController))
