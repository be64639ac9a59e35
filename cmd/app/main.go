package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"memoria/cmd/fx/account_fx"
	"memoria/cmd/fx/config_fx"
	"memoria/cmd/fx/contact_fx"
	"memoria/cmd/fx/contribution_fx"
	"memoria/cmd/fx/controllers_fx"
	"memoria/cmd/fx/dashboard_fx"
	"memoria/cmd/fx/db_fx"
	"memoria/cmd/fx/mail_fx"
	"memoria/cmd/fx/media_fx"
	"memoria/cmd/fx/memcache_fx"
	"memoria/cmd/fx/memorial_fx"
	"memoria/cmd/fx/payment_service_fx"
	"memoria/cmd/fx/redis_fx"
	"memoria/internal/api/controllers"
	"memoria/internal/config"
	"memoria/internal/infra"
	"memoria/internal/models/db_models"
	"memoria/pkg/middleware"
	"memoria/pkg/ratelimit"
	"memoria/pkg/utils"
)

func main() {
	app := fx.New(
		config_fx.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		db_fx.Module,
		redis_fx.Module,
		media_fx.Module,
		mail_fx.Module,
		memcache_fx.Module,
		account_fx.Module,
		payment_service_fx.Module,
		memorial_fx.Module,
		contribution_fx.Module,
		contact_fx.Module,
		dashboard_fx.Module,
		controllers_fx.Module,

		fx.Invoke(utils.RegisterValidators),
		fx.Invoke(StartServer),
		fx.Provide(ProvideRouter),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config, log *zap.Logger) {
	if infra.InitSentry(cfg, log) {
		log.Info("sentry enabled", zap.String("env", cfg.AppEnv))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			defer infra.FlushSentry()
			return srv.Shutdown(ctx)
		},
	})
}

// Controllers groups every handler set the router mounts.
type Controllers struct {
	fx.In

	Account      *controllers.AccountController
	Memorial     *controllers.MemorialController
	Gallery      *controllers.GalleryController
	Contribution *controllers.ContributionController
	Payment      *controllers.PaymentController
	Contact      *controllers.ContactController
	Media        *controllers.MediaController
	Dashboard    *controllers.DashboardController
}

func ProvideRouter(
	cfg *config.Config,
	log *zap.Logger,
	jwt *utils.JWTManager,
	counter ratelimit.Counter,
	ctrl Controllers) *gin.Engine {

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.SentryMiddleware(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware())
	r.MaxMultipartMemory = 32 << 20

	RegisterRoutes(r, jwt, ratelimit.Middleware(counter, "public-write", cfg.RateLimitPerMinute), ctrl)

	return r
}

func RegisterRoutes(r *gin.Engine, jwt *utils.JWTManager, limit gin.HandlerFunc, ctrl Controllers) {
	auth := middleware.JWTAuthMiddleware(jwt)
	optional := middleware.OptionalAuthMiddleware(jwt)

	r.GET("/health", func(c *gin.Context) {
		utils.RespondSuccess(c, nil, "ok")
	})
	r.GET("/media/*key", ctrl.Media.Serve)

	accounts := r.Group("/accounts")
	accounts.POST("/register", limit, ctrl.Account.Register)
	accounts.POST("/login", limit, ctrl.Account.Login)
	accounts.POST("/forgot-password", limit, ctrl.Account.ForgotPassword)
	accounts.POST("/reset-password", limit, ctrl.Account.ResetPassword)
	accounts.GET("/me", auth, ctrl.Account.Me)
	accounts.PUT("/me", auth, ctrl.Account.UpdateProfile)
	accounts.GET("/me/memorials", auth, ctrl.Account.MyMemorials)

	plans := r.Group("/plans")
	plans.GET("", ctrl.Payment.ListPlans)
	plans.POST("/checkout/:planId/:memorialId", auth, ctrl.Payment.Checkout)
	plans.POST("/cancel/:memorialId", auth, ctrl.Payment.CancelPlan)
	plans.GET("/success", auth, ctrl.Payment.PaymentSuccess)
	plans.POST("/webhook", ctrl.Payment.HandleWebhook)

	memorials := r.Group("/memorials")
	memorials.GET("", ctrl.Memorial.Browse)
	memorials.POST("", auth, ctrl.Memorial.Create)
	memorials.GET("/:id", optional, ctrl.Memorial.Get)
	memorials.DELETE("/:id", auth, ctrl.Memorial.Delete)
	memorials.PATCH("/:id/name", auth, ctrl.Memorial.UpdateName)
	memorials.PATCH("/:id/dates", auth, ctrl.Memorial.UpdateDates)
	memorials.PATCH("/:id/quote", auth, ctrl.Memorial.UpdateQuote)
	memorials.PATCH("/:id/biography", auth, ctrl.Memorial.UpdateBiography)
	memorials.PATCH("/:id/banner", auth, ctrl.Memorial.UpdateBanner)
	memorials.POST("/:id/profile-picture", auth, ctrl.Memorial.UploadProfilePicture)
	memorials.POST("/:id/audio", auth, ctrl.Memorial.UploadAudio)

	memorials.GET("/:id/gallery", ctrl.Gallery.List)
	memorials.POST("/:id/gallery", auth, ctrl.Gallery.Upload)
	memorials.DELETE("/:id/gallery/:imageId", auth, ctrl.Gallery.Delete)

	for kind, path := range map[db_models.ContributionKind]string{
		db_models.KindTribute: "tributes",
		db_models.KindStory:   "stories",
	} {
		memorials.GET("/:id/"+path, optional, ctrl.Contribution.List(kind))
		memorials.POST("/:id/"+path, auth, limit, ctrl.Contribution.Submit(kind))

		group := r.Group("/" + path)
		group.Use(auth)
		group.PUT("/:id", ctrl.Contribution.Edit(kind))
		group.DELETE("/:id", ctrl.Contribution.Delete(kind))
		group.POST("/:id/approve", ctrl.Contribution.Approve(kind))
		group.POST("/:id/reject", ctrl.Contribution.Reject(kind))
	}

	r.POST("/contact", limit, ctrl.Contact.Contact)

	newsletter := r.Group("/newsletter")
	newsletter.POST("/subscribe", limit, ctrl.Contact.Subscribe)
	newsletter.POST("/unsubscribe/:email", limit, ctrl.Contact.Unsubscribe)

	admin := r.Group("/admin", auth, middleware.RoleMiddleware(db_models.RoleAdmin))
	admin.POST("/newsletters", ctrl.Contact.SendNewsletter)
	admin.GET("/dashboard", ctrl.Dashboard.GetDashboard)
}
