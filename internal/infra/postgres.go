package infra

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"memoria/internal/config"
	"memoria/internal/models/db_models"
)

// sqlitePrefix selects the embedded driver, e.g. "sqlite://memoria.db".
const sqlitePrefix = "sqlite://"

func InitPostgresql(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(cfg.PostgresURL, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(cfg.PostgresURL, sqlitePrefix))
	} else {
		dialector = postgres.Open(cfg.PostgresURL)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		log.Error("error connecting to database", zap.Error(err))
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedPlans(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens, migrates and seeds a SQLite database. Tests use it with
// an in-memory DSN.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedPlans(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&db_models.Account{},
		&db_models.Plan{},
		&db_models.Memorial{},
		&db_models.Contribution{},
		&db_models.GalleryImage{},
		&db_models.ContactMessage{},
		&db_models.Subscriber{},
		&db_models.Newsletter{},
		&db_models.BillingEvent{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// DefaultPlans is the catalog inserted into an empty plans table.
func DefaultPlans() []db_models.Plan {
	return []db_models.Plan{
		{
			Name:         db_models.FreePlanName,
			Description:  "A simple memorial page with up to 3 gallery photos.",
			Currency:     "USD",
			BillingCycle: db_models.CycleNone,
			IsActive:     true,
		},
		{
			Name:              "premium",
			Description:       "Full gallery, background music and custom banners, billed monthly.",
			PriceMinor:        999,
			Currency:          "USD",
			BillingCycle:      db_models.CycleMonthly,
			IsActive:          true,
			AllowGallery:      true,
			AllowMusic:        true,
			AllowCustomBanner: true,
		},
		{
			Name:              "premium yearly",
			Description:       "Everything in premium, billed yearly.",
			PriceMinor:        9999,
			Currency:          "USD",
			BillingCycle:      db_models.CycleYearly,
			IsActive:          true,
			AllowGallery:      true,
			AllowMusic:        true,
			AllowCustomBanner: true,
		},
		{
			Name:              "lifetime",
			Description:       "Everything in premium with a single payment.",
			PriceMinor:        19999,
			Currency:          "USD",
			BillingCycle:      db_models.CycleLifetime,
			IsActive:          true,
			AllowGallery:      true,
			AllowMusic:        true,
			AllowCustomBanner: true,
		},
	}
}

func SeedPlans(db *gorm.DB) error {
	var count int64
	if err := db.Model(&db_models.Plan{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count plans: %w", err)
	}
	if count > 0 {
		return nil
	}
	plans := DefaultPlans()
	if err := db.Create(&plans).Error; err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("error closing database connection", zap.Error(err))
	} else {
		log.Info("postgres connection closed")
	}
}
