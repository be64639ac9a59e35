package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	dbm "memoria/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalAccounts(ctx context.Context) (int64, error)
	CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error)
	CountTotalMemorials(ctx context.Context) (int64, error)
	CountPaidMemorials(ctx context.Context) (int64, error)
	CountContributionsByStatus(ctx context.Context, status dbm.ModerationStatus) (int64, error)
	CountActiveSubscribers(ctx context.Context) (int64, error)

	// Creation timestamps inside [start, end], for bucketing.
	MemorialCreatedAt(ctx context.Context, start, end time.Time) ([]int64, error)
	AccountCreatedAt(ctx context.Context, start, end time.Time) ([]int64, error)

	// Plan mix over all memorials
	PlanMix(ctx context.Context) ([]PlanMixRow, error)

	RecentBillingEvents(ctx context.Context, limit int) ([]dbm.BillingEvent, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type PlanMixRow struct {
	PlanID     string `gorm:"column:plan_id"`
	PlanName   string `gorm:"column:plan_name"`
	Period     string `gorm:"column:period"`
	PriceMinor int64  `gorm:"column:price_minor"`
	Count      int64  `gorm:"column:count"`
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Account{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTotalMemorials(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Memorial{}).Count(&n).Error
	return n, err
}

// CountPaidMemorials counts memorials on any plan with a price.
func (r *dashboardRepository) CountPaidMemorials(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Memorial{}).
		Joins("JOIN plans ON plans.id = memorials.plan_id").
		Where("plans.price_minor > 0").
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountContributionsByStatus(ctx context.Context, status dbm.ModerationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Contribution{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountActiveSubscribers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Subscriber{}).
		Where("subscribed = ?", true).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) MemorialCreatedAt(ctx context.Context, start, end time.Time) ([]int64, error) {
	var out []int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Memorial{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Order("created_at").
		Pluck("created_at", &out).Error
	return out, err
}

func (r *dashboardRepository) AccountCreatedAt(ctx context.Context, start, end time.Time) ([]int64, error) {
	var out []int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Order("created_at").
		Pluck("created_at", &out).Error
	return out, err
}

// ---------- Plan mix ----------
func (r *dashboardRepository) PlanMix(ctx context.Context) ([]PlanMixRow, error) {
	var rows []PlanMixRow
	err := r.db.WithContext(ctx).
		Table("memorials").
		Select(`plans.id AS plan_id, plans.name AS plan_name, plans.billing_cycle AS period,
			plans.price_minor AS price_minor, COUNT(memorials.id) AS count`).
		Joins("JOIN plans ON plans.id = memorials.plan_id").
		Group("plans.id, plans.name, plans.billing_cycle, plans.price_minor").
		Order("count DESC, plans.name").
		Scan(&rows).Error
	return rows, err
}

// ---------- Billing ----------
func (r *dashboardRepository) RecentBillingEvents(ctx context.Context, limit int) ([]dbm.BillingEvent, error) {
	var events []dbm.BillingEvent
	err := r.db.WithContext(ctx).
		Omit("payload").
		Order("processed_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
