package repositories

import (
	"context"

	"gorm.io/gorm"

	"memoria/internal/models/db_models"
)

type BillingEventRepository interface {
	Exists(ctx context.Context, providerEventID string) (bool, error)
	Record(ctx context.Context, event *db_models.BillingEvent) error
}

type billingEventRepository struct {
	db *gorm.DB
}

func NewBillingEventRepository(db *gorm.DB) BillingEventRepository {
	return &billingEventRepository{db: db}
}

func (r *billingEventRepository) Exists(ctx context.Context, providerEventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.BillingEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Count(&count).Error
	return count > 0, err
}

func (r *billingEventRepository) Record(ctx context.Context, event *db_models.BillingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
