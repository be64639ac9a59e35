package repositories

import (
	"context"

	"gorm.io/gorm"

	"memoria/internal/models/db_models"
)

type ContactRepositoryInterface interface {
	CreateMessage(ctx context.Context, msg *db_models.ContactMessage) error
	ListMessages(ctx context.Context, page, pageSize int) ([]db_models.ContactMessage, error)
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) CreateMessage(ctx context.Context, msg *db_models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ContactRepository) ListMessages(ctx context.Context, page, pageSize int) ([]db_models.ContactMessage, error) {
	var messages []db_models.ContactMessage
	err := r.db.WithContext(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}
