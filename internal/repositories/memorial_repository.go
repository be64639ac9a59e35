package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"memoria/internal/models/db_models"
)

// MemorialFilter narrows the public directory. Zero values match everything.
type MemorialFilter struct {
	Name        string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

type MemorialRepository interface {
	Create(ctx context.Context, memorial *db_models.Memorial) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Memorial, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]db_models.Memorial, error)
	Browse(ctx context.Context, filter MemorialFilter, page, pageSize int) ([]db_models.Memorial, int64, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) ([]db_models.Memorial, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type memorialRepository struct {
	db *gorm.DB
}

func NewMemorialRepository(db *gorm.DB) MemorialRepository {
	return &memorialRepository{db: db}
}

func (r *memorialRepository) Create(ctx context.Context, memorial *db_models.Memorial) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(memorial).Error
}

func (r *memorialRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Memorial, error) {
	var memorial db_models.Memorial
	err := r.db.WithContext(ctx).
		Preload("Plan").
		First(&memorial, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &memorial, nil
}

func (r *memorialRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]db_models.Memorial, error) {
	var memorials []db_models.Memorial
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&memorials).Error
	return memorials, err
}

func (r *memorialRepository) Browse(ctx context.Context, filter MemorialFilter, page, pageSize int) ([]db_models.Memorial, int64, error) {
	query := r.db.WithContext(ctx).Model(&db_models.Memorial{})

	if filter.Name != "" {
		like := "%" + filter.Name + "%"
		query = query.Where(
			"lower(first_name) LIKE lower(?) OR lower(middle_name) LIKE lower(?) OR lower(last_name) LIKE lower(?)",
			like, like, like)
	}
	if filter.DateOfBirth != nil {
		query = query.Where("date_of_birth = ?", *filter.DateOfBirth)
	}
	if filter.DateOfDeath != nil {
		query = query.Where("date_of_death = ?", *filter.DateOfDeath)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var memorials []db_models.Memorial
	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&memorials).Error
	return memorials, total, err
}

func (r *memorialRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) ([]db_models.Memorial, error) {
	var memorials []db_models.Memorial
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", subscriptionID).
		Find(&memorials).Error
	return memorials, err
}

func (r *memorialRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().Unix()
	return r.db.WithContext(ctx).
		Model(&db_models.Memorial{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// DeleteCascade removes the memorial together with its contributions and
// gallery rows in one transaction. Stored media is not touched.
func (r *memorialRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("memorial_id = ?", id).Delete(&db_models.Contribution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memorial_id = ?", id).Delete(&db_models.GalleryImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db_models.Memorial{}, "id = ?", id).Error
	})
}
