package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"memoria/internal/models/db_models"
)

type ContributionQuery struct {
	MemorialID   uuid.UUID
	Kind         db_models.ContributionKind
	ApprovedOnly bool
	Offset       int
	Limit        int
}

type ContributionRepository interface {
	Create(ctx context.Context, contribution *db_models.Contribution) error
	FindById(ctx context.Context, id uuid.UUID, kind db_models.ContributionKind) (*db_models.Contribution, error)
	List(ctx context.Context, q ContributionQuery) ([]db_models.Contribution, int64, error)
	Update(ctx context.Context, contribution *db_models.Contribution) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, contribution *db_models.Contribution) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(contribution).Error
}

// FindById loads a contribution of the given kind with its memorial.
func (r *contributionRepository) FindById(ctx context.Context, id uuid.UUID, kind db_models.ContributionKind) (*db_models.Contribution, error) {
	var contribution db_models.Contribution
	err := r.db.WithContext(ctx).
		Preload("Memorial").
		Where("kind = ?", kind).
		First(&contribution, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contribution, nil
}

func (r *contributionRepository) List(ctx context.Context, q ContributionQuery) ([]db_models.Contribution, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&db_models.Contribution{}).
		Where("memorial_id = ? AND kind = ?", q.MemorialID, q.Kind)
	if q.ApprovedOnly {
		query = query.Where("status = ?", db_models.StatusApproved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []db_models.Contribution
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *contributionRepository) Update(ctx context.Context, contribution *db_models.Contribution) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(contribution).Error
}

func (r *contributionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&db_models.Contribution{}, "id = ?", id).Error
}
