package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"memoria/internal/models/db_models"
)

type GalleryRepository interface {
	CountByMemorial(ctx context.Context, memorialID uuid.UUID) (int64, error)
	ListByMemorial(ctx context.Context, memorialID uuid.UUID) ([]db_models.GalleryImage, error)
	ListNewestFirst(ctx context.Context, memorialID uuid.UUID) ([]db_models.GalleryImage, error)
	NextOrder(ctx context.Context, memorialID uuid.UUID) (int, error)
	InsertBatch(ctx context.Context, images []db_models.GalleryImage) error
	FindById(ctx context.Context, memorialID, imageID uuid.UUID) (*db_models.GalleryImage, error)
	DeleteByIds(ctx context.Context, ids []uuid.UUID) error
}

type galleryRepository struct {
	db *gorm.DB
}

func NewGalleryRepository(db *gorm.DB) GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) CountByMemorial(ctx context.Context, memorialID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.GalleryImage{}).
		Where("memorial_id = ?", memorialID).
		Count(&count).Error
	return count, err
}

func (r *galleryRepository) ListByMemorial(ctx context.Context, memorialID uuid.UUID) ([]db_models.GalleryImage, error) {
	var images []db_models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&images).Error
	return images, err
}

func (r *galleryRepository) ListNewestFirst(ctx context.Context, memorialID uuid.UUID) ([]db_models.GalleryImage, error) {
	var images []db_models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		Order("created_at DESC").
		Order("sort_order DESC").
		Find(&images).Error
	return images, err
}

func (r *galleryRepository) NextOrder(ctx context.Context, memorialID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&db_models.GalleryImage{}).
		Where("memorial_id = ?", memorialID).
		Select("COALESCE(MAX(sort_order), -1)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// InsertBatch stores all images or none.
func (r *galleryRepository) InsertBatch(ctx context.Context, images []db_models.GalleryImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range images {
			if err := tx.Create(&images[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *galleryRepository) FindById(ctx context.Context, memorialID, imageID uuid.UUID) (*db_models.GalleryImage, error) {
	var image db_models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("memorial_id = ?", memorialID).
		First(&image, "id = ?", imageID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *galleryRepository) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&db_models.GalleryImage{}, "id IN ?", ids).Error
}
