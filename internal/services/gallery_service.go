package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

type GalleryService interface {
	List(ctx context.Context, memorialID uuid.UUID) ([]response_models.GalleryImageResponse, error)
	RemainingSlots(ctx context.Context, memorial *db_models.Memorial) (int, error)
	BulkUpload(ctx context.Context, memorialID, actor uuid.UUID, files []FileUpload) (*response_models.GalleryUploadResult, error)
	DeleteImage(ctx context.Context, memorialID, imageID, actor uuid.UUID) error
}

type galleryService struct {
	galleryRepo  repositories.GalleryRepository
	memorialRepo repositories.MemorialRepository
	media        MediaLifecycle
	log          *zap.Logger
}

func NewGalleryService(
	galleryRepo repositories.GalleryRepository,
	memorialRepo repositories.MemorialRepository,
	media MediaLifecycle,
	log *zap.Logger,
) GalleryService {
	return &galleryService{
		galleryRepo:  galleryRepo,
		memorialRepo: memorialRepo,
		media:        media,
		log:          log,
	}
}

func toGalleryResponse(img *db_models.GalleryImage) response_models.GalleryImageResponse {
	return response_models.GalleryImageResponse{
		ID:      img.ID.String(),
		URL:     img.URL,
		Caption: img.Caption,
		Order:   img.Order,
	}
}

func (s *galleryService) ownedMemorial(ctx context.Context, memorialID, actor uuid.UUID) (*db_models.Memorial, error) {
	memorial, err := s.memorialRepo.FindById(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil {
		return nil, utils.ErrMemorialNotFound
	}
	if !memorial.IsOwnedBy(actor) {
		return nil, utils.ErrPermissionDenied
	}
	return memorial, nil
}

func (s *galleryService) List(ctx context.Context, memorialID uuid.UUID) ([]response_models.GalleryImageResponse, error) {
	memorial, err := s.memorialRepo.FindById(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil {
		return nil, utils.ErrMemorialNotFound
	}

	images, err := s.galleryRepo.ListByMemorial(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.GalleryImageResponse, 0, len(images))
	for i := range images {
		out = append(out, toGalleryResponse(&images[i]))
	}
	return out, nil
}

func (s *galleryService) RemainingSlots(ctx context.Context, memorial *db_models.Memorial) (int, error) {
	count, err := s.galleryRepo.CountByMemorial(ctx, memorial.ID)
	if err != nil {
		return 0, utils.ErrDatabaseError
	}
	return RemainingSlots(memorial.Plan, count), nil
}

// BulkUpload accepts files in submission order until the plan's slots run
// out; the rest are reported as skipped. Either every accepted image is
// recorded or none is, and objects stored by a failed call are purged.
// Concurrent uploads for the same memorial are not serialised.
func (s *galleryService) BulkUpload(ctx context.Context, memorialID, actor uuid.UUID, files []FileUpload) (*response_models.GalleryUploadResult, error) {
	memorial, err := s.ownedMemorial(ctx, memorialID, actor)
	if err != nil {
		return nil, err
	}

	remaining, err := s.RemainingSlots(ctx, memorial)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, &utils.GalleryLimitError{Limit: memorial.Plan.GalleryLimit()}
	}
	if len(files) == 0 {
		return nil, utils.NewValidationError("images", "Please select at least one image")
	}

	n := len(files)
	if n > remaining {
		n = remaining
	}
	accepted := append([]FileUpload(nil), files[:n]...)
	for i := range accepted {
		f, err := validateUpload(accepted[i], "images", "image/", maxGalleryBytes, "Image too large (max 10MB)")
		if err != nil {
			return nil, err
		}
		accepted[i] = f
	}

	nextOrder, err := s.galleryRepo.NextOrder(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	stored := make([]string, 0, len(accepted))
	images := make([]db_models.GalleryImage, 0, len(accepted))
	for i, file := range accepted {
		obj, err := s.media.Store(ctx, memorialID, db_models.AssetGallery, file)
		if err != nil {
			s.rollbackObjects(ctx, memorialID, stored)
			return nil, err
		}
		stored = append(stored, obj.Key)
		images = append(images, db_models.GalleryImage{
			MemorialID: memorialID,
			ObjectKey:  obj.Key,
			URL:        obj.URL,
			Order:      nextOrder + i,
		})
	}

	if err := s.galleryRepo.InsertBatch(ctx, images); err != nil {
		s.log.Error("gallery insert failed", zap.String("memorial_id", memorialID.String()), zap.Error(err))
		s.rollbackObjects(ctx, memorialID, stored)
		return nil, utils.ErrDatabaseError
	}

	result := &response_models.GalleryUploadResult{
		Accepted:       make([]response_models.GalleryImageResponse, 0, len(images)),
		Skipped:        len(files) - len(accepted),
		RemainingSlots: remaining - len(accepted),
		Message:        fmt.Sprintf("Uploaded %d images successfully!", len(accepted)),
	}
	for i := range images {
		result.Accepted = append(result.Accepted, toGalleryResponse(&images[i]))
	}
	if result.Skipped > 0 {
		result.Message += fmt.Sprintf(" (%d skipped)", result.Skipped)
	}
	return result, nil
}

func (s *galleryService) rollbackObjects(ctx context.Context, memorialID uuid.UUID, keys []string) {
	if len(keys) == 0 {
		return
	}
	s.log.Warn("removing objects from failed gallery upload",
		zap.String("memorial_id", memorialID.String()),
		zap.Int("count", len(keys)))
	for _, key := range keys {
		s.media.PurgeObject(ctx, key)
	}
}

func (s *galleryService) DeleteImage(ctx context.Context, memorialID, imageID, actor uuid.UUID) error {
	if _, err := s.ownedMemorial(ctx, memorialID, actor); err != nil {
		return err
	}

	image, err := s.galleryRepo.FindById(ctx, memorialID, imageID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if image == nil {
		return utils.ErrImageNotFound
	}

	key := image.ObjectKey
	if key == "" {
		key = s.media.KeyFromURL(image.URL)
	}
	s.media.PurgeObject(ctx, key)

	if err := s.galleryRepo.DeleteByIds(ctx, []uuid.UUID{image.ID}); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
