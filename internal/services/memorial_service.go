package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

const (
	BrowsePageSize = 9

	maxNameLength      = 100
	maxProfileBytes    = 5 << 20
	maxAudioBytes      = 20 << 20
	maxGalleryBytes    = 10 << 20
	staticBannerPrefix = "/static/"
)

type MemorialService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req request_models.CreateMemorialRequest) (*response_models.MemorialDetail, error)
	Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*response_models.MemorialDetail, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]response_models.MemorialCard, error)
	Browse(ctx context.Context, req request_models.BrowseMemorialsRequest) (*response_models.MemorialPage, error)

	UpdateName(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateNameRequest) (*response_models.MemorialDetail, error)
	UpdateDates(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateDatesRequest) (*response_models.MemorialDetail, error)
	UpdateQuote(ctx context.Context, id, actor uuid.UUID, quote string) (*response_models.MemorialDetail, error)
	UpdateBiography(ctx context.Context, id, actor uuid.UUID, biography string) (*response_models.MemorialDetail, error)
	UpdateBanner(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateBannerRequest) (*response_models.MemorialDetail, error)
	UploadProfilePicture(ctx context.Context, id, actor uuid.UUID, file FileUpload) (*response_models.MemorialDetail, error)
	UploadAudio(ctx context.Context, id, actor uuid.UUID, file FileUpload) (*response_models.MemorialDetail, error)

	Delete(ctx context.Context, id, actor uuid.UUID) error
}

type memorialService struct {
	memorialRepo repositories.MemorialRepository
	galleryRepo  repositories.GalleryRepository
	planService  PlanServiceInterface
	media        MediaLifecycle
	gateway      PaymentGateway
	qr           QRGenerator
	siteURL      string
	log          *zap.Logger
}

func NewMemorialService(
	memorialRepo repositories.MemorialRepository,
	galleryRepo repositories.GalleryRepository,
	planService PlanServiceInterface,
	media MediaLifecycle,
	gateway PaymentGateway,
	qr QRGenerator,
	siteURL string,
	log *zap.Logger,
) MemorialService {
	return &memorialService{
		memorialRepo: memorialRepo,
		galleryRepo:  galleryRepo,
		planService:  planService,
		media:        media,
		gateway:      gateway,
		qr:           qr,
		siteURL:      strings.TrimRight(siteURL, "/"),
		log:          log,
	}
}

// ValidateLifeDates parses both dates and enforces that neither lies in the
// future and that death does not precede birth. Equal dates are accepted.
func ValidateLifeDates(dateOfBirth, dateOfDeath string) (time.Time, *time.Time, error) {
	today := utils.Today()

	dob, err := utils.ParseDate(dateOfBirth)
	if err != nil || dob == nil {
		return time.Time{}, nil, utils.NewValidationError("date_of_birth", "Invalid date format. Use YYYY-MM-DD.")
	}
	if dob.After(today) {
		return time.Time{}, nil, utils.NewValidationError("date_of_birth", "Date of birth cannot be in the future")
	}

	dod, err := utils.ParseDate(dateOfDeath)
	if err != nil {
		return time.Time{}, nil, utils.NewValidationError("date_of_death", "Invalid date format. Use YYYY-MM-DD.")
	}
	if dod != nil {
		if dod.After(today) {
			return time.Time{}, nil, utils.NewValidationError("date_of_death", "Date of death cannot be in the future")
		}
		if dod.Before(*dob) {
			return time.Time{}, nil, utils.NewValidationError("date_of_death", "Date of death cannot be before date of birth")
		}
	}
	return *dob, dod, nil
}

func validateNames(first, last string) (string, string, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return "", "", utils.NewValidationError("first_name", "First name is required")
	}
	if last == "" {
		return "", "", utils.NewValidationError("last_name", "Last name is required")
	}
	if len([]rune(first)) > maxNameLength {
		return "", "", utils.NewValidationError("first_name", "First name is too long")
	}
	if len([]rune(last)) > maxNameLength {
		return "", "", utils.NewValidationError("last_name", "Last name is too long")
	}
	return first, last, nil
}

// RemainingSlots never goes below zero, even when a downgrade left more
// images than the plan allows.
func RemainingSlots(plan *db_models.Plan, count int64) int {
	remaining := int64(plan.GalleryLimit()) - count
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// detectContentType prefers the declared type and falls back to the file
// extension.
func detectContentType(file FileUpload) string {
	ct := strings.TrimSpace(file.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(path.Ext(file.Filename)))
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}

func validateUpload(file FileUpload, field, typePrefix string, maxBytes int64, tooLarge string) (FileUpload, error) {
	if file.Size > maxBytes {
		return file, utils.NewValidationError(field, tooLarge)
	}
	file.ContentType = detectContentType(file)
	if !strings.HasPrefix(file.ContentType, typePrefix) {
		return file, utils.NewValidationError(field, "Invalid file type")
	}
	return file, nil
}

func (s *memorialService) load(ctx context.Context, id uuid.UUID) (*db_models.Memorial, error) {
	memorial, err := s.memorialRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil {
		return nil, utils.ErrMemorialNotFound
	}
	return memorial, nil
}

func (s *memorialService) loadOwned(ctx context.Context, id, actor uuid.UUID) (*db_models.Memorial, error) {
	memorial, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !memorial.IsOwnedBy(actor) {
		return nil, utils.ErrPermissionDenied
	}
	return memorial, nil
}

func (s *memorialService) Create(ctx context.Context, ownerID uuid.UUID, req request_models.CreateMemorialRequest) (*response_models.MemorialDetail, error) {
	if ownerID == uuid.Nil {
		return nil, utils.ErrUnauthenticated
	}
	first, last, err := validateNames(req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	dob, dod, err := ValidateLifeDates(req.DateOfBirth, req.DateOfDeath)
	if err != nil {
		return nil, err
	}

	memorial := &db_models.Memorial{
		OwnerID:     ownerID,
		BannerType:  db_models.BannerColor,
		BannerValue: db_models.DefaultBannerValue,
		FirstName:   first,
		MiddleName:  strings.TrimSpace(req.MiddleName),
		LastName:    last,
		DateOfBirth: dob,
		DateOfDeath: dod,
		Quote:       strings.TrimSpace(req.Quote),
		Biography:   strings.TrimSpace(req.Biography),
	}

	free, err := s.planService.FreePlan(ctx)
	switch {
	case err == nil:
		memorial.PlanID = &free.ID
	case errors.Is(err, utils.ErrPlanNotFound):
		s.log.Warn("free plan missing, memorial created without plan")
	default:
		return nil, err
	}

	if err := s.memorialRepo.Create(ctx, memorial); err != nil {
		return nil, utils.ErrDatabaseError
	}

	s.attachQRCode(ctx, memorial)

	return s.Get(ctx, memorial.ID, ownerID)
}

// attachQRCode stores a QR code that links to the public memorial page.
func (s *memorialService) attachQRCode(ctx context.Context, memorial *db_models.Memorial) {
	log := s.log.With(zap.String("memorial_id", memorial.ID.String()))

	png, err := s.qr.PNG(fmt.Sprintf("%s/memorials/%s", s.siteURL, memorial.ID))
	if err != nil {
		log.Error("qr code generation failed", zap.Error(err))
		return
	}

	key := fmt.Sprintf("%s/qr_code_%s.png", db_models.AssetPrefix(memorial.ID, db_models.AssetQRCodes), memorial.ID)
	obj, err := s.media.StoreBytes(ctx, key, png, "image/png")
	if err != nil {
		log.Error("qr code upload failed", zap.String("key", key), zap.Error(err))
		return
	}

	err = s.memorialRepo.UpdateFields(ctx, memorial.ID, map[string]interface{}{
		"qr_code_key": obj.Key,
		"qr_code_url": obj.URL,
	})
	if err != nil {
		log.Error("qr code reference not saved", zap.String("key", key), zap.Error(err))
		s.media.PurgeObject(ctx, obj.Key)
		return
	}
	memorial.QRCodeKey = obj.Key
	memorial.QRCodeURL = obj.URL
}

func (s *memorialService) Get(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*response_models.MemorialDetail, error) {
	memorial, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.galleryRepo.CountByMemorial(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	detail := ToMemorialDetail(memorial, count)
	detail.IsOwner = memorial.IsOwnedBy(viewerID)
	return &detail, nil
}

func (s *memorialService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]response_models.MemorialCard, error) {
	memorials, err := s.memorialRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	cards := make([]response_models.MemorialCard, 0, len(memorials))
	for i := range memorials {
		cards = append(cards, ToMemorialCard(&memorials[i]))
	}
	return cards, nil
}

func (s *memorialService) Browse(ctx context.Context, req request_models.BrowseMemorialsRequest) (*response_models.MemorialPage, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repositories.MemorialFilter{Name: strings.TrimSpace(req.Name)}
	dob, err := utils.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, utils.NewValidationError("dob", "Invalid date format. Use YYYY-MM-DD.")
	}
	dod, err := utils.ParseDate(req.DateOfDeath)
	if err != nil {
		return nil, utils.NewValidationError("dod", "Invalid date format. Use YYYY-MM-DD.")
	}
	filter.DateOfBirth = dob
	filter.DateOfDeath = dod

	memorials, total, err := s.memorialRepo.Browse(ctx, filter, page, BrowsePageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	items := make([]response_models.MemorialCard, 0, len(memorials))
	for i := range memorials {
		items = append(items, ToMemorialCard(&memorials[i]))
	}
	return &response_models.MemorialPage{
		Items:      items,
		Page:       page,
		PageSize:   BrowsePageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(BrowsePageSize))),
	}, nil
}

func (s *memorialService) update(ctx context.Context, id, actor uuid.UUID, fields map[string]interface{}) (*response_models.MemorialDetail, error) {
	if err := s.memorialRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return s.Get(ctx, id, actor)
}

func (s *memorialService) UpdateName(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateNameRequest) (*response_models.MemorialDetail, error) {
	if _, err := s.loadOwned(ctx, id, actor); err != nil {
		return nil, err
	}
	first, last, err := validateNames(req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, actor, map[string]interface{}{
		"first_name":  first,
		"middle_name": strings.TrimSpace(req.MiddleName),
		"last_name":   last,
	})
}

func (s *memorialService) UpdateDates(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateDatesRequest) (*response_models.MemorialDetail, error) {
	if _, err := s.loadOwned(ctx, id, actor); err != nil {
		return nil, err
	}
	dob, dod, err := ValidateLifeDates(req.DateOfBirth, req.DateOfDeath)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, actor, map[string]interface{}{
		"date_of_birth": dob,
		"date_of_death": dod,
	})
}

func (s *memorialService) UpdateQuote(ctx context.Context, id, actor uuid.UUID, quote string) (*response_models.MemorialDetail, error) {
	if _, err := s.loadOwned(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.update(ctx, id, actor, map[string]interface{}{"quote": strings.TrimSpace(quote)})
}

func (s *memorialService) UpdateBiography(ctx context.Context, id, actor uuid.UUID, biography string) (*response_models.MemorialDetail, error) {
	if _, err := s.loadOwned(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.update(ctx, id, actor, map[string]interface{}{"biography": strings.TrimSpace(biography)})
}

func (s *memorialService) UpdateBanner(ctx context.Context, id, actor uuid.UUID, req request_models.UpdateBannerRequest) (*response_models.MemorialDetail, error) {
	memorial, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	bannerType := db_models.BannerType(strings.TrimSpace(req.BannerType))
	if !bannerType.Valid() {
		return nil, utils.NewValidationError("banner_type", "Invalid banner type")
	}
	value := strings.TrimSpace(req.BannerValue)
	if value == "" {
		return nil, utils.NewValidationError("banner_value", "Missing required fields")
	}

	if bannerType == db_models.BannerImage {
		if !memorial.Plan.CanUseCustomBanner() {
			return nil, utils.ErrFeatureNotInPlan
		}
		value = strings.TrimPrefix(value, staticBannerPrefix)
	}

	return s.update(ctx, id, actor, map[string]interface{}{
		"banner_type":  bannerType,
		"banner_value": value,
	})
}

// replaceAsset stores file, drops the object it replaces and saves the new
// reference. When saving fails the freshly stored object is removed again.
func (s *memorialService) replaceAsset(ctx context.Context, memorial *db_models.Memorial, kind db_models.AssetKind, oldKey string, file FileUpload, keyCol, urlCol string) (*response_models.MemorialDetail, error) {
	obj, err := s.media.Store(ctx, memorial.ID, kind, file)
	if err != nil {
		return nil, err
	}

	s.media.ReplaceObject(ctx, oldKey, obj.Key)

	err = s.memorialRepo.UpdateFields(ctx, memorial.ID, map[string]interface{}{
		keyCol: obj.Key,
		urlCol: obj.URL,
	})
	if err != nil {
		s.media.PurgeObject(ctx, obj.Key)
		return nil, utils.ErrDatabaseError
	}
	return s.Get(ctx, memorial.ID, memorial.OwnerID)
}

func (s *memorialService) UploadProfilePicture(ctx context.Context, id, actor uuid.UUID, file FileUpload) (*response_models.MemorialDetail, error) {
	memorial, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	file, err = validateUpload(file, "profile_picture", "image/", maxProfileBytes, "Image too large (max 5MB)")
	if err != nil {
		return nil, err
	}
	return s.replaceAsset(ctx, memorial, db_models.AssetProfilePictures, memorial.ProfileKey, file, "profile_key", "profile_url")
}

func (s *memorialService) UploadAudio(ctx context.Context, id, actor uuid.UUID, file FileUpload) (*response_models.MemorialDetail, error) {
	memorial, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !memorial.Plan.CanUseMusic() {
		return nil, utils.ErrFeatureNotInPlan
	}
	file, err = validateUpload(file, "audio_file", "audio/", maxAudioBytes, "Audio too large (max 20MB)")
	if err != nil {
		return nil, err
	}
	return s.replaceAsset(ctx, memorial, db_models.AssetAudio, memorial.AudioKey, file, "audio_key", "audio_url")
}

// Delete cancels any running subscription, removes the memorial and its rows,
// then purges every stored object.
func (s *memorialService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	memorial, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return err
	}

	if memorial.StripeSubscriptionID != nil && *memorial.StripeSubscriptionID != "" && s.gateway.Enabled() {
		if err := s.gateway.CancelSubscription(ctx, *memorial.StripeSubscriptionID); err != nil {
			s.log.Warn("subscription cancel failed during memorial delete",
				zap.String("memorial_id", id.String()),
				zap.String("subscription_id", *memorial.StripeSubscriptionID),
				zap.Error(err))
		}
	}

	if err := s.memorialRepo.DeleteCascade(ctx, id); err != nil {
		return utils.ErrDatabaseError
	}

	s.media.PurgeMemorial(ctx, memorial)
	return nil
}

func lifeSpan(m *db_models.Memorial) string {
	span := utils.FormatDisplayDate(m.DateOfBirth)
	if m.DateOfDeath != nil {
		span += " - " + utils.FormatDisplayDate(*m.DateOfDeath)
	}
	return span
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(utils.DateLayout)
}

func ToMemorialCard(m *db_models.Memorial) response_models.MemorialCard {
	card := response_models.MemorialCard{
		ID:                m.ID.String(),
		FullName:          m.FullName(),
		DateOfBirth:       formatDate(&m.DateOfBirth),
		DateOfDeath:       formatDate(m.DateOfDeath),
		ProfilePictureURL: m.ProfileURL,
	}
	if m.Plan != nil {
		card.PlanName = m.Plan.Name
	}
	return card
}

func ToMemorialDetail(m *db_models.Memorial, galleryCount int64) response_models.MemorialDetail {
	detail := response_models.MemorialDetail{
		ID:                m.ID.String(),
		OwnerID:           m.OwnerID.String(),
		FirstName:         m.FirstName,
		MiddleName:        m.MiddleName,
		LastName:          m.LastName,
		FullName:          m.FullName(),
		DateOfBirth:       formatDate(&m.DateOfBirth),
		DateOfDeath:       formatDate(m.DateOfDeath),
		LifeSpan:          lifeSpan(m),
		Quote:             m.Quote,
		Biography:         m.Biography,
		BannerType:        string(m.BannerType),
		BannerValue:       m.BannerValue,
		ProfilePictureURL: m.ProfileURL,
		AudioURL:          m.AudioURL,
		QRCodeURL:         m.QRCodeURL,
		Entitlements:      Entitlements(m.Plan),
		GalleryCount:      int(galleryCount),
		RemainingSlots:    RemainingSlots(m.Plan, galleryCount),
		CreatedAt:         m.CreatedAt,
	}
	if m.Plan != nil {
		plan := ToPlanResponse(m.Plan)
		detail.Plan = &plan
	}
	return detail
}
