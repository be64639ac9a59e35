package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/pkg/utils"
)

func TestValidateLifeDates(t *testing.T) {
	tomorrow := utils.Today().AddDate(0, 0, 1).Format(utils.DateLayout)

	tests := []struct {
		name      string
		dob, dod  string
		wantField string
	}{
		{name: "birth in the future", dob: "2030-01-01", wantField: "date_of_birth"},
		{name: "death before birth", dob: "1950-05-10", dod: "1950-05-09", wantField: "date_of_death"},
		{name: "death in the future", dob: "1950-05-10", dod: tomorrow, wantField: "date_of_death"},
		{name: "malformed birth", dob: "10/05/1950", wantField: "date_of_birth"},
		{name: "malformed death", dob: "1950-05-10", dod: "yesterday", wantField: "date_of_death"},
		{name: "same day", dob: "1950-05-10", dod: "1950-05-10"},
		{name: "still living", dob: "1950-05-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateLifeDates(tt.dob, tt.dod)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *utils.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRemainingSlotsNeverNegative(t *testing.T) {
	free := &db_models.Plan{Name: "free"}
	premium := &db_models.Plan{Name: "premium", AllowGallery: true}

	assert.Equal(t, 3, RemainingSlots(nil, 0))
	assert.Equal(t, 1, RemainingSlots(free, 2))
	assert.Equal(t, 0, RemainingSlots(free, 7))
	assert.Equal(t, 9, RemainingSlots(premium, 0))
	assert.Equal(t, 0, RemainingSlots(premium, 12))
}

func TestCreateMemorialAssignsFreePlanAndStoresQRCode(t *testing.T) {
	h := newHarness(t)
	owner := h.account(t, "owner@example.com")

	detail, err := h.memorialSvc.Create(context.Background(), owner.ID, request_models.CreateMemorialRequest{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		DateOfBirth: "1815-12-10",
		DateOfDeath: "1852-11-27",
	})
	require.NoError(t, err)

	require.NotNil(t, detail.Plan)
	assert.Equal(t, "free", detail.Plan.Name)
	assert.Equal(t, "Ada Lovelace", detail.FullName)
	assert.Equal(t, 3, detail.RemainingSlots)
	assert.True(t, detail.IsOwner)

	key := fmt.Sprintf("memorials/%s/qr_codes/qr_code_%s.png", detail.ID, detail.ID)
	assert.True(t, h.store.Has(key))
	assert.Equal(t, "https://media.test/"+key, detail.QRCodeURL)
}

func TestCreateMemorialSurvivesQRFailure(t *testing.T) {
	h := newHarness(t)
	owner := h.account(t, "owner@example.com")
	h.memorialSvc = NewMemorialService(h.memorials, h.gallery, h.plans, h.media, h.gateway,
		fakeQR{err: errors.New("encoder broke")}, "https://memoria.test", zap.NewNop())

	detail, err := h.memorialSvc.Create(context.Background(), owner.ID, request_models.CreateMemorialRequest{
		FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1815-12-10",
	})
	require.NoError(t, err)
	assert.Empty(t, detail.QRCodeURL)
}

func TestCreateMemorialRejectsFutureBirth(t *testing.T) {
	h := newHarness(t)
	owner := h.account(t, "owner@example.com")

	_, err := h.memorialSvc.Create(context.Background(), owner.ID, request_models.CreateMemorialRequest{
		FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "2030-01-01",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date_of_birth", verr.Field)
}

func TestMemorialUpdatesAreOwnerOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")
	m := h.memorial(t, owner.ID, "free")

	_, err := h.memorialSvc.UpdateQuote(ctx, m.ID, uuid.New(), "hello")
	assert.ErrorIs(t, err, utils.ErrPermissionDenied)

	detail, err := h.memorialSvc.UpdateQuote(ctx, m.ID, owner.ID, "  Gone but not forgotten ")
	require.NoError(t, err)
	assert.Equal(t, "Gone but not forgotten", detail.Quote)
}

func TestUpdateBannerEntitlements(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")

	free := h.memorial(t, owner.ID, "free")
	_, err := h.memorialSvc.UpdateBanner(ctx, free.ID, owner.ID, request_models.UpdateBannerRequest{
		BannerType: "image", BannerValue: "/static/banners/lake.jpg",
	})
	assert.ErrorIs(t, err, utils.ErrFeatureNotInPlan)

	_, err = h.memorialSvc.UpdateBanner(ctx, free.ID, owner.ID, request_models.UpdateBannerRequest{
		BannerType: "video", BannerValue: "x",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "banner_type", verr.Field)

	premium := h.memorial(t, owner.ID, "premium")
	detail, err := h.memorialSvc.UpdateBanner(ctx, premium.ID, owner.ID, request_models.UpdateBannerRequest{
		BannerType: "image", BannerValue: "/static/banners/lake.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "image", detail.BannerType)
	assert.Equal(t, "banners/lake.jpg", detail.BannerValue)
}

func TestUploadAudioRequiresMusicEntitlement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")

	free := h.memorial(t, owner.ID, "free")
	_, err := h.memorialSvc.UploadAudio(ctx, free.ID, owner.ID, fileUpload("song.mp3", "audio/mpeg", "mp3"))
	assert.ErrorIs(t, err, utils.ErrFeatureNotInPlan)

	premium := h.memorial(t, owner.ID, "premium")
	_, err = h.memorialSvc.UploadAudio(ctx, premium.ID, owner.ID, fileUpload("notes.txt", "text/plain", "txt"))
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)

	detail, err := h.memorialSvc.UploadAudio(ctx, premium.ID, owner.ID, fileUpload("song.mp3", "audio/mpeg", "mp3"))
	require.NoError(t, err)
	assert.NotEmpty(t, detail.AudioURL)
	assert.Len(t, h.store.Keys(fmt.Sprintf("memorials/%s/audio/", premium.ID)), 1)
}

func TestProfilePictureReplacementPurgesPreviousObject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")
	m := h.memorial(t, owner.ID, "free")

	_, err := h.memorialSvc.UploadProfilePicture(ctx, m.ID, owner.ID, fileUpload("a.png", "image/png", "first"))
	require.NoError(t, err)
	first := h.reload(t, m.ID).ProfileKey

	_, err = h.memorialSvc.UploadProfilePicture(ctx, m.ID, owner.ID, fileUpload("b.png", "image/png", "second"))
	require.NoError(t, err)
	second := h.reload(t, m.ID).ProfileKey

	assert.NotEqual(t, first, second)
	assert.False(t, h.store.Has(first))
	assert.True(t, h.store.Has(second))
	assert.Len(t, h.store.Keys(fmt.Sprintf("memorials/%s/profile_pictures/", m.ID)), 1)
}

func TestProfilePictureSizeLimit(t *testing.T) {
	h := newHarness(t)
	owner := h.account(t, "owner@example.com")
	m := h.memorial(t, owner.ID, "free")

	big := fileUpload("huge.jpg", "image/jpeg", "x")
	big.Size = maxProfileBytes + 1
	_, err := h.memorialSvc.UploadProfilePicture(context.Background(), m.ID, owner.ID, big)

	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "profile_picture", verr.Field)
	assert.Empty(t, h.store.Keys("memorials/"))
}

func TestDeleteMemorialRemovesEveryStoredObject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")

	detail, err := h.memorialSvc.Create(ctx, owner.ID, request_models.CreateMemorialRequest{
		FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1815-12-10",
	})
	require.NoError(t, err)
	id := uuid.MustParse(detail.ID)

	_, err = h.memorialSvc.UploadProfilePicture(ctx, id, owner.ID, fileUpload("me.png", "image/png", "png"))
	require.NoError(t, err)
	_, err = h.gallerySvc.BulkUpload(ctx, id, owner.ID, images(1))
	require.NoError(t, err)

	namespace := fmt.Sprintf("memorials/%s/", id)
	require.Len(t, h.store.Keys(namespace), 3)

	require.NoError(t, h.memorialSvc.Delete(ctx, id, owner.ID))

	assert.Empty(t, h.store.Keys(namespace))
	gone, err := h.memorials.FindById(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
	count, err := h.gallery.CountByMemorial(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteMemorialCancelsSubscriptionEvenWhenProcessorFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")
	m := h.memorial(t, owner.ID, "premium")
	require.NoError(t, h.memorials.UpdateFields(ctx, m.ID, map[string]interface{}{"stripe_subscription_id": "sub_42"}))
	h.gateway.cancelErr = errors.New("processor down")

	_, err := h.memorialSvc.Get(ctx, m.ID, uuid.Nil)
	require.NoError(t, err)

	assert.ErrorIs(t, h.memorialSvc.Delete(ctx, m.ID, uuid.New()), utils.ErrPermissionDenied)
	require.NoError(t, h.memorialSvc.Delete(ctx, m.ID, owner.ID))

	assert.Equal(t, []string{"sub_42"}, h.gateway.cancelled)
	gone, err := h.memorials.FindById(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBrowseFiltersAndPaginates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.account(t, "owner@example.com")
	for i := 0; i < 11; i++ {
		h.memorial(t, owner.ID, "free")
	}
	m := h.memorial(t, owner.ID, "free")
	require.NoError(t, h.memorials.UpdateFields(ctx, m.ID, map[string]interface{}{
		"first_name":    "Katherine",
		"last_name":     "Johnson",
		"date_of_birth": time.Date(1918, 8, 26, 0, 0, 0, 0, time.UTC),
	}))

	page, err := h.memorialSvc.Browse(ctx, request_models.BrowseMemorialsRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, BrowsePageSize)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	page, err = h.memorialSvc.Browse(ctx, request_models.BrowseMemorialsRequest{Name: "kather"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, m.ID.String(), page.Items[0].ID)

	page, err = h.memorialSvc.Browse(ctx, request_models.BrowseMemorialsRequest{DateOfBirth: "1918-08-26"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = h.memorialSvc.Browse(ctx, request_models.BrowseMemorialsRequest{DateOfBirth: "26/08/1918"})
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)
}
