package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/api/controllers"
	"memoria/internal/infra"
	"memoria/internal/models/db_models"
	"memoria/internal/repositories"
	"memoria/internal/services"
	"memoria/pkg/mediastore"
	"memoria/pkg/memcache"
	"memoria/pkg/utils"
)

const (
	testSite          = "https://memoria.test"
	testWebhookSecret = "whsec_router_test"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendMailToNotifyUser(to, subject, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

func (m *recordingMailer) SendMailToResetPassword(email, _ string) error {
	return m.SendMailToNotifyUser(email, "reset", "", "", "")
}

type app struct {
	db     *gorm.DB
	router *gin.Engine
	jwt    *utils.JWTManager
	store  *mediastore.MemoryStore
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	db, err := infra.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	log := zap.NewNop()
	store := mediastore.NewMemoryStore(testSite + "/media")
	mailer := &recordingMailer{}
	jwt := utils.NewJWTManager("router-secret", time.Hour)
	gateway := services.NewStripeGateway("", testWebhookSecret)

	accounts := repositories.NewAccountRepository(db)
	memorials := repositories.NewMemorialRepository(db)
	gallery := repositories.NewGalleryRepository(db)
	plans := services.NewPlanService(repositories.NewPlanRepository(db))
	media := services.NewMediaLifecycle(store, 0, log)

	memorialSvc := services.NewMemorialService(memorials, gallery, plans, media, gateway, services.NewQRGenerator(), testSite, log)
	ctrl := Controllers{
		Account: controllers.NewAccountController(
			services.NewAccountService(accounts, jwt, time.Hour, memcache.NewResetTokens(), mailer, log), memorialSvc),
		Memorial: controllers.NewMemorialController(memorialSvc),
		Gallery:  controllers.NewGalleryController(services.NewGalleryService(gallery, memorials, media, log)),
		Contribution: controllers.NewContributionController(services.NewContributionService(
			repositories.NewContributionRepository(db), memorials, accounts, mailer, testSite, log)),
		Payment: controllers.NewPaymentController(plans, services.NewPaymentService(memorials, gallery, accounts,
			repositories.NewBillingEventRepository(db), plans, media, gateway, testSite, log)),
		Contact: controllers.NewContactController(
			services.NewContactService(repositories.NewContactRepository(db), mailer, "support@memoria.test", log),
			services.NewNewsletterService(repositories.NewNewsletterRepository(db), mailer, testSite, log)),
		Media:     controllers.NewMediaController(store),
		Dashboard: controllers.NewDashboardController(services.NewDashboardService(repositories.NewDashboardRepository(db))),
	}

	r := gin.New()
	RegisterRoutes(r, jwt, func(c *gin.Context) { c.Next() }, ctrl)
	return &app{db: db, router: r, jwt: jwt, store: store}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

func (a *app) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.send(t, req, token)
}

func (a *app) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *app) upload(t *testing.T, path, token, field string, names ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("bytes of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.send(t, req, token)
}

// register signs up and logs in, returning the bearer token and account id.
func (a *app) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/accounts/register", "", map[string]string{
		"display_name": "Test User", "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var account struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &account))

	w, env = a.do(t, http.MethodPost, "/accounts/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct{ Token string }
	require.NoError(t, json.Unmarshal(env.Data, &login))
	return login.Token, account.ID
}

func (a *app) createMemorial(t *testing.T, token string) string {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/memorials", token, map[string]string{
		"first_name": "Ada", "last_name": "Lovelace", "date_of_birth": "1815-12-10", "date_of_death": "1852-11-27",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var detail struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	return detail.ID
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	w, env := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)

	w, _ := a.do(t, http.MethodPost, "/memorials", "", map[string]string{"first_name": "A"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(t, http.MethodGet, "/accounts/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _ := a.register(t, "user@example.com")
	w, _ = a.do(t, http.MethodPost, "/admin/newsletters", token, map[string]string{"subject": "Hi", "content": "News"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMemorialLifecycleOverHTTP(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	visitor, _ := a.register(t, "visitor@example.com")
	id := a.createMemorial(t, owner)

	w, env := a.do(t, http.MethodGet, "/memorials/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		FullName  string `json:"full_name"`
		IsOwner   bool   `json:"is_owner"`
		QRCodeURL string `json:"qr_code_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Ada Lovelace", detail.FullName)
	assert.False(t, detail.IsOwner)
	assert.NotEmpty(t, detail.QRCodeURL)

	_, env = a.do(t, http.MethodGet, "/memorials/"+id, owner, nil)
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.True(t, detail.IsOwner)

	w, _ = a.do(t, http.MethodPatch, "/memorials/"+id+"/quote", visitor, map[string]string{"quote": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(t, http.MethodPatch, "/memorials/"+id+"/banner", owner, map[string]string{
		"banner_type": "image", "banner_value": "banners/lake.jpg",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(t, http.MethodPatch, "/memorials/"+id+"/dates", owner, map[string]string{
		"date_of_birth": "1900-01-02", "date_of_death": "1900-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Field)

	w, _ = a.do(t, http.MethodGet, "/memorials/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(t, http.MethodGet, "/accounts/me/memorials", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cards []struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, id, cards[0].ID)

	w, _ = a.do(t, http.MethodDelete, "/memorials/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, a.store.Keys("memorials/"+id+"/"))

	w, _ = a.do(t, http.MethodGet, "/memorials/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGalleryUploadRespectsFreeLimit(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	id := a.createMemorial(t, owner)

	w, env := a.upload(t, "/memorials/"+id+"/gallery", owner, "images", "1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Uploaded 3 images successfully! (2 skipped)", env.Message)

	w, env = a.upload(t, "/memorials/"+id+"/gallery", owner, "images", "6.jpg")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Gallery limit reached (3 images max)", env.Error)

	w, env = a.do(t, http.MethodGet, "/memorials/"+id+"/gallery", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var imgs []struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &imgs))
	assert.Len(t, imgs, 3)

	w, _ = a.upload(t, "/memorials/"+id+"/gallery", owner, "images")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTributeModerationOverHTTP(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	visitor, _ := a.register(t, "visitor@example.com")
	id := a.createMemorial(t, owner)

	w, _ := a.do(t, http.MethodPost, "/memorials/"+id+"/tributes", "", map[string]string{"author_name": "Anon", "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(t, http.MethodPost, "/memorials/"+id+"/tributes", visitor, map[string]string{
		"author_name": "Jane", "content": "We miss you",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tribute struct{ ID, Status string }
	require.NoError(t, json.Unmarshal(env.Data, &tribute))
	assert.Equal(t, "pending", tribute.Status)

	list := func(token string) int64 {
		w, env := a.do(t, http.MethodGet, "/memorials/"+id+"/tributes?offset=0&limit=3", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var page struct{ Total int64 }
		require.NoError(t, json.Unmarshal(env.Data, &page))
		return page.Total
	}
	assert.Equal(t, int64(0), list(""))
	assert.Equal(t, int64(1), list(owner))

	w, _ = a.do(t, http.MethodPost, "/tributes/"+tribute.ID+"/approve", visitor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(t, http.MethodPost, "/stories/"+tribute.ID+"/approve", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(t, http.MethodPost, "/tributes/"+tribute.ID+"/approve", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), list(""))

	w, _ = a.do(t, http.MethodPost, "/tributes/"+tribute.ID+"/reject", owner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func signed(t *testing.T, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	_, err := mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	require.NoError(t, err)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookUpgradesMemorial(t *testing.T) {
	a := newApp(t)
	owner, ownerID := a.register(t, "owner@example.com")
	id := a.createMemorial(t, owner)

	var premium db_models.Plan
	require.NoError(t, a.db.Where("name = ?", "premium").First(&premium).Error)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_router_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_router_1",
			"object": "checkout.session",
			"subscription": "sub_router",
			"metadata": {"user_id": %q, "plan_id": %q, "memorial_id": %q}
		}}
	}`, ownerID, premium.ID.String(), id))

	post := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/plans/webhook", bytes.NewReader(payload))
		req.Header.Set("Stripe-Signature", signature)
		w, _ := a.send(t, req, "")
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post("t=1,v1=deadbeef").Code)
	require.Equal(t, http.StatusOK, post(signed(t, payload)).Code)

	m, err := repositories.NewMemorialRepository(a.db).FindById(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NotNil(t, m.PlanID)
	assert.Equal(t, premium.ID, *m.PlanID)

	w, env := a.do(t, http.MethodGet, "/plans/success?memorial_id="+url.QueryEscape(id), owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment successful! Your plan has been activated.", env.Message)
}

func TestPaidCheckoutWithoutKeys(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	id := a.createMemorial(t, owner)

	var premium db_models.Plan
	require.NoError(t, a.db.Where("name = ?", "premium").First(&premium).Error)

	w, _ := a.do(t, http.MethodPost, "/plans/checkout/"+premium.ID.String()+"/"+id, owner, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, env := a.do(t, http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plans []struct{ Name string }
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	assert.NotEmpty(t, plans)
}

func TestMediaRouteServesProfilePicture(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	id := a.createMemorial(t, owner)

	w, env := a.upload(t, "/memorials/"+id+"/profile-picture", owner, "profile_picture", "me.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var detail struct {
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))

	u, err := url.Parse(detail.ProfilePictureURL)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, u.Path, nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "bytes of me.png", w.Body.String())

	w, _ = a.upload(t, "/memorials/"+id+"/profile-picture", owner, "wrong_field", "me.png")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactAndNewsletter(t *testing.T) {
	a := newApp(t)

	w, _ := a.do(t, http.MethodPost, "/contact", "", map[string]string{
		"name": "Jo", "email": "jo@example.com", "subject": "Hello", "message": "Question",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodPost, "/contact", "", map[string]string{"name": "Jo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := a.do(t, http.MethodPost, "/newsletter/subscribe", "", map[string]string{"email": "reader@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Thank you for subscribing!", env.Message)

	_, env = a.do(t, http.MethodPost, "/newsletter/subscribe", "", map[string]string{"email": "reader@example.com"})
	assert.Equal(t, "You are already subscribed", env.Message)

	w, _ = a.do(t, http.MethodPost, "/newsletter/unsubscribe/reader@example.com", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodPost, "/newsletter/unsubscribe/nobody@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}


func TestAdminDashboard(t *testing.T) {
	a := newApp(t)
	owner, _ := a.register(t, "owner@example.com")
	a.createMemorial(t, owner)

	w, _ := a.do(t, http.MethodGet, "/admin/dashboard", owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := a.jwt.CreateToken(uuid.New(), db_models.RoleAdmin)
	require.NoError(t, err)

	w, env := a.do(t, http.MethodGet, "/admin/dashboard?last_days=7&interval=week", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		KPIs struct {
			TotalMemorials int64 `json:"total_memorials"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, int64(1), report.KPIs.TotalMemorials)

	w, env = a.do(t, http.MethodGet, "/admin/dashboard?interval=hour", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "interval", env.Field)

	w, _ = a.do(t, http.MethodGet, "/admin/dashboard?last_days=7&start=2025-01-01T00:00:00Z", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
