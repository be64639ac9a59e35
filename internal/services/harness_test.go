package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"memoria/internal/infra"
	"memoria/internal/models/db_models"
	"memoria/internal/repositories"
	"memoria/pkg/mediastore"
)

type sentMail struct {
	to, subject, body, ctaText, ctaURL string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	resets map[string]string
	fail   map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{resets: map[string]string{}, fail: map[string]bool{}}
}

func (m *fakeMailer) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[to] {
		return fmt.Errorf("smtp: mailbox %s unavailable", to)
	}
	m.sent = append(m.sent, sentMail{to, subject, body, ctaText, ctaURL})
	return nil
}

func (m *fakeMailer) SendMailToResetPassword(email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[email] = token
	return nil
}

func (m *fakeMailer) sentTo(to string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.to == to {
			out = append(out, s)
		}
	}
	return out
}

type fakeGateway struct {
	enabled   bool
	checkouts []CheckoutRequest
	cancelled []string
	cancelErr error
	sessions  map[string]string
	event     *WebhookEvent
	parseErr  error
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (string, error) {
	g.checkouts = append(g.checkouts, req)
	return "https://checkout.test/session/" + req.MemorialID.String(), nil
}

func (g *fakeGateway) SessionMemorialID(_ context.Context, sessionID string) (string, error) {
	id, ok := g.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("no such session %s", sessionID)
	}
	return id, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) error {
	g.cancelled = append(g.cancelled, subscriptionID)
	return g.cancelErr
}

func (g *fakeGateway) ParseWebhook(_ []byte, _ string) (*WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

type fakeQR struct{ err error }

func (q fakeQR) PNG(content string) ([]byte, error) {
	if q.err != nil {
		return nil, q.err
	}
	return []byte("png:" + content), nil
}

// harness wires every service against an in-memory SQLite database and a
// MemoryStore.
type harness struct {
	db      *gorm.DB
	store   *mediastore.MemoryStore
	mailer  *fakeMailer
	gateway *fakeGateway

	accounts     repositories.AccountRepository
	memorials    repositories.MemorialRepository
	gallery      repositories.GalleryRepository
	contribution repositories.ContributionRepository

	plans         PlanServiceInterface
	media         MediaLifecycle
	memorialSvc   MemorialService
	gallerySvc    GalleryService
	contributeSvc ContributionService
	paymentSvc    PaymentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := infra.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	log := zap.NewNop()
	h := &harness{
		db:      db,
		store:   mediastore.NewMemoryStore("https://media.test"),
		mailer:  newFakeMailer(),
		gateway: &fakeGateway{enabled: true, sessions: map[string]string{}},

		accounts:     repositories.NewAccountRepository(db),
		memorials:    repositories.NewMemorialRepository(db),
		gallery:      repositories.NewGalleryRepository(db),
		contribution: repositories.NewContributionRepository(db),
	}

	h.plans = NewPlanService(repositories.NewPlanRepository(db))
	media := NewMediaLifecycle(h.store, time.Millisecond, log).(*mediaLifecycle)
	media.sleep = func(context.Context, time.Duration) {}
	h.media = media

	h.memorialSvc = NewMemorialService(h.memorials, h.gallery, h.plans, h.media, h.gateway, fakeQR{}, "https://memoria.test", log)
	h.gallerySvc = NewGalleryService(h.gallery, h.memorials, h.media, log)
	h.contributeSvc = NewContributionService(h.contribution, h.memorials, h.accounts, h.mailer, "https://memoria.test", log)
	h.paymentSvc = NewPaymentService(h.memorials, h.gallery, h.accounts, repositories.NewBillingEventRepository(db),
		h.plans, h.media, h.gateway, "https://memoria.test", log)
	return h
}

func (h *harness) account(t *testing.T, email string) *db_models.Account {
	t.Helper()
	a := &db_models.Account{Name: email, Email: email, PasswordHash: "x", Role: db_models.RoleUser}
	require.NoError(t, h.accounts.Insert(context.Background(), a))
	return a
}

func (h *harness) plan(t *testing.T, name string) *db_models.Plan {
	t.Helper()
	var p db_models.Plan
	require.NoError(t, h.db.Where("name = ?", name).First(&p).Error)
	return &p
}

// memorial inserts a memorial for owner on the named plan.
func (h *harness) memorial(t *testing.T, owner uuid.UUID, planName string) *db_models.Memorial {
	t.Helper()
	p := h.plan(t, planName)
	m := &db_models.Memorial{
		OwnerID:     owner,
		BannerType:  db_models.BannerColor,
		BannerValue: db_models.DefaultBannerValue,
		FirstName:   "Grace",
		LastName:    "Hopper",
		DateOfBirth: time.Date(1906, 12, 9, 0, 0, 0, 0, time.UTC),
		PlanID:      &p.ID,
	}
	require.NoError(t, h.memorials.Create(context.Background(), m))
	return m
}

func (h *harness) reload(t *testing.T, id uuid.UUID) *db_models.Memorial {
	t.Helper()
	m, err := h.memorials.FindById(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func fileUpload(name, contentType, body string) FileUpload {
	return FileUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func images(n int) []FileUpload {
	out := make([]FileUpload, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fileUpload(fmt.Sprintf("photo-%d.jpg", i), "image/jpeg", fmt.Sprintf("jpeg-%d", i)))
	}
	return out
}
