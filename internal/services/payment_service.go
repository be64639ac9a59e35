package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"memoria/internal/models/db_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

// PaymentService keeps memorial plans in step with the payment processor.
type PaymentService interface {
	Checkout(ctx context.Context, memorialID uuid.UUID, planID string, userID uuid.UUID) (*response_models.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	CancelPlan(ctx context.Context, memorialID, actor uuid.UUID) (*response_models.MemorialDetail, error)
	PaymentSuccess(ctx context.Context, userID uuid.UUID, memorialID, sessionID string) (*response_models.PaymentSuccessResponse, error)
}

type paymentService struct {
	memorialRepo repositories.MemorialRepository
	galleryRepo  repositories.GalleryRepository
	accountRepo  repositories.AccountRepository
	eventRepo    repositories.BillingEventRepository
	planService  PlanServiceInterface
	media        MediaLifecycle
	gateway      PaymentGateway
	siteURL      string
	log          *zap.Logger
}

func NewPaymentService(
	memorialRepo repositories.MemorialRepository,
	galleryRepo repositories.GalleryRepository,
	accountRepo repositories.AccountRepository,
	eventRepo repositories.BillingEventRepository,
	planService PlanServiceInterface,
	media MediaLifecycle,
	gateway PaymentGateway,
	siteURL string,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		memorialRepo: memorialRepo,
		galleryRepo:  galleryRepo,
		accountRepo:  accountRepo,
		eventRepo:    eventRepo,
		planService:  planService,
		media:        media,
		gateway:      gateway,
		siteURL:      strings.TrimRight(siteURL, "/"),
		log:          log,
	}
}

func (p *paymentService) ownedMemorial(ctx context.Context, memorialID, userID uuid.UUID) (*db_models.Memorial, error) {
	memorial, err := p.memorialRepo.FindById(ctx, memorialID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil || !memorial.IsOwnedBy(userID) {
		return nil, utils.ErrMemorialNotFound
	}
	return memorial, nil
}

// Checkout applies a free plan on the spot. Paid plans go through a hosted
// checkout page; the plan is only assigned once the processor reports the
// completed session.
func (p *paymentService) Checkout(ctx context.Context, memorialID uuid.UUID, planID string, userID uuid.UUID) (*response_models.CheckoutResponse, error) {
	plan, err := p.planService.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	memorial, err := p.ownedMemorial(ctx, memorialID, userID)
	if err != nil {
		return nil, err
	}

	if plan.IsFree() {
		err := p.memorialRepo.UpdateFields(ctx, memorial.ID, map[string]interface{}{"plan_id": plan.ID})
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		return &response_models.CheckoutResponse{Applied: true, MemorialID: memorial.ID.String()}, nil
	}

	if !p.gateway.Enabled() {
		return nil, utils.ErrPaymentsDisabled
	}

	account, err := p.accountRepo.FindById(ctx, userID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	email := ""
	if account != nil {
		email = account.Email
	}

	url, err := p.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Plan:          plan,
		MemorialID:    memorial.ID,
		UserID:        userID,
		CustomerEmail: email,
		SuccessURL:    fmt.Sprintf("%s/plans/success?memorial_id=%s&session_id={CHECKOUT_SESSION_ID}", p.siteURL, memorial.ID),
		CancelURL:     fmt.Sprintf("%s/plans/cancel", p.siteURL),
	})
	if err != nil {
		p.log.Error("checkout session failed",
			zap.String("memorial_id", memorial.ID.String()),
			zap.String("plan_id", plan.ID.String()),
			zap.Error(err))
		return nil, err
	}

	return &response_models.CheckoutResponse{RedirectURL: url, MemorialID: memorial.ID.String()}, nil
}

// HandleWebhook only returns an error for a bad signature. Everything after
// verification is logged and acknowledged so the processor stops retrying.
func (p *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := p.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidSignature) || errors.Is(err, utils.ErrPaymentsDisabled) {
			p.log.Warn("webhook rejected", zap.Error(err))
			return utils.ErrInvalidSignature
		}
		p.log.Error("webhook payload unreadable", zap.Error(err))
		return nil
	}

	log := p.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	if event.ID != "" {
		seen, err := p.eventRepo.Exists(ctx, event.ID)
		if err != nil {
			log.Error("webhook dedupe lookup failed", zap.Error(err))
		} else if seen {
			log.Info("webhook already processed")
			return nil
		}
	}

	switch event.Type {
	case EventCheckoutCompleted:
		err = p.applyCompletedCheckout(ctx, event)
	case EventSubscriptionDeleted:
		err = p.revertSubscription(ctx, event.DeletedSubscriptionID)
	default:
		log.Debug("webhook ignored")
		return nil
	}
	if err != nil {
		log.Error("webhook processing failed", zap.Error(err))
		return nil
	}

	if event.ID != "" {
		record := &db_models.BillingEvent{
			ProviderEventID: event.ID,
			Type:            event.Type,
			Payload:         datatypes.JSON(event.Raw),
			ProcessedAt:     utils.NowUnixSeconds(),
		}
		if err := p.eventRepo.Record(ctx, record); err != nil {
			log.Warn("webhook event not recorded", zap.Error(err))
		}
	}
	log.Info("webhook processed")
	return nil
}

func (p *paymentService) applyCompletedCheckout(ctx context.Context, event *WebhookEvent) error {
	userID, err := uuid.Parse(event.Metadata["user_id"])
	if err != nil {
		return fmt.Errorf("metadata user_id: %w", err)
	}
	memorialID, err := uuid.Parse(event.Metadata["memorial_id"])
	if err != nil {
		return fmt.Errorf("metadata memorial_id: %w", err)
	}
	plan, err := p.planService.GetPlan(ctx, event.Metadata["plan_id"])
	if err != nil {
		return fmt.Errorf("metadata plan_id: %w", err)
	}
	memorial, err := p.ownedMemorial(ctx, memorialID, userID)
	if err != nil {
		return err
	}

	// One-off purchases detach any earlier subscription so its later
	// cancellation cannot downgrade the memorial.
	fields := map[string]interface{}{"plan_id": plan.ID, "stripe_subscription_id": nil}
	if event.SubscriptionID != "" {
		fields["stripe_subscription_id"] = event.SubscriptionID
	}
	if err := p.memorialRepo.UpdateFields(ctx, memorial.ID, fields); err != nil {
		return err
	}

	if prev := memorial.StripeSubscriptionID; prev != nil && *prev != "" && *prev != event.SubscriptionID {
		if err := p.gateway.CancelSubscription(ctx, *prev); err != nil {
			p.log.Warn("cancel superseded subscription failed",
				zap.String("memorial_id", memorial.ID.String()),
				zap.String("subscription_id", *prev),
				zap.Error(err))
		}
	}

	p.log.Info("plan assigned",
		zap.String("memorial_id", memorial.ID.String()),
		zap.String("plan", plan.Name),
		zap.String("subscription_id", event.SubscriptionID))
	return nil
}

// revertSubscription moves every memorial billed by subscriptionID back to
// the free plan.
func (p *paymentService) revertSubscription(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return errors.New("subscription id missing")
	}
	memorials, err := p.memorialRepo.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	free, err := p.planService.FreePlan(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for i := range memorials {
		if err := p.downgrade(ctx, &memorials[i], free, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// downgrade puts memorial on the free plan, clears its subscription and
// removes media the free plan does not cover: the audio track and the newest
// gallery images above the free allowance.
func (p *paymentService) downgrade(ctx context.Context, memorial *db_models.Memorial, free *db_models.Plan, resetBanner bool) error {
	log := p.log.With(zap.String("memorial_id", memorial.ID.String()))

	fields := map[string]interface{}{
		"plan_id":                free.ID,
		"stripe_subscription_id": nil,
	}
	if memorial.AudioKey != "" || memorial.AudioURL != "" {
		key := memorial.AudioKey
		if key == "" {
			key = p.media.KeyFromURL(memorial.AudioURL)
		}
		p.media.PurgeObject(ctx, key)
		fields["audio_key"] = ""
		fields["audio_url"] = ""
	}
	if resetBanner {
		fields["banner_type"] = db_models.BannerColor
		fields["banner_value"] = db_models.DefaultBannerValue
	}
	if err := p.memorialRepo.UpdateFields(ctx, memorial.ID, fields); err != nil {
		return err
	}

	images, err := p.galleryRepo.ListNewestFirst(ctx, memorial.ID)
	if err != nil {
		return err
	}
	excess := len(images) - free.GalleryLimit()
	if excess > 0 {
		ids := make([]uuid.UUID, 0, excess)
		for _, img := range images[:excess] {
			p.media.PurgeObject(ctx, img.ObjectKey)
			ids = append(ids, img.ID)
		}
		if err := p.galleryRepo.DeleteByIds(ctx, ids); err != nil {
			return err
		}
		log.Info("gallery trimmed to free allowance", zap.Int("removed", excess))
	}

	log.Info("memorial moved to free plan")
	return nil
}

func (p *paymentService) CancelPlan(ctx context.Context, memorialID, actor uuid.UUID) (*response_models.MemorialDetail, error) {
	memorial, err := p.ownedMemorial(ctx, memorialID, actor)
	if err != nil {
		return nil, err
	}
	free, err := p.planService.FreePlan(ctx)
	if err != nil {
		return nil, err
	}

	if memorial.StripeSubscriptionID != nil && *memorial.StripeSubscriptionID != "" && p.gateway.Enabled() {
		if err := p.gateway.CancelSubscription(ctx, *memorial.StripeSubscriptionID); err != nil {
			p.log.Warn("subscription cancel failed",
				zap.String("memorial_id", memorial.ID.String()),
				zap.String("subscription_id", *memorial.StripeSubscriptionID),
				zap.Error(err))
		}
	}

	if err := p.downgrade(ctx, memorial, free, true); err != nil {
		return nil, utils.ErrDatabaseError
	}

	updated, err := p.memorialRepo.FindById(ctx, memorial.ID)
	if err != nil || updated == nil {
		return nil, utils.ErrDatabaseError
	}
	count, err := p.galleryRepo.CountByMemorial(ctx, memorial.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	detail := ToMemorialDetail(updated, count)
	detail.IsOwner = true
	return &detail, nil
}

// PaymentSuccess resolves which memorial the finished checkout belonged to,
// asking the processor when the redirect lost the memorial id.
func (p *paymentService) PaymentSuccess(ctx context.Context, userID uuid.UUID, memorialID, sessionID string) (*response_models.PaymentSuccessResponse, error) {
	const done = "Payment successful! Your plan has been activated."

	if memorialID == "" && sessionID != "" && p.gateway.Enabled() {
		id, err := p.gateway.SessionMemorialID(ctx, sessionID)
		if err != nil {
			p.log.Error("checkout session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			memorialID = id
		}
	}
	if memorialID == "" {
		p.log.Warn("payment success without memorial id", zap.String("user_id", userID.String()))
		return &response_models.PaymentSuccessResponse{Message: done}, nil
	}

	id, err := uuid.Parse(memorialID)
	if err != nil {
		return &response_models.PaymentSuccessResponse{Message: done}, nil
	}
	memorial, err := p.memorialRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if memorial == nil || !memorial.IsOwnedBy(userID) {
		p.log.Warn("payment success for unknown memorial",
			zap.String("memorial_id", memorialID),
			zap.String("user_id", userID.String()))
		return &response_models.PaymentSuccessResponse{Message: done}, nil
	}

	card := ToMemorialCard(memorial)
	return &response_models.PaymentSuccessResponse{
		MemorialID: memorial.ID.String(),
		Memorial:   &card,
		Message:    done,
	}, nil
}
