package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"memoria/internal/models/db_models"
	"memoria/pkg/utils"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type CheckoutRequest struct {
	Plan          *db_models.Plan
	MemorialID    uuid.UUID
	UserID        uuid.UUID
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// WebhookEvent is a verified processor callback reduced to the fields the
// billing flow needs.
type WebhookEvent struct {
	ID   string
	Type string
	Raw  []byte

	// Set for checkout.session.completed.
	Metadata       map[string]string
	SubscriptionID string

	// Set for customer.subscription.deleted.
	DeletedSubscriptionID string
}

type PaymentGateway interface {
	Enabled() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	SessionMemorialID(ctx context.Context, sessionID string) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type StripeGateway struct {
	api           *client.API
	enabled       bool
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	g := &StripeGateway{webhookSecret: webhookSecret}
	if secretKey != "" {
		g.api = client.New(secretKey, nil)
		g.enabled = true
	}
	return g
}

func (g *StripeGateway) Enabled() bool {
	return g.enabled
}

func checkoutMode(plan *db_models.Plan) stripe.CheckoutSessionMode {
	if plan.BillingCycle == db_models.CycleLifetime {
		return stripe.CheckoutSessionModePayment
	}
	return stripe.CheckoutSessionModeSubscription
}

func lineItem(plan *db_models.Plan) *stripe.CheckoutSessionLineItemParams {
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if plan.StripePriceID != "" {
		item.Price = stripe.String(plan.StripePriceID)
		return item
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(strings.ToLower(plan.Currency)),
		UnitAmount: stripe.Int64(plan.PriceMinor),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(plan.Name),
		},
	}
	switch plan.BillingCycle {
	case db_models.CycleMonthly:
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{Interval: stripe.String("month")}
	case db_models.CycleYearly:
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{Interval: stripe.String("year")}
	}
	item.PriceData = priceData
	return item
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !g.enabled {
		return "", utils.ErrPaymentsDisabled
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{lineItem(req.Plan)},
		Mode:               stripe.String(string(checkoutMode(req.Plan))),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID.String())
	params.AddMetadata("plan_id", req.Plan.ID.String())
	params.AddMetadata("memorial_id", req.MemorialID.String())

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create checkout session: %v", utils.ErrExternalService, err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) SessionMemorialID(ctx context.Context, sessionID string) (string, error) {
	if !g.enabled {
		return "", utils.ErrPaymentsDisabled
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve checkout session: %v", utils.ErrExternalService, err)
	}
	return sess.Metadata["memorial_id"], nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if !g.enabled {
		return utils.ErrPaymentsDisabled
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := g.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("%w: cancel subscription: %v", utils.ErrExternalService, err)
	}
	return nil
}

// ParseWebhook verifies the Stripe-Signature header against the signing
// secret and decodes the two event types the billing flow reacts to.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, utils.ErrPaymentsDisabled
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSignature, err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  payload,
	}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: decode checkout session: %v", utils.ErrInvalidInput, err)
		}
		out.Metadata = sess.Metadata
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: decode subscription: %v", utils.ErrInvalidInput, err)
		}
		out.DeletedSubscriptionID = sub.ID
	}
	return out, nil
}
