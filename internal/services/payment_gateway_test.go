package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"memoria/internal/models/db_models"
	"memoria/pkg/utils"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	require.NoError(t, err)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeGatewayParsesCheckoutCompleted(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret)
	payload := []byte(`{
		"id": "evt_checkout",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"subscription": "sub_123",
			"metadata": {"user_id": "u-1", "plan_id": "p-1", "memorial_id": "m-1"}
		}}
	}`)

	event, err := g.ParseWebhook(payload, signPayload(t, payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_checkout", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "sub_123", event.SubscriptionID)
	assert.Equal(t, map[string]string{"user_id": "u-1", "plan_id": "p-1", "memorial_id": "m-1"}, event.Metadata)
	assert.Equal(t, payload, event.Raw)
}

func TestStripeGatewayParsesSubscriptionDeleted(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret)
	payload := []byte(`{
		"id": "evt_sub",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_123", "object": "subscription"}}
	}`)

	event, err := g.ParseWebhook(payload, signPayload(t, payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionDeleted, event.Type)
	assert.Equal(t, "sub_123", event.DeletedSubscriptionID)
}

func TestStripeGatewayRejectsForgedSignature(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret)
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`)

	_, err := g.ParseWebhook(payload, signPayload(t, payload, "whsec_someone_else"))
	assert.ErrorIs(t, err, utils.ErrInvalidSignature)

	_, err = g.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, utils.ErrInvalidSignature)

	tampered := append([]byte(nil), payload...)
	sig := signPayload(t, payload, testWebhookSecret)
	tampered[len(tampered)-3] = 'X'
	_, err = g.ParseWebhook(tampered, sig)
	assert.ErrorIs(t, err, utils.ErrInvalidSignature)
}

func TestStripeGatewayWithoutSecrets(t *testing.T) {
	g := NewStripeGateway("", "")
	assert.False(t, g.Enabled())

	_, err := g.ParseWebhook([]byte("{}"), "t=1,v1=00")
	assert.ErrorIs(t, err, utils.ErrPaymentsDisabled)

	_, err = g.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, utils.ErrPaymentsDisabled)
}

func TestCheckoutLineItems(t *testing.T) {
	lifetime := &db_models.Plan{Name: "lifetime", PriceMinor: 19999, Currency: "USD", BillingCycle: db_models.CycleLifetime}
	monthly := &db_models.Plan{Name: "premium", PriceMinor: 999, Currency: "USD", BillingCycle: db_models.CycleMonthly}
	priced := &db_models.Plan{Name: "premium", BillingCycle: db_models.CycleYearly, StripePriceID: "price_123"}

	assert.Equal(t, stripe.CheckoutSessionModePayment, checkoutMode(lifetime))
	assert.Equal(t, stripe.CheckoutSessionModeSubscription, checkoutMode(monthly))

	item := lineItem(lifetime)
	require.NotNil(t, item.PriceData)
	assert.Nil(t, item.PriceData.Recurring)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, int64(19999), *item.PriceData.UnitAmount)

	item = lineItem(monthly)
	require.NotNil(t, item.PriceData.Recurring)
	assert.Equal(t, "month", *item.PriceData.Recurring.Interval)

	item = lineItem(priced)
	assert.Nil(t, item.PriceData)
	assert.Equal(t, "price_123", *item.Price)
}
