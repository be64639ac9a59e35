package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

func TestSubscribeLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewNewsletterService(repositories.NewNewsletterRepository(h.db), h.mailer, "https://memoria.test", zap.NewNop())

	resp, err := svc.Subscribe(ctx, request_models.SubscribeRequest{Email: "reader@example.com", FirstName: "Ruth"})
	require.NoError(t, err)
	assert.False(t, resp.AlreadySubscribed)
	assert.False(t, resp.Resubscribed)
	require.Len(t, h.mailer.sentTo("reader@example.com"), 1)

	resp, err = svc.Subscribe(ctx, request_models.SubscribeRequest{Email: "READER@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.AlreadySubscribed)
	assert.Len(t, h.mailer.sentTo("reader@example.com"), 1)

	require.NoError(t, svc.Unsubscribe(ctx, "reader@example.com"))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, "stranger@example.com"), utils.ErrSubscriberNotFound)

	resp, err = svc.Subscribe(ctx, request_models.SubscribeRequest{Email: "reader@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.Resubscribed)
	assert.Len(t, h.mailer.sentTo("reader@example.com"), 2)
}

func TestSendNewsletterCountsDeliveries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := repositories.NewNewsletterRepository(h.db)
	svc := NewNewsletterService(repo, h.mailer, "https://memoria.test", zap.NewNop())

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Subscribe(ctx, request_models.SubscribeRequest{Email: email})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Unsubscribe(ctx, "c@example.com"))
	h.mailer.fail["b@example.com"] = true

	result, err := svc.SendNewsletter(ctx, request_models.SendNewsletterRequest{Subject: "Spring update", Content: "News"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.Equal(t, 1, result.Sent)

	issues := h.mailer.sentTo("a@example.com")
	require.Len(t, issues, 2)
	assert.Equal(t, "Spring update", issues[1].subject)
	assert.Equal(t, "https://memoria.test/newsletter/unsubscribe/a@example.com", issues[1].ctaURL)
	assert.Len(t, h.mailer.sentTo("c@example.com"), 1)

	var nl db_models.Newsletter
	require.NoError(t, h.db.First(&nl, "id = ?", result.NewsletterID).Error)
	assert.True(t, nl.IsSent)
	assert.NotNil(t, nl.SentAt)
}

func TestContactStoresAndRelays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := NewContactService(repositories.NewContactRepository(h.db), h.mailer, "support@memoria.test", zap.NewNop())

	req := request_models.ContactRequest{Name: "Sam", Email: "sam@example.com", Subject: "Hello", Message: "A question"}
	require.NoError(t, svc.Contact(ctx, req))

	relayed := h.mailer.sentTo("support@memoria.test")
	require.Len(t, relayed, 1)
	assert.Equal(t, "Contact form: Hello", relayed[0].subject)
	assert.Contains(t, relayed[0].body, "sam@example.com")

	// Relay failures do not lose the message.
	h.mailer.fail["support@memoria.test"] = true
	require.NoError(t, svc.Contact(ctx, req))

	var stored int64
	require.NoError(t, h.db.Model(&db_models.ContactMessage{}).Count(&stored).Error)
	assert.Equal(t, int64(2), stored)
}
