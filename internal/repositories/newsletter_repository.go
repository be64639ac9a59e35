package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"memoria/internal/models/db_models"
)

type NewsletterRepository interface {
	FindSubscriber(ctx context.Context, email string) (*db_models.Subscriber, error)
	CreateSubscriber(ctx context.Context, subscriber *db_models.Subscriber) error
	SetSubscribed(ctx context.Context, subscriber *db_models.Subscriber, subscribed bool) error
	ActiveSubscribers(ctx context.Context) ([]db_models.Subscriber, error)
	CreateNewsletter(ctx context.Context, newsletter *db_models.Newsletter) error
	MarkSent(ctx context.Context, newsletter *db_models.Newsletter, sentAt int64) error
}

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) FindSubscriber(ctx context.Context, email string) (*db_models.Subscriber, error) {
	var subscriber db_models.Subscriber
	err := r.db.WithContext(ctx).First(&subscriber, "lower(email) = lower(?)", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *newsletterRepository) CreateSubscriber(ctx context.Context, subscriber *db_models.Subscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}

// SetSubscribed writes the flag explicitly; a plain Save would skip false
// for a column with a default.
func (r *newsletterRepository) SetSubscribed(ctx context.Context, subscriber *db_models.Subscriber, subscribed bool) error {
	err := r.db.WithContext(ctx).
		Model(subscriber).
		Update("subscribed", subscribed).Error
	if err != nil {
		return err
	}
	subscriber.Subscribed = subscribed
	return nil
}

func (r *newsletterRepository) ActiveSubscribers(ctx context.Context) ([]db_models.Subscriber, error) {
	var subscribers []db_models.Subscriber
	err := r.db.WithContext(ctx).
		Where("subscribed = ?", true).
		Order("created_at ASC").
		Find(&subscribers).Error
	return subscribers, err
}

func (r *newsletterRepository) CreateNewsletter(ctx context.Context, newsletter *db_models.Newsletter) error {
	return r.db.WithContext(ctx).Create(newsletter).Error
}

func (r *newsletterRepository) MarkSent(ctx context.Context, newsletter *db_models.Newsletter, sentAt int64) error {
	err := r.db.WithContext(ctx).
		Model(newsletter).
		Updates(map[string]interface{}{"is_sent": true, "sent_at": sentAt}).Error
	if err != nil {
		return err
	}
	newsletter.IsSent = true
	newsletter.SentAt = &sentAt
	return nil
}
