package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

type NewsletterService interface {
	Subscribe(ctx context.Context, req request_models.SubscribeRequest) (*response_models.SubscribeResponse, error)
	Unsubscribe(ctx context.Context, email string) error
	SendNewsletter(ctx context.Context, req request_models.SendNewsletterRequest) (*response_models.NewsletterSendResult, error)
}

type newsletterService struct {
	repo    repositories.NewsletterRepository
	mailer  IMailService
	siteURL string
	log     *zap.Logger
}

func NewNewsletterService(repo repositories.NewsletterRepository, mailer IMailService, siteURL string, log *zap.Logger) NewsletterService {
	return &newsletterService{
		repo:    repo,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     log,
	}
}

func (s *newsletterService) welcome(sub *db_models.Subscriber) {
	name := sub.FirstName
	if name == "" {
		name = "friend"
	}
	err := s.mailer.SendMailToNotifyUser(
		sub.Email,
		"Welcome to our newsletter",
		"Dear "+name+", thank you for subscribing. We will keep you posted on new features and stories from our community.",
		"Visit Memoria",
		s.siteURL,
	)
	if err != nil {
		s.log.Warn("welcome email failed", zap.String("subscriber_id", sub.ID.String()), zap.Error(err))
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, req request_models.SubscribeRequest) (*response_models.SubscribeResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, utils.NewValidationError("email", "Email is required")
	}

	sub, err := s.repo.FindSubscriber(ctx, email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	switch {
	case sub == nil:
		sub = &db_models.Subscriber{
			Email:      email,
			FirstName:  strings.TrimSpace(req.FirstName),
			LastName:   strings.TrimSpace(req.LastName),
			Subscribed: true,
		}
		if err := s.repo.CreateSubscriber(ctx, sub); err != nil {
			return nil, utils.ErrDatabaseError
		}
		s.welcome(sub)
		return &response_models.SubscribeResponse{Email: sub.Email}, nil

	case !sub.Subscribed:
		if err := s.repo.SetSubscribed(ctx, sub, true); err != nil {
			return nil, utils.ErrDatabaseError
		}
		s.welcome(sub)
		return &response_models.SubscribeResponse{Email: sub.Email, Resubscribed: true}, nil

	default:
		return &response_models.SubscribeResponse{Email: sub.Email, AlreadySubscribed: true}, nil
	}
}

func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	sub, err := s.repo.FindSubscriber(ctx, strings.TrimSpace(email))
	if err != nil {
		return utils.ErrDatabaseError
	}
	if sub == nil {
		return utils.ErrSubscriberNotFound
	}
	if !sub.Subscribed {
		return nil
	}
	if err := s.repo.SetSubscribed(ctx, sub, false); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

// SendNewsletter mails every active subscriber one at a time. Individual
// failures are counted out, not returned.
func (s *newsletterService) SendNewsletter(ctx context.Context, req request_models.SendNewsletterRequest) (*response_models.NewsletterSendResult, error) {
	nl := &db_models.Newsletter{
		Subject: strings.TrimSpace(req.Subject),
		Content: req.Content,
	}
	if err := s.repo.CreateNewsletter(ctx, nl); err != nil {
		return nil, utils.ErrDatabaseError
	}

	subscribers, err := s.repo.ActiveSubscribers(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	sent := 0
	for i := range subscribers {
		sub := &subscribers[i]
		unsubscribeURL := s.siteURL + "/newsletter/unsubscribe/" + sub.Email
		if err := s.mailer.SendMailToNotifyUser(sub.Email, nl.Subject, nl.Content, "Unsubscribe", unsubscribeURL); err != nil {
			s.log.Warn("newsletter delivery failed",
				zap.String("newsletter_id", nl.ID.String()),
				zap.String("subscriber_id", sub.ID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}

	if err := s.repo.MarkSent(ctx, nl, utils.NowUnixSeconds()); err != nil {
		return nil, utils.ErrDatabaseError
	}
	s.log.Info("newsletter sent",
		zap.String("newsletter_id", nl.ID.String()),
		zap.Int("recipients", len(subscribers)),
		zap.Int("sent", sent))

	return &response_models.NewsletterSendResult{
		NewsletterID: nl.ID.String(),
		Recipients:   len(subscribers),
		Sent:         sent,
	}, nil
}
