package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

type ContactServiceInterface interface {
	Contact(ctx context.Context, req request_models.ContactRequest) error
}

type ContactService struct {
	repo         repositories.ContactRepositoryInterface
	mailer       IMailService
	contactEmail string
	log          *zap.Logger
}

func NewContactService(repo repositories.ContactRepositoryInterface, mailer IMailService, contactEmail string, log *zap.Logger) ContactServiceInterface {
	return &ContactService{
		repo:         repo,
		mailer:       mailer,
		contactEmail: contactEmail,
		log:          log,
	}
}

// Contact stores the message first; the relay to the support inbox is
// best effort.
func (s *ContactService) Contact(ctx context.Context, req request_models.ContactRequest) error {
	msg := &db_models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if msg.Message == "" {
		return utils.NewValidationError("message", "Message is required")
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return utils.ErrDatabaseError
	}

	if s.contactEmail == "" {
		return nil
	}
	body := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
	if err := s.mailer.SendMailToNotifyUser(s.contactEmail, "Contact form: "+msg.Subject, body, "", ""); err != nil {
		s.log.Warn("contact relay failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
	}
	return nil
}
