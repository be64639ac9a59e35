package mail_fx

import (
	"go.uber.org/fx"

	"memoria/internal/config"
	"memoria/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config) services.IMailService {
	return services.NewSMTPMailService(services.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort, // 587 for STARTTLS; use 465 with UseSSL=true for SMTPS
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		From:       cfg.SMTPFrom,
		FromName:   cfg.SMTPFromName,
		UseSSL:     cfg.SMTPUseSSL,
		RequireTLS: cfg.IsProduction(),

		AppName:    "Memoria",
		AppBaseURL: cfg.SiteURL,
	})
}
