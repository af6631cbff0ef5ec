// Package services holds the application logic behind the HTTP routes.
package services

import (
	"go.uber.org/zap"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/store"
)

// Registry bundles every service the server needs
type Registry struct {
	Content   *ContentService
	Messages  *MessageService
	Settings  *SettingsService
	Auth      *AuthService
	Dashboard *DashboardService
	Uploads   *UploadService
	Subscribe *SubscribeService
}

// NewRegistry wires all services on top of one backend
func NewRegistry(backend store.Backend, cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	auth, err := NewAuthService(backend, cfg.Auth)
	if err != nil {
		return nil, err
	}
	uploads, err := NewUploadService(cfg.Uploads)
	if err != nil {
		return nil, err
	}

	var mailer Mailer
	if m := NewSMTPMailer(cfg.SMTP); m != nil {
		mailer = m
	}

	content := NewContentService(backend)
	messages := NewMessageService(backend)
	return &Registry{
		Content:   content,
		Messages:  messages,
		Settings:  NewSettingsService(backend),
		Auth:      auth,
		Dashboard: NewDashboardService(content, messages),
		Uploads:   uploads,
		Subscribe: NewSubscribeService(mailer, cfg.SMTP.User, logger),
	}, nil
}
