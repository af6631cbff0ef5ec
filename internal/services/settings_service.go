package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

const (
	settingsCollection = "settings"
	settingsID         = "site"
)

// SettingsService handles the site settings singleton
type SettingsService struct {
	backend store.Backend
	now     func() time.Time
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(backend store.Backend) *SettingsService {
	return &SettingsService{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored settings, or the defaults if none were saved
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = store.GetJSON[models.Settings](tx, settingsCollection, settingsID)
		if errors.Is(err, store.ErrNotFound) {
			out = defaultSettings()
			return nil
		}
		return err
	})
	return withDefaults(out), err
}

// Replace overwrites the settings, creating them on first use
func (s *SettingsService) Replace(ctx context.Context, in models.Settings) (models.Settings, error) {
	if err := validation.Struct(&in); err != nil {
		return in, err
	}
	in = withDefaults(in)
	now := s.now()
	in.UpdatedAt = &now

	err := s.backend.Update(ctx, func(tx store.Tx) error {
		return store.PutJSON(tx, settingsCollection, settingsID, &in)
	})
	if err != nil {
		return in, fmt.Errorf("failed to save settings: %w", err)
	}
	return in, nil
}

func defaultSettings() models.Settings {
	return withDefaults(models.Settings{})
}

// withDefaults fills the theme and replaces nil lists so clients always
// see arrays
func withDefaults(in models.Settings) models.Settings {
	if in.Theme == "" {
		in.Theme = models.DefaultTheme
	}
	if in.Testimonials == nil {
		in.Testimonials = []models.Testimonial{}
	}
	return in
}
