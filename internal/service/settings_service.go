package service

import (
	"context"

	"ffstore/internal/domain"
	"ffstore/internal/repository"
)

// SettingsInput carries the admin settings form fields
type SettingsInput struct {
	SiteName   string
	WhatsApp   string
	Instagram  string
	PixKey     string
	BannerText string
}

// SettingsService exposes the site settings singleton
type SettingsService interface {
	Get(ctx context.Context) (*domain.SiteSettings, error)
	Update(ctx context.Context, input SettingsInput) (*domain.SiteSettings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new instance of SettingsService
func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context) (*domain.SiteSettings, error) {
	return s.settingsRepo.Get(ctx)
}

func (s *settingsService) Update(ctx context.Context, input SettingsInput) (*domain.SiteSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.SiteName = input.SiteName
	settings.WhatsApp = input.WhatsApp
	settings.Instagram = input.Instagram
	settings.PixKey = input.PixKey
	settings.BannerText = input.BannerText

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return s.settingsRepo.Get(ctx)
}
