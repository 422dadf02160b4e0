package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// SettingBaseURL is the public URL used in share links
const SettingBaseURL = "base_url"

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

var _ SettingsServicer = (*SettingsService)(nil)

// Settings is a partial settings update; nil fields are left unchanged
type Settings struct {
	BaseURL *string `json:"base_url,omitempty"`
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, SettingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err // Propagate database errors
	}
	return value, nil
}

// SetBaseURL validates and saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, baseURL string) error {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Validationf("invalid base URL %q", baseURL)
	}
	return s.repo.SetSetting(ctx, SettingBaseURL, baseURL)
}

// AllSettings returns all stored settings
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]string, error) {
	return s.repo.ListSettings(ctx)
}

// UpdateSettings applies a partial settings update
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.BaseURL != nil {
		if err := s.SetBaseURL(ctx, *settings.BaseURL); err != nil {
			return err
		}
		s.log.Info("Base URL updated", "base_url", *settings.BaseURL)
	}
	return nil
}
