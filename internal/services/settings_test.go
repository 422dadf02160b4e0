package services_test

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/repository/mock"
	"github.com/abrezinsky/castawayleague/internal/services"
	"github.com/abrezinsky/castawayleague/internal/testutil"
)

func TestSettingsService_BaseURL(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)
	ctx := context.Background()

	// Not configured yet
	url, err := svc.GetBaseURL(ctx)
	if err != nil {
		t.Fatalf("GetBaseURL failed: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty base URL, got %q", url)
	}

	if err := svc.SetBaseURL(ctx, " https://league.example.com/ "); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	url, _ = svc.GetBaseURL(ctx)
	if url != "https://league.example.com" {
		t.Errorf("expected normalized URL, got %q", url)
	}
}

func TestSettingsService_SetBaseURL_Invalid(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)

	for _, bad := range []string{"", "league.example.com", "ftp://files.example.com", "http://"} {
		if err := svc.SetBaseURL(context.Background(), bad); !apperrors.Is(err, apperrors.ErrValidation) {
			t.Errorf("SetBaseURL(%q): expected Validation error, got %v", bad, err)
		}
	}
}

func TestSettingsService_UpdateAndList(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)
	ctx := context.Background()

	// Nil fields are left alone
	if err := svc.UpdateSettings(ctx, services.Settings{}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	base := "http://10.0.0.5:8081"
	if err := svc.UpdateSettings(ctx, services.Settings{BaseURL: &base}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	all, err := svc.AllSettings(ctx)
	if err != nil {
		t.Fatalf("AllSettings failed: %v", err)
	}
	if all[services.SettingBaseURL] != base {
		t.Errorf("expected %q, got %v", base, all)
	}
}

func TestSettingsService_GetBaseURL_DatabaseError(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(realRepo)
	mockRepo.GetSettingError = errors.New("database error")
	svc := services.NewSettingsService(logger.Discard(), mockRepo)

	if _, err := svc.GetBaseURL(context.Background()); err == nil {
		t.Error("expected database error to propagate")
	}
}

func TestSettingsService_SetBaseURL_DatabaseError(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(realRepo)
	mockRepo.SetSettingError = errors.New("database error")
	svc := services.NewSettingsService(logger.Discard(), mockRepo)

	if err := svc.SetBaseURL(context.Background(), "http://ok.example.com"); err == nil {
		t.Error("expected database error to propagate")
	}
}
