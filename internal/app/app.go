package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/castawayleague/internal/auth"
	"github.com/abrezinsky/castawayleague/internal/config"
	"github.com/abrezinsky/castawayleague/internal/handlers"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/repository"
	"github.com/abrezinsky/castawayleague/internal/services"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	settings services.SettingsServicer
	network  networkProvider
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize services
	ledgerService := services.NewLedgerService(log, repo, cfg.RecalcWorkers)
	settingsService := services.NewSettingsService(log, repo)
	svc := handlers.Services{
		Ledger:    ledgerService,
		Season:    services.NewSeasonService(log, repo, ledgerService),
		Retention: services.NewRetentionService(log, repo, ledgerService),
		Question:  services.NewQuestionService(log, repo),
		Answer:    services.NewAnswerService(log, repo),
		Standings: services.NewStandingsService(log, repo, settingsService),
		Settings:  settingsService,
	}

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: handlers.New(svc, repo, adminAuth, log),
		repo:     repo,
		settings: settingsService,
		network:  realNetworkProvider{},
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run serves HTTP until ctx is cancelled, then shuts the server down
func (a *App) Run(ctx context.Context) error {
	addr := a.cfg.Addr()
	baseURL := fmt.Sprintf("http://%s%s", getPreferredIP(a.network), addr)
	a.setDefaultBaseURL(ctx, baseURL)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Server starting", "url", baseURL)
		a.log.Info("Standings API", "url", baseURL+"/api/seasons/{id}/standings")
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// setDefaultBaseURL stores the configured base URL, or the detected LAN URL
// when nothing usable is stored. A localhost URL is not useful in a QR code.
func (a *App) setDefaultBaseURL(ctx context.Context, detected string) {
	if a.cfg.BaseURL != "" {
		if err := a.settings.SetBaseURL(ctx, a.cfg.BaseURL); err != nil {
			a.log.Warn("Ignoring configured base URL", "url", a.cfg.BaseURL, "error", err)
		} else {
			a.log.Info("Base URL set from configuration", "url", a.cfg.BaseURL)
			return
		}
	}

	existing, err := a.settings.GetBaseURL(ctx)
	if err != nil {
		a.log.Warn("Failed to read base_url", "error", err)
		return
	}
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}
	if err := a.settings.SetBaseURL(ctx, detected); err != nil {
		a.log.Warn("Failed to set default base_url", "error", err)
		return
	}
	a.log.Info("Default base URL set", "url", detected)
}
