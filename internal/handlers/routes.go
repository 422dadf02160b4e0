package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/abrezinsky/castawayleague/internal/errors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, errors.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, NewAPIError(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed"))
	})

	r.Get("/healthz", h.handleHealth)

	// Auth routes (public)
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/logout", h.handleLogout)
	r.Get("/api/auth/session", h.handleSession)

	// League API (public)
	r.Get("/api/seasons/{seasonID}", h.handleGetSeason)
	r.Get("/api/seasons/{seasonID}/standings", h.handleGetStandings)
	r.Get("/api/seasons/{seasonID}/standings/qr", h.handleGetStandingsQR)
	r.Get("/api/seasons/{seasonID}/retention", h.handleGetRetention)
	r.Get("/api/teams/{teamID}/episodes", h.handleGetTeamEpisodes)
	r.Get("/api/teams/{teamID}/total", h.handleGetTeamTotal)
	r.Get("/api/questions/{questionID}", h.handleGetQuestion)
	r.Post("/api/questions/{questionID}/answers", h.handleSubmitAnswer)

	// Commissioner API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Ledger
		r.Post("/api/admin/seasons/{seasonID}/recalculate", h.handleRecalculate)
		r.Get("/api/admin/seasons/{seasonID}/verify", h.handleVerifySeason)

		// Episodes
		r.Put("/api/admin/seasons/{seasonID}/active-episode", h.handleSetActiveEpisode)
		r.Post("/api/admin/seasons/{seasonID}/advance-episode", h.handleAdvanceEpisode)

		// Retention
		r.Put("/api/admin/seasons/{seasonID}/retention/{episode}", h.handleSetRetention)
		r.Delete("/api/admin/seasons/{seasonID}/retention/{episode}", h.handleClearRetention)
		r.Post("/api/admin/seasons/{seasonID}/retention/apply-all", h.handleApplyRetentionToAll)

		// Questions
		r.Post("/api/admin/seasons/{seasonID}/questions", h.handleCreateQuestion)
		r.Post("/api/admin/questions/{questionID}/score", h.handleScoreQuestion)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)

		// Database Management
		r.Post("/api/admin/seed-mock-data", h.handleSeedMockData)
	})

	return r
}
