package handlers

import (
	"context"

	"github.com/abrezinsky/castawayleague/internal/auth"
	"github.com/abrezinsky/castawayleague/internal/services"
)

// Services bundles the services the HTTP layer calls into
type Services struct {
	Ledger    services.LedgerServicer
	Season    services.SeasonServicer
	Retention services.RetentionServicer
	Question  services.QuestionServicer
	Answer    services.AnswerServicer
	Standings services.StandingsServicer
	Settings  services.SettingsServicer
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Services
	Health HealthChecker
	Auth   *auth.Auth
	Log    HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(svc Services, health HealthChecker, adminAuth *auth.Auth, log HTTPLogger) *Handlers {
	return &Handlers{
		Services: svc,
		Health:   health,
		Auth:     adminAuth,
		Log:      log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// TestPassword is the commissioner password used by NewForTesting
const TestPassword = "test-password"

// NewForTesting creates a Handlers instance with a known commissioner password
func NewForTesting(svc Services, health HealthChecker) *Handlers {
	return New(svc, health, auth.New(TestPassword), NoopHTTPLogger{})
}
