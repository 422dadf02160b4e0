package services

import (
	"context"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// LedgerServicer defines the interface for episode points ledger operations
type LedgerServicer interface {
	ComputeEpisode(ctx context.Context, teamID, episode, previousRunningTotal int) (*models.TeamEpisodePoints, error)
	RecalculateSeason(ctx context.Context, leagueSeasonID int) (*RecalculationResult, error)
	ScoreQuestion(ctx context.Context, questionID int, correctAnswer string) (*ScoreResult, error)
	GetTeamEpisodeSeries(ctx context.Context, teamID int) ([]models.TeamEpisodePoints, error)
	GetTeamTotal(ctx context.Context, teamID int) (int, error)
	VerifySeason(ctx context.Context, leagueSeasonID int) (*VerificationReport, error)
}

// SeasonServicer defines the interface for league-season operations
type SeasonServicer interface {
	GetSeason(ctx context.Context, id int) (*models.LeagueSeason, error)
	SetActiveEpisode(ctx context.Context, id, episode int) (*RecalculationResult, error)
	AdvanceEpisode(ctx context.Context, id int) (*AdvanceResult, error)
	SeedDemoSeason(ctx context.Context) (*SeedResult, error)
}

// RetentionServicer defines the interface for retention configuration operations
type RetentionServicer interface {
	ListRetention(ctx context.Context, leagueSeasonID int) (*RetentionListing, error)
	SetRetention(ctx context.Context, leagueSeasonID, episode, pointsPerCastaway int) (*RecalculationResult, error)
	ClearRetention(ctx context.Context, leagueSeasonID, episode int) (*RecalculationResult, error)
	ApplyRetentionToAll(ctx context.Context, leagueSeasonID, pointsPerCastaway int) (*RecalculationResult, error)
}

// QuestionServicer defines the interface for question operations
type QuestionServicer interface {
	CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error)
	GetQuestion(ctx context.Context, id int) (*models.Question, error)
}

// AnswerServicer defines the interface for answer submission
type AnswerServicer interface {
	SubmitAnswer(ctx context.Context, submission AnswerSubmission) (*models.Answer, error)
}

// StandingsServicer defines the interface for the read-only standings view
type StandingsServicer interface {
	Standings(ctx context.Context, leagueSeasonID int) (*Standings, error)
	StandingsQR(ctx context.Context, leagueSeasonID int) ([]byte, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	AllSettings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, settings Settings) error
}
