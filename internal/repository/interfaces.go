package repository

import (
	"context"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// SeasonRepository defines league-season and castaway data operations
type SeasonRepository interface {
	CreateLeagueSeason(ctx context.Context, name string, totalEpisodes int) (int64, error)
	GetLeagueSeason(ctx context.Context, id int) (*models.LeagueSeason, error)
	GetLeagueSeasonByName(ctx context.Context, name string) (*models.LeagueSeason, error)
	SetActiveEpisode(ctx context.Context, id, episode int) error
	CreateCastaway(ctx context.Context, leagueSeasonID int, name string) (int64, error)
}

// TeamRepository defines team data operations
type TeamRepository interface {
	CreateTeam(ctx context.Context, leagueSeasonID int, name, ownerUserID string) (int64, error)
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context, leagueSeasonID int) ([]models.Team, error)
	GetTeamTotal(ctx context.Context, id int) (int, error)
}

// RosterRepository defines roster window data operations
type RosterRepository interface {
	AddRosterEntry(ctx context.Context, teamID, castawayID, startEpisode int, endEpisode *int) (int64, error)
	ListRosterEntries(ctx context.Context, teamID int) ([]models.RosterEntry, error)
}

// QuestionRepository defines question data operations
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q models.Question) (int64, error)
	GetQuestion(ctx context.Context, id int) (*models.Question, error)
	MarkQuestionScored(ctx context.Context, id int, correctAnswer string) error
}

// AnswerRepository defines submitted answer data operations
type AnswerRepository interface {
	SaveAnswer(ctx context.Context, questionID, teamID int, answerText string, wagerAmount *int) (int64, error)
	GetAnswer(ctx context.Context, questionID, teamID int) (*models.Answer, error)
	ListScoredAnswers(ctx context.Context, teamID, maxEpisode int) ([]models.ScoredAnswer, error)
	ListTeamIDsForQuestion(ctx context.Context, questionID int) ([]int, error)
}

// RetentionRepository defines retention configuration data operations
type RetentionRepository interface {
	SetRetentionConfig(ctx context.Context, leagueSeasonID, episode, pointsPerCastaway int) error
	SetRetentionConfigRange(ctx context.Context, leagueSeasonID, fromEpisode, toEpisode, pointsPerCastaway int) error
	DeleteRetentionConfig(ctx context.Context, leagueSeasonID, episode int) error
	ListRetentionConfigs(ctx context.Context, leagueSeasonID int) ([]models.RetentionConfig, error)
}

// LedgerRepository defines episode points ledger data operations.
// Only the ledger service writes through it.
type LedgerRepository interface {
	ListTeamEpisodePoints(ctx context.Context, teamID int) ([]models.TeamEpisodePoints, error)
	ListSeasonEpisodePoints(ctx context.Context, leagueSeasonID int) ([]models.TeamEpisodePoints, error)
	ReplaceTeamSeries(ctx context.Context, teamID, fromEpisode int, rows []models.TeamEpisodePoints, answers []models.AnswerPoints, totalPoints int) error
	UpsertTeamEpisode(ctx context.Context, row models.TeamEpisodePoints, answers []models.AnswerPoints, syncTotal bool) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	SeasonRepository
	TeamRepository
	RosterRepository
	QuestionRepository
	AnswerRepository
	RetentionRepository
	LedgerRepository
	SettingsRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
