package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.ListRetentionConfigsError = errors.New("database error")
//	svc := services.NewLedgerService(log, mockRepo, 4)
//	_, err := svc.RecalculateSeason(ctx, seasonID)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Season Errors =====
	GetLeagueSeasonError  error
	SetActiveEpisodeError error

	// ===== Team Errors =====
	GetTeamError   error
	ListTeamsError error

	// ===== Roster Errors =====
	ListRosterEntriesError error

	// ===== Question and Answer Errors =====
	CreateQuestionError         error
	GetQuestionError            error
	MarkQuestionScoredError     error
	SaveAnswerError             error
	ListScoredAnswersError      error
	ListTeamIDsForQuestionError error

	// ===== Retention Errors =====
	SetRetentionConfigError   error
	ListRetentionConfigsError error

	// ===== Ledger Errors =====
	ListTeamEpisodePointsError   error
	ListSeasonEpisodePointsError error
	UpsertTeamEpisodeError       error
	// ReplaceTeamSeriesErrors fails the write for specific teams only
	ReplaceTeamSeriesErrors map[int]error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	mu                sync.Mutex
	replaceSeriesCall int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ReplaceTeamSeriesCalls reports how many series writes were attempted
func (m *Repository) ReplaceTeamSeriesCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceSeriesCall
}

// ===== Season Methods =====

func (m *Repository) GetLeagueSeason(ctx context.Context, id int) (*models.LeagueSeason, error) {
	if m.GetLeagueSeasonError != nil {
		return nil, m.GetLeagueSeasonError
	}
	return m.FullRepository.GetLeagueSeason(ctx, id)
}

func (m *Repository) SetActiveEpisode(ctx context.Context, id, episode int) error {
	if m.SetActiveEpisodeError != nil {
		return m.SetActiveEpisodeError
	}
	return m.FullRepository.SetActiveEpisode(ctx, id, episode)
}

// ===== Team Methods =====

func (m *Repository) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	if m.GetTeamError != nil {
		return nil, m.GetTeamError
	}
	return m.FullRepository.GetTeam(ctx, id)
}

func (m *Repository) ListTeams(ctx context.Context, leagueSeasonID int) ([]models.Team, error) {
	if m.ListTeamsError != nil {
		return nil, m.ListTeamsError
	}
	return m.FullRepository.ListTeams(ctx, leagueSeasonID)
}

// ===== Roster Methods =====

func (m *Repository) ListRosterEntries(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	if m.ListRosterEntriesError != nil {
		return nil, m.ListRosterEntriesError
	}
	return m.FullRepository.ListRosterEntries(ctx, teamID)
}

// ===== Question and Answer Methods =====

func (m *Repository) CreateQuestion(ctx context.Context, q models.Question) (int64, error) {
	if m.CreateQuestionError != nil {
		return 0, m.CreateQuestionError
	}
	return m.FullRepository.CreateQuestion(ctx, q)
}

func (m *Repository) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	if m.GetQuestionError != nil {
		return nil, m.GetQuestionError
	}
	return m.FullRepository.GetQuestion(ctx, id)
}

func (m *Repository) MarkQuestionScored(ctx context.Context, id int, correctAnswer string) error {
	if m.MarkQuestionScoredError != nil {
		return m.MarkQuestionScoredError
	}
	return m.FullRepository.MarkQuestionScored(ctx, id, correctAnswer)
}

func (m *Repository) SaveAnswer(ctx context.Context, questionID, teamID int, answerText string, wagerAmount *int) (int64, error) {
	if m.SaveAnswerError != nil {
		return 0, m.SaveAnswerError
	}
	return m.FullRepository.SaveAnswer(ctx, questionID, teamID, answerText, wagerAmount)
}

func (m *Repository) ListScoredAnswers(ctx context.Context, teamID, maxEpisode int) ([]models.ScoredAnswer, error) {
	if m.ListScoredAnswersError != nil {
		return nil, m.ListScoredAnswersError
	}
	return m.FullRepository.ListScoredAnswers(ctx, teamID, maxEpisode)
}

func (m *Repository) ListTeamIDsForQuestion(ctx context.Context, questionID int) ([]int, error) {
	if m.ListTeamIDsForQuestionError != nil {
		return nil, m.ListTeamIDsForQuestionError
	}
	return m.FullRepository.ListTeamIDsForQuestion(ctx, questionID)
}

// ===== Retention Methods =====

func (m *Repository) SetRetentionConfig(ctx context.Context, leagueSeasonID, episode, pointsPerCastaway int) error {
	if m.SetRetentionConfigError != nil {
		return m.SetRetentionConfigError
	}
	return m.FullRepository.SetRetentionConfig(ctx, leagueSeasonID, episode, pointsPerCastaway)
}

func (m *Repository) ListRetentionConfigs(ctx context.Context, leagueSeasonID int) ([]models.RetentionConfig, error) {
	if m.ListRetentionConfigsError != nil {
		return nil, m.ListRetentionConfigsError
	}
	return m.FullRepository.ListRetentionConfigs(ctx, leagueSeasonID)
}

// ===== Ledger Methods =====

func (m *Repository) ListTeamEpisodePoints(ctx context.Context, teamID int) ([]models.TeamEpisodePoints, error) {
	if m.ListTeamEpisodePointsError != nil {
		return nil, m.ListTeamEpisodePointsError
	}
	return m.FullRepository.ListTeamEpisodePoints(ctx, teamID)
}

func (m *Repository) ListSeasonEpisodePoints(ctx context.Context, leagueSeasonID int) ([]models.TeamEpisodePoints, error) {
	if m.ListSeasonEpisodePointsError != nil {
		return nil, m.ListSeasonEpisodePointsError
	}
	return m.FullRepository.ListSeasonEpisodePoints(ctx, leagueSeasonID)
}

func (m *Repository) ReplaceTeamSeries(ctx context.Context, teamID, fromEpisode int, rows []models.TeamEpisodePoints, answers []models.AnswerPoints, totalPoints int) error {
	m.mu.Lock()
	m.replaceSeriesCall++
	err := m.ReplaceTeamSeriesErrors[teamID]
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.FullRepository.ReplaceTeamSeries(ctx, teamID, fromEpisode, rows, answers, totalPoints)
}

func (m *Repository) UpsertTeamEpisode(ctx context.Context, row models.TeamEpisodePoints, answers []models.AnswerPoints, syncTotal bool) error {
	if m.UpsertTeamEpisodeError != nil {
		return m.UpsertTeamEpisodeError
	}
	return m.FullRepository.UpsertTeamEpisode(ctx, row, answers, syncTotal)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// Ensure Repository implements FullRepository
var _ repository.FullRepository = (*Repository)(nil)
