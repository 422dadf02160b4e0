package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
	"github.com/abrezinsky/castawayleague/internal/scoring"
)

// QuestionServiceRepository defines the repository methods needed by QuestionService
type QuestionServiceRepository interface {
	repository.SeasonRepository
	repository.QuestionRepository
}

// QuestionService handles question authoring
type QuestionService struct {
	log  logger.Logger
	repo QuestionServiceRepository
}

// NewQuestionService creates a new QuestionService
func NewQuestionService(log logger.Logger, repo QuestionServiceRepository) *QuestionService {
	return &QuestionService{log: log, repo: repo}
}

var _ QuestionServicer = (*QuestionService)(nil)

// CreateQuestion validates and stores an unscored question
func (s *QuestionService) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	season, err := s.repo.GetLeagueSeason(ctx, q.LeagueSeasonID)
	if err != nil {
		return nil, notFound(err, "league-season %d not found", q.LeagueSeasonID)
	}
	if err := validateQuestion(&q, season); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateQuestion(ctx, q)
	if err != nil {
		return nil, err
	}
	s.log.Info("Question created", "question_id", id, "league_season_id", q.LeagueSeasonID, "episode", q.EpisodeNumber)
	return s.GetQuestion(ctx, int(id))
}

// GetQuestion returns a question by ID
func (s *QuestionService) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, notFound(err, "question %d not found", id)
	}
	return q, nil
}

// validateQuestion checks a question's shape and trims its options in place
func validateQuestion(q *models.Question, season *models.LeagueSeason) error {
	if !q.Type.Valid() {
		return errors.Validationf("unknown question type %q", q.Type)
	}
	if q.EpisodeNumber < 1 || q.EpisodeNumber > season.TotalEpisodes {
		return errors.Validationf("episode must be between 1 and %d, got %d", season.TotalEpisodes, q.EpisodeNumber)
	}
	if q.PointValue <= 0 {
		return errors.Validation("point value must be positive")
	}

	switch q.Type {
	case models.QuestionSingleChoice:
		if len(q.Options) < 2 {
			return errors.Validation("single-choice questions need at least two options")
		}
		seen := make(map[string]bool, len(q.Options))
		for i, o := range q.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				return errors.Validation("options must not be blank")
			}
			key := scoring.Normalize(o)
			if seen[key] {
				return errors.Validationf("duplicate option %q", o)
			}
			seen[key] = true
			q.Options[i] = o
		}
	case models.QuestionFreeText:
		if len(q.Options) > 0 {
			return errors.Validation("free-text questions cannot have options")
		}
	}

	if q.IsWager {
		if q.MinWager == nil || q.MaxWager == nil {
			return errors.Validation("wager questions need min and max wager")
		}
		if *q.MinWager < 0 || *q.MinWager > *q.MaxWager {
			return errors.Validationf("invalid wager bounds [%d, %d]", *q.MinWager, *q.MaxWager)
		}
	} else if q.MinWager != nil || q.MaxWager != nil {
		return errors.Validation("wager bounds are only allowed on wager questions")
	}

	// Correct answers are set only by scoring.
	q.CorrectAnswer = nil
	q.IsScored = false
	return nil
}
