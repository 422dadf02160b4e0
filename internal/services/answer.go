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

// AnswerServiceRepository defines the repository methods needed by AnswerService
type AnswerServiceRepository interface {
	repository.TeamRepository
	repository.QuestionRepository
	repository.AnswerRepository
}

// AnswerService accepts team submissions for unscored questions
type AnswerService struct {
	log  logger.Logger
	repo AnswerServiceRepository
}

// NewAnswerService creates a new AnswerService
func NewAnswerService(log logger.Logger, repo AnswerServiceRepository) *AnswerService {
	return &AnswerService{log: log, repo: repo}
}

var _ AnswerServicer = (*AnswerService)(nil)

// AnswerSubmission is a team's answer to one question
type AnswerSubmission struct {
	QuestionID  int    `json:"question_id"`
	TeamID      int    `json:"team_id"`
	AnswerText  string `json:"answer_text"`
	WagerAmount *int   `json:"wager_amount,omitempty"`
}

// SubmitAnswer creates or replaces a team's answer. Out-of-range wagers are
// clamped to the question's bounds; points stay empty until scoring.
func (s *AnswerService) SubmitAnswer(ctx context.Context, sub AnswerSubmission) (*models.Answer, error) {
	q, err := s.repo.GetQuestion(ctx, sub.QuestionID)
	if err != nil {
		return nil, notFound(err, "question %d not found", sub.QuestionID)
	}
	if q.IsScored {
		return nil, ErrQuestionScored
	}
	team, err := s.repo.GetTeam(ctx, sub.TeamID)
	if err != nil {
		return nil, notFound(err, "team %d not found", sub.TeamID)
	}
	if team.LeagueSeasonID != q.LeagueSeasonID {
		return nil, errors.Validationf("team %d is not in question %d's league-season", team.ID, q.ID)
	}

	text := strings.TrimSpace(sub.AnswerText)
	if text != "" && q.Type == models.QuestionSingleChoice && !matchesOption(q.Options, text) {
		return nil, errors.Validationf("answer %q is not one of the question's options", text)
	}

	wager := sub.WagerAmount
	if wager != nil {
		if !q.IsWager {
			return nil, errors.Validation("question does not accept wagers")
		}
		if *wager < 0 {
			return nil, errors.Validation("wager must not be negative")
		}
		applied, clamped := scoring.ClampWager(*q, *wager)
		if clamped {
			s.log.Warn("Wager outside question bounds, clamped",
				"question_id", q.ID, "team_id", team.ID, "submitted", *wager, "applied", applied)
			wager = &applied
		}
	} else if q.IsWager && text != "" {
		return nil, errors.Validation("wager questions need a wager amount")
	}

	if _, err := s.repo.SaveAnswer(ctx, q.ID, team.ID, text, wager); err != nil {
		return nil, err
	}
	s.log.Info("Answer recorded", "question_id", q.ID, "team_id", team.ID)

	a, err := s.repo.GetAnswer(ctx, q.ID, team.ID)
	if err != nil {
		return nil, notFound(err, "answer for question %d not found", q.ID)
	}
	return a, nil
}
