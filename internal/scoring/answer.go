package scoring

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// ErrQuestionUnscored is returned when scoring is attempted before a
// question has a correct answer.
var ErrQuestionUnscored = errors.New("question has not been scored")

// AnswerResult is the outcome of scoring one answer
type AnswerResult struct {
	Points  int
	Correct bool
	// Wager is the stake actually applied after clamping; zero for
	// non-wager questions.
	Wager   int
	Clamped bool
}

// Normalize trims surrounding whitespace and case-folds s.
// Punctuation and accents are left untouched.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Matches reports whether two answers are equal under Normalize
func Matches(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ClampWager limits wager to the question's bounds. Missing bounds are
// treated as unbounded on that side.
func ClampWager(q models.Question, wager int) (int, bool) {
	if q.MinWager != nil && wager < *q.MinWager {
		return *q.MinWager, true
	}
	if q.MaxWager != nil && wager > *q.MaxWager {
		return *q.MaxWager, true
	}
	return wager, false
}

// ScoreAnswer computes the signed points an answer earns on a scored question.
//
// Blank answers earn 0 regardless of question type, and so does a wager
// question answered without a stake.
func ScoreAnswer(q models.Question, a models.Answer) (AnswerResult, error) {
	if !q.IsScored || q.CorrectAnswer == nil {
		return AnswerResult{}, ErrQuestionUnscored
	}
	if strings.TrimSpace(a.AnswerText) == "" {
		return AnswerResult{}, nil
	}

	correct := Matches(a.AnswerText, *q.CorrectAnswer)

	if !q.IsWager {
		if correct {
			return AnswerResult{Points: q.PointValue, Correct: true}, nil
		}
		return AnswerResult{}, nil
	}

	if a.WagerAmount == nil {
		return AnswerResult{Correct: correct}, nil
	}
	wager, clamped := ClampWager(q, *a.WagerAmount)
	res := AnswerResult{Correct: correct, Wager: wager, Clamped: clamped}
	if correct {
		res.Points = wager
	} else {
		res.Points = -wager
	}
	return res, nil
}
