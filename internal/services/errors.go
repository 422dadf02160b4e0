package services

import (
	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// Service errors
var (
	ErrQuestionScored     = errors.Conflictf("question is already scored; answers are closed")
	ErrBaseURLNotSet      = errors.Validation("base URL is not configured")
	ErrEmptyCorrectAnswer = errors.Validation("correct answer is required")
)

// notFound converts the repository's missing-record sentinel into a
// NotFound application error and passes any other error through
func notFound(err error, format string, args ...interface{}) error {
	if err == repository.ErrNotFound {
		return errors.NotFoundf(format, args...)
	}
	return err
}

// episodeNotAired is returned when scoring would run ahead of the season
func episodeNotAired(episode, active int) error {
	return errors.Validationf("episode %d has not aired (active episode is %d)", episode, active)
}
