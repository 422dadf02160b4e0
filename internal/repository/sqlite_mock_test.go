package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/abrezinsky/castawayleague/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

// TestReplaceTeamSeries_RollsBackOnInsertError tests that a failed row write
// never commits the delete that preceded it
func TestReplaceTeamSeries_RollsBackOnInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM team_episode_points").
		WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO team_episode_points").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	rows := []models.TeamEpisodePoints{{TeamID: 7, EpisodeNumber: 1, TotalEpisodePoints: 2, RunningTotal: 2}}
	err := repo.ReplaceTeamSeries(ctx, 7, 1, rows, nil, 2)
	if err == nil {
		t.Fatal("expected error from insert failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestReplaceTeamSeries_RollsBackOnAnswerUpdateError tests that answer
// point updates are part of the same transaction
func TestReplaceTeamSeries_RollsBackOnAnswerUpdateError(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM team_episode_points").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO team_episode_points").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE answers SET points_earned").
		WithArgs(5, 11).
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	rows := []models.TeamEpisodePoints{{TeamID: 7, EpisodeNumber: 1, QuestionPoints: 5, TotalEpisodePoints: 5, RunningTotal: 5}}
	answers := []models.AnswerPoints{{AnswerID: 11, PointsEarned: 5}}
	if err := repo.ReplaceTeamSeries(ctx, 7, 1, rows, answers, 5); err == nil {
		t.Fatal("expected error from answer update failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestReplaceTeamSeries_MissingTeam tests that a vanished team aborts the write
func TestReplaceTeamSeries_MissingTeam(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM team_episode_points").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE teams SET total_points").
		WithArgs(0, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReplaceTeamSeries(ctx, 7, 1, nil, nil, 0)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestUpsertTeamEpisode_CommitError tests commit failures are surfaced
func TestUpsertTeamEpisode_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO team_episode_points").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE teams SET total_points").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	row := models.TeamEpisodePoints{TeamID: 7, EpisodeNumber: 2, RunningTotal: 9}
	if err := repo.UpsertTeamEpisode(ctx, row, nil, true); err == nil {
		t.Fatal("expected commit error")
	}
}

// TestSetRetentionConfigRange_RollsBack tests a mid-range failure leaves nothing applied
func TestSetRetentionConfigRange_RollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO retention_configs").WithArgs(3, 1, 2).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO retention_configs").WithArgs(3, 2, 2).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if err := repo.SetRetentionConfigRange(ctx, 3, 1, 3, 2); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestListTeams_ScanError tests row scanning error
func TestListTeams_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "league_season_id", "name", "owner_user_id", "total_points", "created_at"}).
		AddRow("not-a-number", 1, "Tribe", nil, 0, nil)
	mock.ExpectQuery("SELECT (.+) FROM teams").WillReturnRows(rows)

	if _, err := repo.ListTeams(context.Background(), 1); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListTeamEpisodePoints_ScanError tests row scanning error
func TestListTeamEpisodePoints_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"team_id", "episode_number", "question_points", "retention_points", "total_episode_points", "running_total"}).
		AddRow(1, "bad", 0, 0, 0, 0)
	mock.ExpectQuery("SELECT (.+) FROM team_episode_points").WillReturnRows(rows)

	if _, err := repo.ListTeamEpisodePoints(context.Background(), 1); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListScoredAnswers_QueryError tests query errors are returned
func TestListScoredAnswers_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM answers").WillReturnError(errors.New("no such table"))

	if _, err := repo.ListScoredAnswers(context.Background(), 1, 3); err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestGetQuestion_CorruptOptions tests that undecodable options are reported
func TestGetQuestion_CorruptOptions(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "league_season_id", "episode_number", "question_type", "prompt", "options",
		"point_value", "is_wager", "min_wager", "max_wager", "correct_answer", "is_scored"}).
		AddRow(1, 1, 1, "single_choice", "?", "{not json", 2, false, nil, nil, nil, false)
	mock.ExpectQuery("SELECT (.+) FROM questions").WillReturnRows(rows)

	if _, err := repo.GetQuestion(context.Background(), 1); err == nil {
		t.Error("expected JSON decode error, got nil")
	}
}
