package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/repository"
	"github.com/abrezinsky/castawayleague/internal/repository/mock"
	"github.com/abrezinsky/castawayleague/internal/services"
	"github.com/abrezinsky/castawayleague/internal/testutil"
)

func newSeasonService(repo repository.FullRepository) (*services.SeasonService, *services.LedgerService) {
	log := logger.Discard()
	ledger := services.NewLedgerService(log, repo, 2)
	return services.NewSeasonService(log, repo, ledger), ledger
}

func TestSeasonService_AdvanceEpisodeIncremental(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, ledger := newSeasonService(repo)
	ctx := context.Background()
	l := threeEpisodeLeague(t, repo)
	testutil.Retention(t, repo, l.SeasonID, 4, 4, 3)
	ledger.RecalculateSeason(ctx, l.SeasonID)

	q := testutil.FreeTextQuestion(t, repo, l.SeasonID, 4, 2)
	testutil.Answer(t, repo, q, l.TeamIDs[1], "Kenzie", nil)
	testutil.MarkScored(t, repo, q, "Kenzie")

	result, err := svc.AdvanceEpisode(ctx, l.SeasonID)
	if err != nil {
		t.Fatalf("AdvanceEpisode failed: %v", err)
	}
	if result.ActiveEpisode != 4 || result.TeamsScored != 2 || result.Recalculation != nil {
		t.Errorf("unexpected result: %+v", result)
	}

	season, _ := svc.GetSeason(ctx, l.SeasonID)
	if season.ActiveEpisode != 4 {
		t.Errorf("expected active episode 4, got %d", season.ActiveEpisode)
	}
	if got := testutil.Total(t, repo, l.TeamIDs[0]); got != 27 {
		t.Errorf("team 1 total = %d, want 27", got)
	}
	if got := testutil.Total(t, repo, l.TeamIDs[1]); got != 29 {
		t.Errorf("team 2 total = %d, want 29", got)
	}

	report, _ := ledger.VerifySeason(ctx, l.SeasonID)
	if !report.OK {
		t.Errorf("incremental path broke the ledger: %+v", report.Violations)
	}
}

func TestSeasonService_AdvanceEpisodeFromPremiere(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, _ := newSeasonService(repo)
	ctx := context.Background()
	l := testutil.SeedLeague(t, repo, 1, 2, 13)
	testutil.Draft(t, repo, l.TeamIDs[0], l.Castaways[0], 1, nil)
	testutil.Retention(t, repo, l.SeasonID, 1, 1, 4)

	if _, err := svc.AdvanceEpisode(ctx, l.SeasonID); err != nil {
		t.Fatalf("AdvanceEpisode failed: %v", err)
	}
	rows := testutil.Ledger(t, repo, l.TeamIDs[0])
	if len(rows) != 1 || rows[0].RunningTotal != 4 {
		t.Errorf("expected single episode-1 row with 4 points, got %+v", rows)
	}
}

func TestSeasonService_AdvanceEpisodeRebuildsWhenPrefixMissing(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, ledger := newSeasonService(repo)
	ctx := context.Background()
	l := threeEpisodeLeague(t, repo)

	// Nothing has been written for episode 3 yet.
	result, err := svc.AdvanceEpisode(ctx, l.SeasonID)
	if err != nil {
		t.Fatalf("AdvanceEpisode failed: %v", err)
	}
	if result.Recalculation == nil || result.TeamsScored != 2 {
		t.Errorf("expected fallback recalculation, got %+v", result)
	}
	report, _ := ledger.VerifySeason(ctx, l.SeasonID)
	if !report.OK {
		t.Errorf("expected consistent ledger, got %+v", report.Violations)
	}
}

func TestSeasonService_AdvanceEpisodePastFinale(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, _ := newSeasonService(repo)
	l := testutil.SeedLeague(t, repo, 1, 0, 2)
	testutil.SetActive(t, repo, l.SeasonID, 2)

	_, err := svc.AdvanceEpisode(context.Background(), l.SeasonID)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected Validation error, got %v", err)
	}
}

func TestSeasonService_AdvanceEpisodeReportsTeamFailures(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(realRepo)
	svc, _ := newSeasonService(mockRepo)
	l := testutil.SeedLeague(t, realRepo, 2, 0, 13)

	mockRepo.UpsertTeamEpisodeError = stderrors.New("write failed")
	result, err := svc.AdvanceEpisode(context.Background(), l.SeasonID)
	if err != nil {
		t.Fatalf("AdvanceEpisode failed: %v", err)
	}
	if result.TeamsScored != 0 || len(result.Failed) != 2 {
		t.Errorf("expected both teams to fail, got %+v", result)
	}
}

func TestSeasonService_SetActiveEpisode(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, ledger := newSeasonService(repo)
	ctx := context.Background()
	l := threeEpisodeLeague(t, repo)
	ledger.RecalculateSeason(ctx, l.SeasonID)

	result, err := svc.SetActiveEpisode(ctx, l.SeasonID, 2)
	if err != nil {
		t.Fatalf("SetActiveEpisode failed: %v", err)
	}
	if result.EpisodesProcessed != 2 {
		t.Errorf("expected 2 episodes processed, got %d", result.EpisodesProcessed)
	}
	if rows := testutil.Ledger(t, repo, l.TeamIDs[0]); len(rows) != 2 {
		t.Errorf("expected rows for episode 3 removed, got %+v", rows)
	}
	if got := testutil.Total(t, repo, l.TeamIDs[0]); got != 12 {
		t.Errorf("team total = %d, want 12", got)
	}

	for _, bad := range []int{-1, 14} {
		if _, err := svc.SetActiveEpisode(ctx, l.SeasonID, bad); !errors.Is(err, errors.ErrValidation) {
			t.Errorf("SetActiveEpisode(%d): expected Validation, got %v", bad, err)
		}
	}
	if _, err := svc.SetActiveEpisode(ctx, 9999, 1); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSeasonService_SetActiveEpisodeStoreError(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	mockRepo := mock.NewRepository(realRepo)
	svc, _ := newSeasonService(mockRepo)
	l := testutil.SeedLeague(t, realRepo, 1, 0, 13)

	mockRepo.SetActiveEpisodeError = stderrors.New("locked")
	if _, err := svc.SetActiveEpisode(context.Background(), l.SeasonID, 1); err == nil {
		t.Error("expected store error")
	}
}

func TestSeasonService_SeedDemoSeason(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, ledger := newSeasonService(repo)
	ctx := context.Background()

	result, err := svc.SeedDemoSeason(ctx)
	if err != nil {
		t.Fatalf("SeedDemoSeason failed: %v", err)
	}
	if !result.Created || result.Teams != 4 || result.Castaways != 8 || result.Questions != 3 {
		t.Errorf("unexpected seed result: %+v", result)
	}
	if result.Recalculation == nil || result.Recalculation.TeamsRecalculated != 4 {
		t.Errorf("expected seeded ledger, got %+v", result.Recalculation)
	}

	teams, _ := repo.ListTeams(ctx, result.LeagueSeasonID)
	want := []int{8, 24, 18, 4}
	for i, team := range teams {
		if team.TotalPoints != want[i] {
			t.Errorf("%s total = %d, want %d", team.Name, team.TotalPoints, want[i])
		}
	}

	report, _ := ledger.VerifySeason(ctx, result.LeagueSeasonID)
	if !report.OK {
		t.Errorf("seeded ledger inconsistent: %+v", report.Violations)
	}

	again, err := svc.SeedDemoSeason(ctx)
	if err != nil {
		t.Fatalf("second SeedDemoSeason failed: %v", err)
	}
	if again.Created || again.LeagueSeasonID != result.LeagueSeasonID {
		t.Errorf("expected existing season to be returned, got %+v", again)
	}
}
