package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/repository"
	"github.com/abrezinsky/castawayleague/internal/services"
	"github.com/abrezinsky/castawayleague/internal/testutil"
)

func newStandingsService(repo repository.FullRepository) (*services.StandingsService, *services.SettingsService) {
	log := logger.Discard()
	settings := services.NewSettingsService(log, repo)
	return services.NewStandingsService(log, repo, settings), settings
}

func TestStandingsService_DemoSeason(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	seasons, _ := newSeasonService(repo)
	svc, _ := newStandingsService(repo)
	ctx := context.Background()

	seeded, err := seasons.SeedDemoSeason(ctx)
	if err != nil {
		t.Fatalf("SeedDemoSeason failed: %v", err)
	}

	standings, err := svc.Standings(ctx, seeded.LeagueSeasonID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	want := []struct {
		name        string
		total       int
		pointsDelta int
	}{
		{"Nami Nation", 24, 6},
		{"Yanu Yappers", 18, 4},
		{"Siga Shoreline", 8, 2},
		{"Idol Hunters", 4, 6},
	}
	if len(standings.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(standings.Entries))
	}
	for i, w := range want {
		e := standings.Entries[i]
		if e.Rank != i+1 || e.TeamName != w.name || e.TotalPoints != w.total || e.PointsDelta != w.pointsDelta {
			t.Errorf("entry %d = %+v, want %s with %d (+%d)", i, e, w.name, w.total, w.pointsDelta)
		}
		if e.PreviousRank == nil || *e.PreviousRank != i+1 || e.RankDelta != 0 {
			t.Errorf("entry %d expected unchanged rank, got %+v", i, e)
		}
	}
	if len(standings.UnconfiguredEpisodes) != 0 {
		t.Errorf("expected all aired episodes configured, got %v", standings.UnconfiguredEpisodes)
	}
}

func TestStandingsService_TiesAndRankDelta(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ledger := services.NewLedgerService(logger.Discard(), repo, 2)
	svc, _ := newStandingsService(repo)
	ctx := context.Background()

	l := testutil.SeedLeague(t, repo, 3, 3, 13)
	for i, team := range l.TeamIDs {
		testutil.Draft(t, repo, team, l.Castaways[i], 1, nil)
	}
	testutil.Retention(t, repo, l.SeasonID, 1, 2, 1)
	testutil.SetActive(t, repo, l.SeasonID, 2)

	// Only the last-created team scores in episode 2.
	q := testutil.FreeTextQuestion(t, repo, l.SeasonID, 2, 5)
	testutil.Answer(t, repo, q, l.TeamIDs[2], "Q", nil)
	testutil.MarkScored(t, repo, q, "Q")
	ledger.RecalculateSeason(ctx, l.SeasonID)

	standings, err := svc.Standings(ctx, l.SeasonID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}

	order := []int{l.TeamIDs[2], l.TeamIDs[0], l.TeamIDs[1]}
	deltas := []int{2, -1, -1}
	for i, e := range standings.Entries {
		if e.TeamID != order[i] {
			t.Errorf("position %d: team %d, want %d", i+1, e.TeamID, order[i])
		}
		if e.RankDelta != deltas[i] {
			t.Errorf("position %d: rank delta %d, want %d", i+1, e.RankDelta, deltas[i])
		}
	}
}

func TestStandingsService_FirstEpisodeHasNoPreviousRank(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, _ := newStandingsService(repo)
	l := testutil.SeedLeague(t, repo, 2, 0, 13)
	testutil.SetActive(t, repo, l.SeasonID, 1)

	standings, err := svc.Standings(context.Background(), l.SeasonID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	for _, e := range standings.Entries {
		if e.PreviousRank != nil || e.RankDelta != 0 {
			t.Errorf("expected no previous rank at episode 1, got %+v", e)
		}
	}
	if len(standings.UnconfiguredEpisodes) != 1 {
		t.Errorf("expected episode 1 reported unconfigured, got %v", standings.UnconfiguredEpisodes)
	}
	if _, err := svc.Standings(context.Background(), 9999); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestStandingsService_StandingsQR(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc, settings := newStandingsService(repo)
	ctx := context.Background()
	l := testutil.SeedLeague(t, repo, 1, 0, 13)

	if _, err := svc.StandingsQR(ctx, l.SeasonID); err != services.ErrBaseURLNotSet {
		t.Errorf("expected ErrBaseURLNotSet, got %v", err)
	}

	if err := settings.SetBaseURL(ctx, "http://192.168.1.20:8081/"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	png, err := svc.StandingsQR(ctx, l.SeasonID)
	if err != nil {
		t.Fatalf("StandingsQR failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}

	if _, err := svc.StandingsQR(ctx, 9999); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
