package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// League is a seeded league-season with teams and castaways
type League struct {
	SeasonID  int
	TeamIDs   []int
	Castaways []int
}

var leagueSeq atomic.Int64

// SeedLeague creates a league-season with the given number of teams and
// castaways. The active episode is left at 0.
func SeedLeague(t *testing.T, repo repository.FullRepository, teams, castaways, totalEpisodes int) League {
	t.Helper()
	ctx := context.Background()

	seasonID, err := repo.CreateLeagueSeason(ctx, fmt.Sprintf("League %s #%d", t.Name(), leagueSeq.Add(1)), totalEpisodes)
	if err != nil {
		t.Fatalf("CreateLeagueSeason failed: %v", err)
	}
	l := League{SeasonID: int(seasonID)}

	for i := 0; i < teams; i++ {
		id, err := repo.CreateTeam(ctx, l.SeasonID, fmt.Sprintf("Team %d", i+1), fmt.Sprintf("owner-%d", i+1))
		if err != nil {
			t.Fatalf("CreateTeam failed: %v", err)
		}
		l.TeamIDs = append(l.TeamIDs, int(id))
	}
	for i := 0; i < castaways; i++ {
		id, err := repo.CreateCastaway(ctx, l.SeasonID, fmt.Sprintf("Castaway %d", i+1))
		if err != nil {
			t.Fatalf("CreateCastaway failed: %v", err)
		}
		l.Castaways = append(l.Castaways, int(id))
	}
	return l
}

// Draft adds a roster window for a castaway on a team
func Draft(t *testing.T, repo repository.FullRepository, teamID, castawayID, start int, end *int) {
	t.Helper()
	if _, err := repo.AddRosterEntry(context.Background(), teamID, castawayID, start, end); err != nil {
		t.Fatalf("AddRosterEntry failed: %v", err)
	}
}

// SetActive moves the league-season's active episode directly in storage
func SetActive(t *testing.T, repo repository.FullRepository, seasonID, episode int) {
	t.Helper()
	if err := repo.SetActiveEpisode(context.Background(), seasonID, episode); err != nil {
		t.Fatalf("SetActiveEpisode failed: %v", err)
	}
}

// Retention configures the same per-castaway retention for episodes from..to
func Retention(t *testing.T, repo repository.FullRepository, seasonID, from, to, points int) {
	t.Helper()
	if err := repo.SetRetentionConfigRange(context.Background(), seasonID, from, to, points); err != nil {
		t.Fatalf("SetRetentionConfigRange failed: %v", err)
	}
}

// FreeTextQuestion stores an unscored free-text question
func FreeTextQuestion(t *testing.T, repo repository.FullRepository, seasonID, episode, points int) int {
	t.Helper()
	id, err := repo.CreateQuestion(context.Background(), models.Question{
		LeagueSeasonID: seasonID,
		EpisodeNumber:  episode,
		Type:           models.QuestionFreeText,
		Prompt:         fmt.Sprintf("Episode %d question", episode),
		PointValue:     points,
	})
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	return int(id)
}

// WagerQuestion stores an unscored free-text wager question
func WagerQuestion(t *testing.T, repo repository.FullRepository, seasonID, episode, minWager, maxWager int) int {
	t.Helper()
	id, err := repo.CreateQuestion(context.Background(), models.Question{
		LeagueSeasonID: seasonID,
		EpisodeNumber:  episode,
		Type:           models.QuestionFreeText,
		Prompt:         fmt.Sprintf("Episode %d wager", episode),
		PointValue:     1,
		IsWager:        true,
		MinWager:       &minWager,
		MaxWager:       &maxWager,
	})
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	return int(id)
}

// Answer stores a team's answer directly in storage
func Answer(t *testing.T, repo repository.FullRepository, questionID, teamID int, text string, wager *int) int {
	t.Helper()
	id, err := repo.SaveAnswer(context.Background(), questionID, teamID, text, wager)
	if err != nil {
		t.Fatalf("SaveAnswer failed: %v", err)
	}
	return int(id)
}

// MarkScored sets a question's correct answer without recalculating
func MarkScored(t *testing.T, repo repository.FullRepository, questionID int, correct string) {
	t.Helper()
	if err := repo.MarkQuestionScored(context.Background(), questionID, correct); err != nil {
		t.Fatalf("MarkQuestionScored failed: %v", err)
	}
}

// Ledger reads a team's ledger rows
func Ledger(t *testing.T, repo repository.FullRepository, teamID int) []models.TeamEpisodePoints {
	t.Helper()
	rows, err := repo.ListTeamEpisodePoints(context.Background(), teamID)
	if err != nil {
		t.Fatalf("ListTeamEpisodePoints failed: %v", err)
	}
	return rows
}

// Total reads a team's cached total
func Total(t *testing.T, repo repository.FullRepository, teamID int) int {
	t.Helper()
	total, err := repo.GetTeamTotal(context.Background(), teamID)
	if err != nil {
		t.Fatalf("GetTeamTotal failed: %v", err)
	}
	return total
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}
