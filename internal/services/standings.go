package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// StandingsServiceRepository defines the repository methods needed by StandingsService
type StandingsServiceRepository interface {
	repository.SeasonRepository
	repository.TeamRepository
	repository.RetentionRepository
	repository.LedgerRepository
}

// StandingsService projects rankings from the ledger. It never writes.
type StandingsService struct {
	log      logger.Logger
	repo     StandingsServiceRepository
	settings SettingsServicer
}

// NewStandingsService creates a new StandingsService
func NewStandingsService(log logger.Logger, repo StandingsServiceRepository, settings SettingsServicer) *StandingsService {
	return &StandingsService{log: log, repo: repo, settings: settings}
}

var _ StandingsServicer = (*StandingsService)(nil)

// StandingsEntry is one team's place in the standings
type StandingsEntry struct {
	Rank         int    `json:"rank"`
	PreviousRank *int   `json:"previous_rank,omitempty"`
	RankDelta    int    `json:"rank_delta"` // positive when the team moved up
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name"`
	TotalPoints  int    `json:"total_points"`
	PointsDelta  int    `json:"points_delta"`
}

// Standings is the ranked view of a league-season at its active episode
type Standings struct {
	LeagueSeasonID       int              `json:"league_season_id"`
	ActiveEpisode        int              `json:"active_episode"`
	Entries              []StandingsEntry `json:"entries"`
	UnconfiguredEpisodes []int            `json:"unconfigured_episodes"`
}

// Standings ranks teams by running total at the active episode. Ties keep
// team creation order, so every team has a distinct rank.
func (s *StandingsService) Standings(ctx context.Context, leagueSeasonID int) (*Standings, error) {
	season, err := s.repo.GetLeagueSeason(ctx, leagueSeasonID)
	if err != nil {
		return nil, notFound(err, "league-season %d not found", leagueSeasonID)
	}
	teams, err := s.repo.ListTeams(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSeasonEpisodePoints(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	configs, err := s.repo.ListRetentionConfigs(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}

	n := season.ActiveEpisode
	type key struct{ team, episode int }
	ledger := make(map[key]models.TeamEpisodePoints, len(rows))
	for _, r := range rows {
		ledger[key{r.TeamID, r.EpisodeNumber}] = r
	}
	runningAt := func(teamID, episode int) int {
		return ledger[key{teamID, episode}].RunningTotal
	}

	current := rankTeams(teams, func(id int) int { return runningAt(id, n) })
	var previous map[int]int
	if n >= 2 {
		previous = rankTeams(teams, func(id int) int { return runningAt(id, n-1) })
	}

	standings := &Standings{
		LeagueSeasonID: leagueSeasonID,
		ActiveEpisode:  n,
		Entries:        make([]StandingsEntry, 0, len(teams)),
	}
	for _, t := range teams {
		entry := StandingsEntry{
			Rank:        current[t.ID],
			TeamID:      t.ID,
			TeamName:    t.Name,
			TotalPoints: runningAt(t.ID, n),
			PointsDelta: ledger[key{t.ID, n}].TotalEpisodePoints,
		}
		if prev, ok := previous[t.ID]; ok {
			entry.PreviousRank = &prev
			entry.RankDelta = prev - entry.Rank
		}
		standings.Entries = append(standings.Entries, entry)
	}
	sort.Slice(standings.Entries, func(i, j int) bool { return standings.Entries[i].Rank < standings.Entries[j].Rank })

	configured := make(map[int]int, len(configs))
	for _, c := range configs {
		configured[c.EpisodeNumber] = c.PointsPerCastaway
	}
	standings.UnconfiguredEpisodes = unconfiguredEpisodes(configured, n)
	if standings.UnconfiguredEpisodes == nil {
		standings.UnconfiguredEpisodes = []int{}
	}
	return standings, nil
}

// rankTeams assigns ranks 1..len(teams) by points descending. teams must be
// in creation order, which the stable sort keeps for ties.
func rankTeams(teams []models.Team, points func(teamID int) int) map[int]int {
	ordered := make([]models.Team, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return points(ordered[i].ID) > points(ordered[j].ID)
	})

	ranks := make(map[int]int, len(ordered))
	for i, t := range ordered {
		ranks[t.ID] = i + 1
	}
	return ranks
}

// StandingsQR renders a PNG QR code linking to the public standings page
func (s *StandingsService) StandingsQR(ctx context.Context, leagueSeasonID int) ([]byte, error) {
	if _, err := s.repo.GetLeagueSeason(ctx, leagueSeasonID); err != nil {
		return nil, notFound(err, "league-season %d not found", leagueSeasonID)
	}
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, ErrBaseURLNotSet
	}

	link := fmt.Sprintf("%s/seasons/%d/standings", strings.TrimRight(baseURL, "/"), leagueSeasonID)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}
