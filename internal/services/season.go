package services

import (
	"context"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// SeasonServiceRepository defines the repository methods needed by SeasonService
type SeasonServiceRepository interface {
	repository.SeasonRepository
	repository.TeamRepository
	repository.RosterRepository
	repository.QuestionRepository
	repository.AnswerRepository
	repository.RetentionRepository
	repository.LedgerRepository
}

// SeasonService handles league-season lifecycle: moving the active episode
// and seeding demo data
type SeasonService struct {
	log    logger.Logger
	repo   SeasonServiceRepository
	ledger LedgerServicer
}

// NewSeasonService creates a new SeasonService
func NewSeasonService(log logger.Logger, repo SeasonServiceRepository, ledger LedgerServicer) *SeasonService {
	return &SeasonService{log: log, repo: repo, ledger: ledger}
}

var _ SeasonServicer = (*SeasonService)(nil)

// AdvanceResult summarizes scoring a newly aired episode
type AdvanceResult struct {
	LeagueSeasonID int           `json:"league_season_id"`
	ActiveEpisode  int           `json:"active_episode"`
	TeamsScored    int           `json:"teams_scored"`
	Failed         []TeamFailure `json:"failed,omitempty"`
	// Recalculation is set when some team had no stored row for the
	// previous episode and the season had to be rebuilt
	Recalculation *RecalculationResult `json:"recalculation,omitempty"`
}

// GetSeason returns a league-season by ID
func (s *SeasonService) GetSeason(ctx context.Context, id int) (*models.LeagueSeason, error) {
	season, err := s.repo.GetLeagueSeason(ctx, id)
	if err != nil {
		return nil, notFound(err, "league-season %d not found", id)
	}
	return season, nil
}

// SetActiveEpisode moves the aired-episode bound to any value in
// 0..totalEpisodes and rebuilds the ledger, which also removes rows past the
// new bound
func (s *SeasonService) SetActiveEpisode(ctx context.Context, id, episode int) (*RecalculationResult, error) {
	season, err := s.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if episode < 0 || episode > season.TotalEpisodes {
		return nil, errors.Validationf("active episode must be between 0 and %d, got %d", season.TotalEpisodes, episode)
	}
	if err := s.repo.SetActiveEpisode(ctx, id, episode); err != nil {
		return nil, err
	}
	s.log.Info("Active episode set", "league_season_id", id, "from", season.ActiveEpisode, "to", episode)
	return s.ledger.RecalculateSeason(ctx, id)
}

// AdvanceEpisode airs the next episode and scores it incrementally for every
// team on top of the team's stored running total
func (s *SeasonService) AdvanceEpisode(ctx context.Context, id int) (*AdvanceResult, error) {
	season, err := s.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	next := season.ActiveEpisode + 1
	if next > season.TotalEpisodes {
		return nil, errors.Validationf("season has only %d episodes", season.TotalEpisodes)
	}

	teams, err := s.repo.ListTeams(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSeasonEpisodePoints(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := make(map[int]int)
	for _, r := range rows {
		if r.EpisodeNumber == season.ActiveEpisode {
			previous[r.TeamID] = r.RunningTotal
		}
	}

	if err := s.repo.SetActiveEpisode(ctx, id, next); err != nil {
		return nil, err
	}

	result := &AdvanceResult{LeagueSeasonID: id, ActiveEpisode: next}
	needsRebuild := false
	for _, team := range teams {
		prev, ok := previous[team.ID]
		if !ok && season.ActiveEpisode > 0 {
			needsRebuild = true
			continue
		}
		if _, err := s.ledger.ComputeEpisode(ctx, team.ID, next, prev); err != nil {
			s.log.Error("Failed to score episode", "league_season_id", id, "team_id", team.ID, "episode", next, "error", err)
			result.Failed = append(result.Failed, TeamFailure{TeamID: team.ID, Error: err.Error()})
			continue
		}
		result.TeamsScored++
	}

	if needsRebuild {
		s.log.Warn("Ledger rows missing for previous episode, recalculating season", "league_season_id", id, "episode", season.ActiveEpisode)
		rec, err := s.ledger.RecalculateSeason(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Recalculation = rec
		result.TeamsScored = rec.TeamsRecalculated
		result.Failed = rec.Failed
	}

	s.log.Info("Episode advanced", "league_season_id", id, "episode", next, "teams_scored", result.TeamsScored)
	return result, nil
}
