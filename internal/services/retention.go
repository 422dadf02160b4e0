package services

import (
	"context"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// RetentionServiceRepository defines the repository methods needed by RetentionService
type RetentionServiceRepository interface {
	repository.SeasonRepository
	repository.RetentionRepository
}

// RetentionService manages per-episode retention points. Every change is
// followed by a full ledger recalculation.
type RetentionService struct {
	log    logger.Logger
	repo   RetentionServiceRepository
	ledger LedgerServicer
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(log logger.Logger, repo RetentionServiceRepository, ledger LedgerServicer) *RetentionService {
	return &RetentionService{log: log, repo: repo, ledger: ledger}
}

var _ RetentionServicer = (*RetentionService)(nil)

// RetentionListing is a league-season's retention configuration
type RetentionListing struct {
	LeagueSeasonID int                      `json:"league_season_id"`
	ActiveEpisode  int                      `json:"active_episode"`
	Configs        []models.RetentionConfig `json:"configs"`
	// UnconfiguredEpisodes are aired episodes scoring zero retention
	// because no value was set
	UnconfiguredEpisodes []int `json:"unconfigured_episodes"`
}

// ListRetention returns configured episodes and the aired episodes without a value
func (s *RetentionService) ListRetention(ctx context.Context, leagueSeasonID int) (*RetentionListing, error) {
	season, err := s.season(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	configs, err := s.repo.ListRetentionConfigs(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}

	configured := make(map[int]int, len(configs))
	for _, c := range configs {
		configured[c.EpisodeNumber] = c.PointsPerCastaway
	}
	listing := &RetentionListing{
		LeagueSeasonID:       leagueSeasonID,
		ActiveEpisode:        season.ActiveEpisode,
		Configs:              configs,
		UnconfiguredEpisodes: unconfiguredEpisodes(configured, season.ActiveEpisode),
	}
	if listing.Configs == nil {
		listing.Configs = []models.RetentionConfig{}
	}
	if listing.UnconfiguredEpisodes == nil {
		listing.UnconfiguredEpisodes = []int{}
	}
	return listing, nil
}

// SetRetention sets one episode's points per castaway and recalculates
func (s *RetentionService) SetRetention(ctx context.Context, leagueSeasonID, episode, pointsPerCastaway int) (*RecalculationResult, error) {
	if _, err := s.validEpisode(ctx, leagueSeasonID, episode); err != nil {
		return nil, err
	}
	if err := s.repo.SetRetentionConfig(ctx, leagueSeasonID, episode, pointsPerCastaway); err != nil {
		return nil, err
	}
	s.log.Info("Retention configured", "league_season_id", leagueSeasonID, "episode", episode, "points_per_castaway", pointsPerCastaway)
	return s.recalculate(ctx, leagueSeasonID)
}

// ClearRetention removes one episode's value so it scores zero retention
func (s *RetentionService) ClearRetention(ctx context.Context, leagueSeasonID, episode int) (*RecalculationResult, error) {
	if _, err := s.validEpisode(ctx, leagueSeasonID, episode); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteRetentionConfig(ctx, leagueSeasonID, episode); err != nil {
		return nil, err
	}
	s.log.Info("Retention cleared", "league_season_id", leagueSeasonID, "episode", episode)
	return s.recalculate(ctx, leagueSeasonID)
}

// ApplyRetentionToAll sets the same value for every episode of the season
func (s *RetentionService) ApplyRetentionToAll(ctx context.Context, leagueSeasonID, pointsPerCastaway int) (*RecalculationResult, error) {
	season, err := s.season(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	if season.TotalEpisodes < 1 {
		return nil, errors.Validation("season has no episodes")
	}
	if err := s.repo.SetRetentionConfigRange(ctx, leagueSeasonID, 1, season.TotalEpisodes, pointsPerCastaway); err != nil {
		return nil, err
	}
	s.log.Info("Retention applied to all episodes", "league_season_id", leagueSeasonID,
		"episodes", season.TotalEpisodes, "points_per_castaway", pointsPerCastaway)
	return s.recalculate(ctx, leagueSeasonID)
}

func (s *RetentionService) recalculate(ctx context.Context, leagueSeasonID int) (*RecalculationResult, error) {
	result, err := s.ledger.RecalculateSeason(ctx, leagueSeasonID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "retention saved but recalculation failed")
	}
	return result, nil
}

func (s *RetentionService) season(ctx context.Context, id int) (*models.LeagueSeason, error) {
	season, err := s.repo.GetLeagueSeason(ctx, id)
	if err != nil {
		return nil, notFound(err, "league-season %d not found", id)
	}
	return season, nil
}

func (s *RetentionService) validEpisode(ctx context.Context, leagueSeasonID, episode int) (*models.LeagueSeason, error) {
	season, err := s.season(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	if episode < 1 || episode > season.TotalEpisodes {
		return nil, errors.Validationf("episode must be between 1 and %d, got %d", season.TotalEpisodes, episode)
	}
	return season, nil
}
