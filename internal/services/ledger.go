package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/logger"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
	"github.com/abrezinsky/castawayleague/internal/scoring"
)

// LedgerServiceRepository defines the repository methods needed by LedgerService
type LedgerServiceRepository interface {
	repository.SeasonRepository
	repository.TeamRepository
	repository.RosterRepository
	repository.QuestionRepository
	repository.AnswerRepository
	repository.RetentionRepository
	repository.LedgerRepository
}

// LedgerService is the only writer of ledger rows and team total caches
type LedgerService struct {
	log     logger.Logger
	repo    LedgerServiceRepository
	workers int
}

// NewLedgerService creates a new LedgerService. workers bounds how many
// teams are rebuilt concurrently and is raised to 1 when lower.
func NewLedgerService(log logger.Logger, repo LedgerServiceRepository, workers int) *LedgerService {
	if workers < 1 {
		workers = 1
	}
	return &LedgerService{log: log, repo: repo, workers: workers}
}

var _ LedgerServicer = (*LedgerService)(nil)

// TeamFailure reports a team whose ledger could not be written
type TeamFailure struct {
	TeamID int    `json:"team_id"`
	Error  string `json:"error"`
}

// RecalculationResult summarizes a full ledger rebuild
type RecalculationResult struct {
	RunID                string        `json:"run_id"`
	LeagueSeasonID       int           `json:"league_season_id"`
	TeamsRecalculated    int           `json:"teams_recalculated"`
	EpisodesProcessed    int           `json:"episodes_processed"`
	Failed               []TeamFailure `json:"failed,omitempty"`
	UnconfiguredEpisodes []int         `json:"unconfigured_episodes,omitempty"`
	Message              string        `json:"message"`
}

// ScoreResult summarizes scoring or rescoring a question
type ScoreResult struct {
	QuestionID    int           `json:"question_id"`
	EpisodeNumber int           `json:"episode_number"`
	Rescored      bool          `json:"rescored"`
	TeamsUpdated  int           `json:"teams_updated"`
	Failed        []TeamFailure `json:"failed,omitempty"`
	// Recalculation is set when rescoring forced a full rebuild
	Recalculation *RecalculationResult `json:"recalculation,omitempty"`
}

// Violation is a single ledger consistency failure
type Violation struct {
	TeamID        int    `json:"team_id"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
	Rule          string `json:"rule"`
	Detail        string `json:"detail"`
}

// VerificationReport is the outcome of checking stored ledger rows
type VerificationReport struct {
	LeagueSeasonID int         `json:"league_season_id"`
	ActiveEpisode  int         `json:"active_episode"`
	TeamsChecked   int         `json:"teams_checked"`
	Violations     []Violation `json:"violations"`
	OK             bool        `json:"ok"`
}

// ComputeEpisode computes one team's row for a single aired episode on top
// of previousRunningTotal and overwrites the stored row. When the episode is
// the active one the team's total cache is updated in the same transaction.
func (s *LedgerService) ComputeEpisode(ctx context.Context, teamID, episode, previousRunningTotal int) (*models.TeamEpisodePoints, error) {
	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, notFound(err, "team %d not found", teamID)
	}
	season, err := s.loadSeason(ctx, team.LeagueSeasonID)
	if err != nil {
		return nil, err
	}
	if episode < 1 {
		return nil, errors.Validationf("episode must be at least 1, got %d", episode)
	}
	if episode > season.ActiveEpisode {
		return nil, episodeNotAired(episode, season.ActiveEpisode)
	}

	retention, err := s.loadRetention(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	log := s.log.With("league_season_id", season.ID, "team_id", teamID)
	in, err := s.teamInputs(ctx, log, teamID, retention, episode)
	if err != nil {
		return nil, err
	}

	res := scoring.ComputeEpisode(in, episode, previousRunningTotal)
	logClamped(log, res.Clamped)
	if !res.RetentionConfigured {
		log.Info("Retention not configured, scoring zero retention points", "episode", episode)
	}

	if err := s.repo.UpsertTeamEpisode(ctx, res.Row, res.AnswerPoints, episode == season.ActiveEpisode); err != nil {
		return nil, err
	}
	return &res.Row, nil
}

// RecalculateSeason rebuilds every team's ledger for episodes 1..activeEpisode.
// Teams are rebuilt concurrently; each team's series and total cache are
// written in one transaction. A team that fails is reported in the result
// and does not stop the others.
func (s *LedgerService) RecalculateSeason(ctx context.Context, leagueSeasonID int) (*RecalculationResult, error) {
	season, err := s.loadSeason(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListTeams(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	retention, err := s.loadRetention(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}

	result := &RecalculationResult{
		RunID:                uuid.NewString(),
		LeagueSeasonID:       leagueSeasonID,
		EpisodesProcessed:    season.ActiveEpisode,
		UnconfiguredEpisodes: unconfiguredEpisodes(retention, season.ActiveEpisode),
	}
	log := s.log.With("run_id", result.RunID, "league_season_id", leagueSeasonID)
	log.Info("Recalculation started", "teams", len(teams), "episodes", season.ActiveEpisode)
	for _, ep := range result.UnconfiguredEpisodes {
		log.Info("Retention not configured, scoring zero retention points", "episode", ep)
	}

	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	succeeded, failed := s.forEachTeam(ctx, log, ids, func(ctx context.Context, teamLog logger.Logger, teamID int) error {
		return s.rebuildTeam(ctx, teamLog, teamID, season.ActiveEpisode, retention)
	})

	result.TeamsRecalculated = succeeded
	result.Failed = failed
	result.Message = fmt.Sprintf("Points recalculated for %d teams across %d episodes", succeeded, season.ActiveEpisode)

	log.Info("Recalculation finished",
		"teams_recalculated", succeeded,
		"teams_failed", len(failed),
		"episodes", season.ActiveEpisode)
	return result, nil
}

// ScoreQuestion sets a question's correct answer. The first scoring
// recomputes, for every team that answered, the question's episode and the
// running totals after it. Rescoring a question that was already scored
// runs a full season recalculation.
func (s *LedgerService) ScoreQuestion(ctx context.Context, questionID int, correctAnswer string) (*ScoreResult, error) {
	correctAnswer = strings.TrimSpace(correctAnswer)
	if correctAnswer == "" {
		return nil, ErrEmptyCorrectAnswer
	}
	q, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, notFound(err, "question %d not found", questionID)
	}
	if q.Type == models.QuestionSingleChoice && !matchesOption(q.Options, correctAnswer) {
		return nil, errors.Validationf("correct answer %q is not one of the question's options", correctAnswer)
	}
	season, err := s.loadSeason(ctx, q.LeagueSeasonID)
	if err != nil {
		return nil, err
	}
	if q.EpisodeNumber > season.ActiveEpisode {
		return nil, episodeNotAired(q.EpisodeNumber, season.ActiveEpisode)
	}

	if err := s.repo.MarkQuestionScored(ctx, questionID, correctAnswer); err != nil {
		return nil, notFound(err, "question %d not found", questionID)
	}

	result := &ScoreResult{QuestionID: questionID, EpisodeNumber: q.EpisodeNumber, Rescored: q.IsScored}
	log := s.log.With("league_season_id", season.ID, "question_id", questionID)

	if q.IsScored {
		log.Info("Question rescored, recalculating season", "episode", q.EpisodeNumber)
		rec, err := s.RecalculateSeason(ctx, season.ID)
		if err != nil {
			return nil, err
		}
		result.Recalculation = rec
		result.TeamsUpdated = rec.TeamsRecalculated
		result.Failed = rec.Failed
		return result, nil
	}

	teamIDs, err := s.repo.ListTeamIDsForQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	retention, err := s.loadRetention(ctx, season.ID)
	if err != nil {
		return nil, err
	}

	result.TeamsUpdated, result.Failed = s.forEachTeam(ctx, log, teamIDs, func(ctx context.Context, teamLog logger.Logger, teamID int) error {
		return s.rescoreTeamFrom(ctx, teamLog, teamID, q.EpisodeNumber, season.ActiveEpisode, retention)
	})

	log.Info("Question scored", "episode", q.EpisodeNumber, "teams_updated", result.TeamsUpdated, "teams_failed", len(result.Failed))
	return result, nil
}

// GetTeamEpisodeSeries returns a team's ledger rows in episode order
func (s *LedgerService) GetTeamEpisodeSeries(ctx context.Context, teamID int) ([]models.TeamEpisodePoints, error) {
	if _, err := s.repo.GetTeam(ctx, teamID); err != nil {
		return nil, notFound(err, "team %d not found", teamID)
	}
	rows, err := s.repo.ListTeamEpisodePoints(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.TeamEpisodePoints{}
	}
	return rows, nil
}

// GetTeamTotal reads the team's cached total
func (s *LedgerService) GetTeamTotal(ctx context.Context, teamID int) (int, error) {
	total, err := s.repo.GetTeamTotal(ctx, teamID)
	if err != nil {
		return 0, notFound(err, "team %d not found", teamID)
	}
	return total, nil
}

// VerifySeason checks the stored ledger of every team against the running
// total recurrence, the per-episode sum, gap-free coverage of 1..activeEpisode
// and the total cache.
func (s *LedgerService) VerifySeason(ctx context.Context, leagueSeasonID int) (*VerificationReport, error) {
	season, err := s.loadSeason(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListTeams(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSeasonEpisodePoints(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[int][]models.TeamEpisodePoints)
	for _, r := range rows {
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r)
	}

	report := &VerificationReport{
		LeagueSeasonID: leagueSeasonID,
		ActiveEpisode:  season.ActiveEpisode,
		TeamsChecked:   len(teams),
		Violations:     []Violation{},
	}
	for _, team := range teams {
		report.Violations = append(report.Violations, verifyTeam(team, byTeam[team.ID], season.ActiveEpisode)...)
	}
	report.OK = len(report.Violations) == 0
	if !report.OK {
		s.log.Warn("Ledger verification failed", "league_season_id", leagueSeasonID, "violations", len(report.Violations))
	}
	return report, nil
}

func verifyTeam(team models.Team, rows []models.TeamEpisodePoints, active int) []Violation {
	var out []Violation
	add := func(ep int, rule, format string, args ...interface{}) {
		out = append(out, Violation{TeamID: team.ID, EpisodeNumber: ep, Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	if len(rows) != active {
		add(0, "coverage", "expected %d rows, found %d", active, len(rows))
	}

	prev := 0
	for i, r := range rows {
		if r.EpisodeNumber != i+1 {
			add(r.EpisodeNumber, "coverage", "expected episode %d at position %d", i+1, i+1)
		}
		if r.EpisodeNumber > active {
			add(r.EpisodeNumber, "coverage", "row beyond active episode %d", active)
		}
		if r.TotalEpisodePoints != r.QuestionPoints+r.RetentionPoints {
			add(r.EpisodeNumber, "episode_sum", "total %d != question %d + retention %d",
				r.TotalEpisodePoints, r.QuestionPoints, r.RetentionPoints)
		}
		if r.RunningTotal != prev+r.TotalEpisodePoints {
			add(r.EpisodeNumber, "running_total", "running total %d != previous %d + episode %d",
				r.RunningTotal, prev, r.TotalEpisodePoints)
		}
		prev = r.RunningTotal
	}

	final := 0
	for _, r := range rows {
		if r.EpisodeNumber == active {
			final = r.RunningTotal
		}
	}
	if team.TotalPoints != final {
		add(active, "cache", "team total %d != running total %d at episode %d", team.TotalPoints, final, active)
	}
	return out
}

// forEachTeam runs fn for every team on a bounded worker pool. Failures are
// collected per team instead of cancelling the remaining work; a team whose
// turn comes after ctx is done is reported as failed without running.
func (s *LedgerService) forEachTeam(ctx context.Context, log logger.Logger, teamIDs []int, fn func(context.Context, logger.Logger, int) error) (int, []TeamFailure) {
	var (
		mu        sync.Mutex
		succeeded int
		failed    []TeamFailure
	)

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range teamIDs {
		g.Go(func() error {
			teamLog := log.With("team_id", id)
			err := ctx.Err()
			if err == nil {
				err = fn(ctx, teamLog, id)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				teamLog.Error("Failed to write team ledger", "error", err)
				failed = append(failed, TeamFailure{TeamID: id, Error: err.Error()})
				return nil
			}
			succeeded++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failed, func(i, j int) bool { return failed[i].TeamID < failed[j].TeamID })
	return succeeded, failed
}

// rebuildTeam computes episodes 1..active in memory and replaces the team's
// whole series together with its total cache
func (s *LedgerService) rebuildTeam(ctx context.Context, log logger.Logger, teamID, active int, retention map[int]int) error {
	in, err := s.teamInputs(ctx, log, teamID, retention, active)
	if err != nil {
		return err
	}
	series := scoring.ComputeSeries(in, 1, active, 0)
	logClamped(log, series.Clamped)
	return s.repo.ReplaceTeamSeries(ctx, teamID, 1, series.Rows, series.AnswerPoints, series.FinalTotal(0))
}

// rescoreTeamFrom recomputes episodes from..active on top of the stored
// running total of episode from-1. A team without that stored row gets a
// full rebuild instead.
func (s *LedgerService) rescoreTeamFrom(ctx context.Context, log logger.Logger, teamID, from, active int, retention map[int]int) error {
	start := 0
	if from > 1 {
		rows, err := s.repo.ListTeamEpisodePoints(ctx, teamID)
		if err != nil {
			return err
		}
		found := false
		for _, r := range rows {
			if r.EpisodeNumber == from-1 {
				start, found = r.RunningTotal, true
				break
			}
		}
		if !found {
			log.Warn("Ledger prefix missing, rebuilding team", "episode", from-1)
			return s.rebuildTeam(ctx, log, teamID, active, retention)
		}
	}

	in, err := s.teamInputs(ctx, log, teamID, retention, active)
	if err != nil {
		return err
	}
	series := scoring.ComputeSeries(in, from, active, start)
	logClamped(log, series.Clamped)
	return s.repo.ReplaceTeamSeries(ctx, teamID, from, series.Rows, series.AnswerPoints, series.FinalTotal(start))
}

// teamInputs loads a team's roster and scored answers up to maxEpisode.
// All reads finish before any write transaction begins.
func (s *LedgerService) teamInputs(ctx context.Context, log logger.Logger, teamID int, retention map[int]int, maxEpisode int) (scoring.TeamInputs, error) {
	entries, err := s.repo.ListRosterEntries(ctx, teamID)
	if err != nil {
		return scoring.TeamInputs{}, err
	}
	answers, err := s.repo.ListScoredAnswers(ctx, teamID, maxEpisode)
	if err != nil {
		return scoring.TeamInputs{}, err
	}

	roster := scoring.NewResolver(teamID, entries)
	for _, o := range roster.Overlaps() {
		log.Warn("Overlapping roster windows",
			"castaway_id", o.CastawayID,
			"first_entry_id", o.FirstEntryID,
			"second_entry_id", o.SecondEntryID,
			"from_episode", o.FromEpisode)
	}

	return scoring.TeamInputs{
		TeamID:    teamID,
		Roster:    roster,
		Answers:   answers,
		Retention: retention,
	}, nil
}

func (s *LedgerService) loadSeason(ctx context.Context, id int) (*models.LeagueSeason, error) {
	season, err := s.repo.GetLeagueSeason(ctx, id)
	if err != nil {
		return nil, notFound(err, "league-season %d not found", id)
	}
	return season, nil
}

func (s *LedgerService) loadRetention(ctx context.Context, leagueSeasonID int) (map[int]int, error) {
	configs, err := s.repo.ListRetentionConfigs(ctx, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	retention := make(map[int]int, len(configs))
	for _, c := range configs {
		retention[c.EpisodeNumber] = c.PointsPerCastaway
	}
	return retention, nil
}

func unconfiguredEpisodes(retention map[int]int, active int) []int {
	var missing []int
	for ep := 1; ep <= active; ep++ {
		if _, ok := retention[ep]; !ok {
			missing = append(missing, ep)
		}
	}
	return missing
}

func logClamped(log logger.Logger, clamped []scoring.ClampedWager) {
	for _, c := range clamped {
		log.Warn("Wager outside question bounds, clamped",
			"answer_id", c.AnswerID,
			"question_id", c.QuestionID,
			"submitted", c.Submitted,
			"applied", c.Applied)
	}
}

func matchesOption(options []string, answer string) bool {
	for _, o := range options {
		if scoring.Matches(o, answer) {
			return true
		}
	}
	return false
}
