package services

import (
	"context"
	"fmt"

	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/repository"
)

// DemoSeasonName identifies the seeded demo league-season
const DemoSeasonName = "Demo League: Season 46"

// SeedResult summarizes seeding the demo league-season
type SeedResult struct {
	LeagueSeasonID int                  `json:"league_season_id"`
	Created        bool                 `json:"created"`
	Teams          int                  `json:"teams"`
	Castaways      int                  `json:"castaways"`
	Questions      int                  `json:"questions"`
	Recalculation  *RecalculationResult `json:"recalculation,omitempty"`
}

// SeedDemoSeason creates a small league-season with three aired episodes,
// scored questions and retention points, then builds its ledger. Seeding
// again returns the existing season untouched.
func (s *SeasonService) SeedDemoSeason(ctx context.Context) (*SeedResult, error) {
	existing, err := s.repo.GetLeagueSeasonByName(ctx, DemoSeasonName)
	if err == nil {
		return &SeedResult{LeagueSeasonID: existing.ID}, nil
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	const totalEpisodes, airedEpisodes = 13, 3

	seasonID64, err := s.repo.CreateLeagueSeason(ctx, DemoSeasonName, totalEpisodes)
	if err != nil {
		return nil, fmt.Errorf("failed to create demo season: %w", err)
	}
	seasonID := int(seasonID64)
	result := &SeedResult{LeagueSeasonID: seasonID, Created: true}

	castawayNames := []string{"Kenzie", "Charlie", "Ben", "Maria", "Liz", "Q", "Venus", "Tiffany"}
	castaways := make(map[string]int, len(castawayNames))
	for _, name := range castawayNames {
		id, err := s.repo.CreateCastaway(ctx, seasonID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to create castaway %s: %w", name, err)
		}
		castaways[name] = int(id)
		result.Castaways++
	}

	voteOut := 2
	teams := []struct {
		Name   string
		Owner  string
		Roster []models.RosterEntry
	}{
		{"Siga Shoreline", "demo-owner-1", []models.RosterEntry{
			{CastawayID: castaways["Kenzie"], StartEpisode: 1},
			{CastawayID: castaways["Q"], StartEpisode: 1, EndEpisode: &voteOut},
		}},
		{"Nami Nation", "demo-owner-2", []models.RosterEntry{
			{CastawayID: castaways["Charlie"], StartEpisode: 1},
			{CastawayID: castaways["Maria"], StartEpisode: 1},
		}},
		{"Yanu Yappers", "demo-owner-3", []models.RosterEntry{
			{CastawayID: castaways["Ben"], StartEpisode: 1},
			{CastawayID: castaways["Liz"], StartEpisode: 1},
		}},
		{"Idol Hunters", "demo-owner-4", []models.RosterEntry{
			{CastawayID: castaways["Venus"], StartEpisode: 1},
			{CastawayID: castaways["Tiffany"], StartEpisode: 2},
		}},
	}
	teamIDs := make([]int, 0, len(teams))
	for _, t := range teams {
		id, err := s.repo.CreateTeam(ctx, seasonID, t.Name, t.Owner)
		if err != nil {
			return nil, fmt.Errorf("failed to create team %s: %w", t.Name, err)
		}
		teamIDs = append(teamIDs, int(id))
		result.Teams++
		for _, e := range t.Roster {
			if _, err := s.repo.AddRosterEntry(ctx, int(id), e.CastawayID, e.StartEpisode, e.EndEpisode); err != nil {
				return nil, fmt.Errorf("failed to draft for team %s: %w", t.Name, err)
			}
		}
	}

	minWager, maxWager := 1, 10
	questions := []struct {
		Question models.Question
		Correct  string
		Answers  []string
		Wagers   []int
	}{
		{
			Question: models.Question{EpisodeNumber: 1, Type: models.QuestionSingleChoice,
				Prompt: "Who is voted out first?", Options: []string{"Jess", "Ben", "Q"}, PointValue: 3},
			Correct: "Jess",
			Answers: []string{"Jess", "Q", "jess", "Ben"},
		},
		{
			Question: models.Question{EpisodeNumber: 2, Type: models.QuestionFreeText,
				Prompt: "Who finds the first hidden immunity idol?", PointValue: 1,
				IsWager: true, MinWager: &minWager, MaxWager: &maxWager},
			Correct: "Charlie",
			Answers: []string{"Maria", "Charlie", "charlie ", "Q"},
			Wagers:  []int{5, 10, 3, 8},
		},
		{
			Question: models.Question{EpisodeNumber: 3, Type: models.QuestionSingleChoice,
				Prompt: "Which tribe wins immunity?", Options: []string{"Siga", "Nami", "Yanu"}, PointValue: 2},
			Correct: "Nami",
			Answers: []string{"Siga", "Nami", "Yanu", "Nami"},
		},
	}
	for _, demo := range questions {
		q := demo.Question
		q.LeagueSeasonID = seasonID
		qid, err := s.repo.CreateQuestion(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
		result.Questions++
		for i, text := range demo.Answers {
			var wager *int
			if demo.Wagers != nil {
				w := demo.Wagers[i]
				wager = &w
			}
			if _, err := s.repo.SaveAnswer(ctx, int(qid), teamIDs[i], text, wager); err != nil {
				return nil, fmt.Errorf("failed to save answer: %w", err)
			}
		}
		if err := s.repo.MarkQuestionScored(ctx, int(qid), demo.Correct); err != nil {
			return nil, fmt.Errorf("failed to score question: %w", err)
		}
	}

	if err := s.repo.SetRetentionConfigRange(ctx, seasonID, 1, totalEpisodes, 2); err != nil {
		return nil, fmt.Errorf("failed to configure retention: %w", err)
	}
	if err := s.repo.SetActiveEpisode(ctx, seasonID, airedEpisodes); err != nil {
		return nil, err
	}

	rec, err := s.ledger.RecalculateSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	result.Recalculation = rec
	s.log.Info("Demo season seeded", "league_season_id", seasonID, "teams", result.Teams, "castaways", result.Castaways)
	return result, nil
}
