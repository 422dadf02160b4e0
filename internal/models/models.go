package models

// QuestionType distinguishes how a question's answers are entered
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionFreeText     QuestionType = "free_text"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	return t == QuestionSingleChoice || t == QuestionFreeText
}

// LeagueSeason is one league's participation in one season
type LeagueSeason struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ActiveEpisode int    `json:"active_episode"` // last aired episode; 0 before the premiere
	TotalEpisodes int    `json:"total_episodes"`
}

// Team is a player's team within a league-season.
// TotalPoints is a cache of the final running total written only by the ledger.
type Team struct {
	ID             int    `json:"id"`
	LeagueSeasonID int    `json:"league_season_id"`
	Name           string `json:"name"`
	OwnerUserID    string `json:"owner_user_id"`
	TotalPoints    int    `json:"total_points"`
	CreatedAt      string `json:"created_at"`
}

// Castaway is a contestant that can be drafted onto teams
type Castaway struct {
	ID             int    `json:"id"`
	LeagueSeasonID int    `json:"league_season_id"`
	Name           string `json:"name"`
}

// RosterEntry is one drafted window of a castaway on a team.
// EndEpisode nil means the castaway is still on the roster.
type RosterEntry struct {
	ID           int  `json:"id"`
	TeamID       int  `json:"team_id"`
	CastawayID   int  `json:"castaway_id"`
	StartEpisode int  `json:"start_episode"`
	EndEpisode   *int `json:"end_episode,omitempty"`
}

// Question is a weekly prediction question
type Question struct {
	ID             int          `json:"id"`
	LeagueSeasonID int          `json:"league_season_id"`
	EpisodeNumber  int          `json:"episode_number"`
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"prompt"`
	Options        []string     `json:"options,omitempty"`
	PointValue     int          `json:"point_value"`
	IsWager        bool         `json:"is_wager"`
	MinWager       *int         `json:"min_wager,omitempty"`
	MaxWager       *int         `json:"max_wager,omitempty"`
	CorrectAnswer  *string      `json:"correct_answer,omitempty"`
	IsScored       bool         `json:"is_scored"`
}

// Answer is a team's submission for a question
type Answer struct {
	ID           int    `json:"id"`
	QuestionID   int    `json:"question_id"`
	TeamID       int    `json:"team_id"`
	AnswerText   string `json:"answer_text"`
	WagerAmount  *int   `json:"wager_amount,omitempty"`
	PointsEarned *int   `json:"points_earned,omitempty"`
}

// ScoredAnswer pairs an answer with its (scored) parent question
type ScoredAnswer struct {
	Answer   Answer
	Question Question
}

// RetentionConfig is the points awarded per actively rostered castaway for one episode
type RetentionConfig struct {
	LeagueSeasonID    int `json:"league_season_id"`
	EpisodeNumber     int `json:"episode_number"`
	PointsPerCastaway int `json:"points_per_castaway"`
}

// TeamEpisodePoints is the ledger row for one team and one episode
type TeamEpisodePoints struct {
	TeamID             int `json:"team_id"`
	EpisodeNumber      int `json:"episode_number"`
	QuestionPoints     int `json:"question_points"`
	RetentionPoints    int `json:"retention_points"`
	TotalEpisodePoints int `json:"total_episode_points"`
	RunningTotal       int `json:"running_total"`
}

// AnswerPoints is the scored value to persist onto an answer
type AnswerPoints struct {
	AnswerID     int
	PointsEarned int
}
