package handlers

// LoginRequest represents a commissioner login
type LoginRequest struct {
	Password string `json:"password"`
}

// AnswerSubmitRequest represents a team's answer to a question
type AnswerSubmitRequest struct {
	TeamID      int    `json:"team_id"`
	AnswerText  string `json:"answer_text"`
	WagerAmount *int   `json:"wager_amount"`
}

// RetentionRequest represents a retention value for one or all episodes
type RetentionRequest struct {
	PointsPerCastaway *int `json:"points_per_castaway"`
}

// ActiveEpisodeRequest represents a commissioner override of the active episode
type ActiveEpisodeRequest struct {
	Episode *int `json:"episode"`
}

// QuestionCreateRequest represents a request to create a question
type QuestionCreateRequest struct {
	EpisodeNumber int      `json:"episode_number"`
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	PointValue    int      `json:"point_value"`
	IsWager       bool     `json:"is_wager"`
	MinWager      *int     `json:"min_wager"`
	MaxWager      *int     `json:"max_wager"`
}

// ScoreQuestionRequest represents the commissioner entering a correct answer
type ScoreQuestionRequest struct {
	CorrectAnswer string `json:"correct_answer"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL *string `json:"base_url"`
}
