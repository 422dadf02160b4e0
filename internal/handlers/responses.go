package handlers

import "github.com/abrezinsky/castawayleague/internal/models"

// HealthResponse is the response for the health probe
type HealthResponse struct {
	Status string `json:"status"`
}

// SessionResponse reports whether the caller holds a commissioner session
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// TeamEpisodesResponse is a team's ledger series
type TeamEpisodesResponse struct {
	TeamID   int                        `json:"team_id"`
	Episodes []models.TeamEpisodePoints `json:"episodes"`
}

// TeamTotalResponse is a team's cached season total
type TeamTotalResponse struct {
	TeamID      int `json:"team_id"`
	TotalPoints int `json:"total_points"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL  string            `json:"base_url"`
	Settings map[string]string `json:"settings"`
}
