package handlers

import (
	"net/http"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/services"
)

// ==================== Ledger ====================

func (h *Handlers) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Ledger.RecalculateSeason(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleVerifySeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	report, err := h.Ledger.VerifySeason(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, report)
}

// ==================== Episodes ====================

func (h *Handlers) handleSetActiveEpisode(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ActiveEpisodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Episode == nil {
		respondError(w, errors.InvalidInput("episode is required"))
		return
	}

	result, err := h.Season.SetActiveEpisode(r.Context(), seasonID, *req.Episode)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleAdvanceEpisode marks the next episode as aired and scores it
func (h *Handlers) handleAdvanceEpisode(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Season.AdvanceEpisode(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Retention ====================

func (h *Handlers) handleSetRetention(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}
	episode, err := parseIntParam(r, "episode")
	if err != nil {
		respondError(w, err)
		return
	}

	points, err := decodeRetentionPoints(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Retention.SetRetention(r.Context(), seasonID, episode, points)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleClearRetention(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}
	episode, err := parseIntParam(r, "episode")
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Retention.ClearRetention(r.Context(), seasonID, episode)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleApplyRetentionToAll(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	points, err := decodeRetentionPoints(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Retention.ApplyRetentionToAll(r.Context(), seasonID, points)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

func decodeRetentionPoints(r *http.Request) (int, error) {
	var req RetentionRequest
	if err := decodeJSON(r, &req); err != nil {
		return 0, err
	}
	if req.PointsPerCastaway == nil {
		return 0, errors.InvalidInput("points_per_castaway is required")
	}
	return *req.PointsPerCastaway, nil
}

// ==================== Questions ====================

func (h *Handlers) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req QuestionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	q, err := h.Question.CreateQuestion(r.Context(), models.Question{
		LeagueSeasonID: seasonID,
		EpisodeNumber:  req.EpisodeNumber,
		Type:           models.QuestionType(req.Type),
		Prompt:         req.Prompt,
		Options:        req.Options,
		PointValue:     req.PointValue,
		IsWager:        req.IsWager,
		MinWager:       req.MinWager,
		MaxWager:       req.MaxWager,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, q)
}

// handleScoreQuestion records the correct answer and updates the ledger
func (h *Handlers) handleScoreQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIntParam(r, "questionID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ScoreQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Ledger.ScoreQuestion(r.Context(), questionID, req.CorrectAnswer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	baseURL, err := h.Settings.GetBaseURL(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	all, err := h.Settings.AllSettings(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, SettingsResponse{BaseURL: baseURL, Settings: all})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.UpdateSettings(r.Context(), services.Settings{BaseURL: req.BaseURL}); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}

// ==================== Database Management ====================

func (h *Handlers) handleSeedMockData(w http.ResponseWriter, r *http.Request) {
	result, err := h.Season.SeedDemoSeason(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if result.Created {
		respondCreated(w, result)
		return
	}
	respondOK(w, result)
}
