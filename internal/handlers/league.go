package handlers

import (
	"net/http"

	"github.com/abrezinsky/castawayleague/internal/errors"
	"github.com/abrezinsky/castawayleague/internal/services"
)

// ==================== Health ====================

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.Health.Ping(r.Context()); err != nil {
		respondError(w, NewAPIError(http.StatusServiceUnavailable, ErrCodeUnavailable, "Database unavailable"))
		return
	}
	respondOK(w, HealthResponse{Status: "ok"})
}

// ==================== Seasons ====================

func (h *Handlers) handleGetSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	season, err := h.Season.GetSeason(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, season)
}

func (h *Handlers) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	standings, err := h.Standings.Standings(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, standings)
}

// handleGetStandingsQR returns a PNG QR code linking to the standings page
func (h *Handlers) handleGetStandingsQR(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Standings.StandingsQR(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondPNG(w, png)
}

func (h *Handlers) handleGetRetention(w http.ResponseWriter, r *http.Request) {
	seasonID, err := parseIntParam(r, "seasonID")
	if err != nil {
		respondError(w, err)
		return
	}

	listing, err := h.Retention.ListRetention(r.Context(), seasonID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, listing)
}

// ==================== Teams ====================

func (h *Handlers) handleGetTeamEpisodes(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseIntParam(r, "teamID")
	if err != nil {
		respondError(w, err)
		return
	}

	series, err := h.Ledger.GetTeamEpisodeSeries(r.Context(), teamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, TeamEpisodesResponse{TeamID: teamID, Episodes: series})
}

func (h *Handlers) handleGetTeamTotal(w http.ResponseWriter, r *http.Request) {
	teamID, err := parseIntParam(r, "teamID")
	if err != nil {
		respondError(w, err)
		return
	}

	total, err := h.Ledger.GetTeamTotal(r.Context(), teamID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, TeamTotalResponse{TeamID: teamID, TotalPoints: total})
}

// ==================== Questions ====================

func (h *Handlers) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIntParam(r, "questionID")
	if err != nil {
		respondError(w, err)
		return
	}

	q, err := h.Question.GetQuestion(r.Context(), questionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, q)
}

// handleSubmitAnswer stores or replaces a team's answer
func (h *Handlers) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIntParam(r, "questionID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req AnswerSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TeamID <= 0 {
		respondError(w, errors.InvalidInput("team_id is required"))
		return
	}

	answer, err := h.Answer.SubmitAnswer(r.Context(), services.AnswerSubmission{
		QuestionID:  questionID,
		TeamID:      req.TeamID,
		AnswerText:  req.AnswerText,
		WagerAmount: req.WagerAmount,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, answer)
}
