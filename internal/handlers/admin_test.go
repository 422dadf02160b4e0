package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abrezinsky/castawayleague/internal/handlers"
	"github.com/abrezinsky/castawayleague/internal/models"
	"github.com/abrezinsky/castawayleague/internal/services"
	"github.com/abrezinsky/castawayleague/internal/testutil"
)

// ==================== Ledger Tests ====================

func TestHandleRecalculate(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, teams := setup.seedDemo(t)

	rec := setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/recalculate", seasonID), nil, true)

	expectStatus(t, rec, http.StatusOK)
	var result services.RecalculationResult
	decodeBody(t, rec, &result)
	if result.TeamsRecalculated != 4 || result.EpisodesProcessed != 3 || len(result.Failed) != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if got := testutil.Total(t, setup.repo, teams["Nami Nation"]); got != 24 {
		t.Errorf("expected Nami Nation total unchanged at 24, got %d", got)
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/seasons/9999/recalculate", nil, true)
	expectErrorCode(t, rec, http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestHandleVerifySeason(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, _ := setup.seedDemo(t)

	rec := setup.do(t, http.MethodGet, fmt.Sprintf("/api/admin/seasons/%d/verify", seasonID), nil, true)

	expectStatus(t, rec, http.StatusOK)
	var report services.VerificationReport
	decodeBody(t, rec, &report)
	if !report.OK || report.TeamsChecked != 4 || len(report.Violations) != 0 {
		t.Errorf("expected clean report, got %+v", report)
	}
}

// ==================== Episode Tests ====================

func TestHandleAdvanceEpisode(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, teams := setup.seedDemo(t)

	rec := setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/advance-episode", seasonID), nil, true)

	expectStatus(t, rec, http.StatusOK)
	var result services.AdvanceResult
	decodeBody(t, rec, &result)
	if result.ActiveEpisode != 4 || result.TeamsScored != 4 {
		t.Errorf("unexpected result: %+v", result)
	}

	// Episode 4 has only retention: Q left Siga Shoreline after episode 2
	want := map[string]int{"Siga Shoreline": 10, "Nami Nation": 28, "Yanu Yappers": 22, "Idol Hunters": 8}
	for name, total := range want {
		if got := testutil.Total(t, setup.repo, teams[name]); got != total {
			t.Errorf("%s: expected %d, got %d", name, total, got)
		}
	}
}

func TestHandleSetActiveEpisode(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, teams := setup.seedDemo(t)
	path := fmt.Sprintf("/api/admin/seasons/%d/active-episode", seasonID)

	rec := setup.do(t, http.MethodPut, path, handlers.ActiveEpisodeRequest{Episode: testutil.IntPtr(1)}, true)

	expectStatus(t, rec, http.StatusOK)
	rows := testutil.Ledger(t, setup.repo, teams["Nami Nation"])
	if len(rows) != 1 || rows[0].RunningTotal != 4 {
		t.Errorf("expected ledger rolled back to episode 1, got %+v", rows)
	}

	rec = setup.do(t, http.MethodPut, path, handlers.ActiveEpisodeRequest{}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rec = setup.do(t, http.MethodPut, path, handlers.ActiveEpisodeRequest{Episode: testutil.IntPtr(14)}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
}

// ==================== Retention Tests ====================

func TestHandleRetention_SetClearApplyAll(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, teams := setup.seedDemo(t)
	nami := teams["Nami Nation"]

	// Raising episode 1 from 2 to 5 adds 3 per castaway to every later total
	rec := setup.do(t, http.MethodPut, fmt.Sprintf("/api/admin/seasons/%d/retention/1", seasonID),
		handlers.RetentionRequest{PointsPerCastaway: testutil.IntPtr(5)}, true)
	expectStatus(t, rec, http.StatusOK)
	if got := testutil.Total(t, setup.repo, nami); got != 30 {
		t.Errorf("expected 30 after raising episode 1, got %d", got)
	}

	rec = setup.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/seasons/%d/retention/1", seasonID), nil, true)
	expectStatus(t, rec, http.StatusOK)
	var cleared services.RecalculationResult
	decodeBody(t, rec, &cleared)
	if len(cleared.UnconfiguredEpisodes) != 1 || cleared.UnconfiguredEpisodes[0] != 1 {
		t.Errorf("expected episode 1 reported unconfigured, got %v", cleared.UnconfiguredEpisodes)
	}
	if got := testutil.Total(t, setup.repo, nami); got != 20 {
		t.Errorf("expected 20 after clearing episode 1, got %d", got)
	}

	rec = setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/retention/apply-all", seasonID),
		handlers.RetentionRequest{PointsPerCastaway: testutil.IntPtr(1)}, true)
	expectStatus(t, rec, http.StatusOK)
	if got := testutil.Total(t, setup.repo, nami); got != 18 {
		t.Errorf("expected 18 with 1 point retention, got %d", got)
	}
}

func TestHandleRetention_Validation(t *testing.T) {
	setup := newTestSetup(t)
	seasonID, _ := setup.seedDemo(t)

	rec := setup.do(t, http.MethodPut, fmt.Sprintf("/api/admin/seasons/%d/retention/1", seasonID), handlers.RetentionRequest{}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rec = setup.do(t, http.MethodPut, fmt.Sprintf("/api/admin/seasons/%d/retention/40", seasonID),
		handlers.RetentionRequest{PointsPerCastaway: testutil.IntPtr(2)}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)

	rec = setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/retention/apply-all", seasonID), "", true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
}

// ==================== Question Tests ====================

func TestHandleCreateAndScoreQuestion(t *testing.T) {
	setup := newTestSetup(t)
	l := testutil.SeedLeague(t, setup.repo, 2, 0, 13)
	testutil.SetActive(t, setup.repo, l.SeasonID, 1)

	rec := setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/questions", l.SeasonID), handlers.QuestionCreateRequest{
		EpisodeNumber: 1,
		Type:          string(models.QuestionSingleChoice),
		Prompt:        "Who wins the first immunity challenge?",
		Options:       []string{"Siga", "Nami", "Yanu"},
		PointValue:    4,
	}, true)
	expectStatus(t, rec, http.StatusCreated)
	var q models.Question
	decodeBody(t, rec, &q)
	if q.ID == 0 || q.IsScored {
		t.Fatalf("unexpected question: %+v", q)
	}

	testutil.Answer(t, setup.repo, q.ID, l.TeamIDs[0], "Nami", nil)
	testutil.Answer(t, setup.repo, q.ID, l.TeamIDs[1], "Yanu", nil)

	rec = setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/questions/%d/score", q.ID),
		handlers.ScoreQuestionRequest{CorrectAnswer: "nami"}, true)
	expectStatus(t, rec, http.StatusOK)
	var result services.ScoreResult
	decodeBody(t, rec, &result)
	if result.Rescored || result.TeamsUpdated != 2 {
		t.Errorf("unexpected score result: %+v", result)
	}
	if got := testutil.Total(t, setup.repo, l.TeamIDs[0]); got != 4 {
		t.Errorf("expected 4 for correct team, got %d", got)
	}
	if got := testutil.Total(t, setup.repo, l.TeamIDs[1]); got != 0 {
		t.Errorf("expected 0 for wrong team, got %d", got)
	}

	rec = setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/questions/%d/score", q.ID),
		handlers.ScoreQuestionRequest{CorrectAnswer: "  "}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
}

func TestHandleCreateQuestion_Invalid(t *testing.T) {
	setup := newTestSetup(t)
	l := testutil.SeedLeague(t, setup.repo, 1, 0, 13)

	rec := setup.do(t, http.MethodPost, fmt.Sprintf("/api/admin/seasons/%d/questions", l.SeasonID), handlers.QuestionCreateRequest{
		EpisodeNumber: 1,
		Type:          string(models.QuestionSingleChoice),
		Options:       []string{"Siga"},
		PointValue:    1,
	}, true)

	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
}

// ==================== Settings Tests ====================

func TestHandleSettings(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPut, "/api/admin/settings", map[string]string{"base_url": "http://10.0.0.5:8081/"}, true)
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodGet, "/api/admin/settings", nil, true)
	expectStatus(t, rec, http.StatusOK)
	var resp handlers.SettingsResponse
	decodeBody(t, rec, &resp)
	if resp.BaseURL != "http://10.0.0.5:8081" {
		t.Errorf("expected normalized base URL, got %q", resp.BaseURL)
	}

	rec = setup.do(t, http.MethodPut, "/api/admin/settings", map[string]string{"base_url": "not a url"}, true)
	expectErrorCode(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
}

// ==================== Database Management Tests ====================

func TestHandleSeedMockData(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/seed-mock-data", nil, true)
	expectStatus(t, rec, http.StatusCreated)
	var first services.SeedResult
	decodeBody(t, rec, &first)
	if !first.Created || first.Teams != 4 || first.Questions != 3 {
		t.Errorf("unexpected seed result: %+v", first)
	}

	// Seeding twice leaves the existing season alone
	rec = setup.do(t, http.MethodPost, "/api/admin/seed-mock-data", nil, true)
	expectStatus(t, rec, http.StatusOK)
	var second services.SeedResult
	decodeBody(t, rec, &second)
	if second.Created || second.LeagueSeasonID != first.LeagueSeasonID {
		t.Errorf("expected existing season %d, got %+v", first.LeagueSeasonID, second)
	}
}
