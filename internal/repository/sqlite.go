package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/castawayleague/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// A single connection keeps :memory: databases shared and serializes
	// writers, so per-team transactions queue behind each other.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// NewWithDB wraps an existing connection without running migrations
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS league_seasons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			active_episode INTEGER NOT NULL DEFAULT 0,
			total_episodes INTEGER NOT NULL DEFAULT 14,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS castaways (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			league_season_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			FOREIGN KEY (league_season_id) REFERENCES league_seasons(id)
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			league_season_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			owner_user_id TEXT,
			total_points INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (league_season_id) REFERENCES league_seasons(id)
		)`,
		`CREATE TABLE IF NOT EXISTS roster_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team_id INTEGER NOT NULL,
			castaway_id INTEGER NOT NULL,
			start_episode INTEGER NOT NULL CHECK (start_episode >= 1),
			end_episode INTEGER CHECK (end_episode IS NULL OR end_episode >= start_episode),
			FOREIGN KEY (team_id) REFERENCES teams(id),
			FOREIGN KEY (castaway_id) REFERENCES castaways(id)
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			league_season_id INTEGER NOT NULL,
			episode_number INTEGER NOT NULL,
			question_type TEXT NOT NULL,
			prompt TEXT,
			options TEXT,
			point_value INTEGER NOT NULL,
			is_wager BOOLEAN NOT NULL DEFAULT 0,
			min_wager INTEGER,
			max_wager INTEGER,
			correct_answer TEXT,
			is_scored BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY (league_season_id) REFERENCES league_seasons(id)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			team_id INTEGER NOT NULL,
			answer_text TEXT NOT NULL DEFAULT '',
			wager_amount INTEGER,
			points_earned INTEGER,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (question_id) REFERENCES questions(id),
			FOREIGN KEY (team_id) REFERENCES teams(id),
			UNIQUE(question_id, team_id)
		)`,
		`CREATE TABLE IF NOT EXISTS retention_configs (
			league_season_id INTEGER NOT NULL,
			episode_number INTEGER NOT NULL,
			points_per_castaway INTEGER NOT NULL,
			PRIMARY KEY (league_season_id, episode_number),
			FOREIGN KEY (league_season_id) REFERENCES league_seasons(id)
		)`,
		`CREATE TABLE IF NOT EXISTS team_episode_points (
			team_id INTEGER NOT NULL,
			episode_number INTEGER NOT NULL,
			question_points INTEGER NOT NULL,
			retention_points INTEGER NOT NULL,
			total_episode_points INTEGER NOT NULL,
			running_total INTEGER NOT NULL,
			PRIMARY KEY (team_id, episode_number),
			FOREIGN KEY (team_id) REFERENCES teams(id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_season ON teams(league_season_id)`,
		`CREATE INDEX IF NOT EXISTS idx_roster_team ON roster_entries(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_season_episode ON questions(league_season_id, episode_number)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_team ON answers(team_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== League Season Methods ====================

// CreateLeagueSeason creates a league-season with no aired episodes
func (r *Repository) CreateLeagueSeason(ctx context.Context, name string, totalEpisodes int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO league_seasons (name, total_episodes) VALUES (?, ?)`, name, totalEpisodes)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLeagueSeason retrieves a league-season by ID
func (r *Repository) GetLeagueSeason(ctx context.Context, id int) (*models.LeagueSeason, error) {
	return r.scanLeagueSeason(r.db.QueryRowContext(ctx, `
		SELECT id, name, active_episode, total_episodes FROM league_seasons WHERE id = ?
	`, id))
}

// GetLeagueSeasonByName retrieves a league-season by its unique name
func (r *Repository) GetLeagueSeasonByName(ctx context.Context, name string) (*models.LeagueSeason, error) {
	return r.scanLeagueSeason(r.db.QueryRowContext(ctx, `
		SELECT id, name, active_episode, total_episodes FROM league_seasons WHERE name = ?
	`, name))
}

func (r *Repository) scanLeagueSeason(row *sql.Row) (*models.LeagueSeason, error) {
	var ls models.LeagueSeason
	err := row.Scan(&ls.ID, &ls.Name, &ls.ActiveEpisode, &ls.TotalEpisodes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ls, nil
}

// SetActiveEpisode moves the league-season's aired episode bound
func (r *Repository) SetActiveEpisode(ctx context.Context, id, episode int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE league_seasons SET active_episode = ? WHERE id = ?`, episode, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// CreateCastaway adds a castaway to a league-season
func (r *Repository) CreateCastaway(ctx context.Context, leagueSeasonID int, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO castaways (league_season_id, name) VALUES (?, ?)`, leagueSeasonID, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ==================== Team Methods ====================

// CreateTeam creates a team with a zero points cache
func (r *Repository) CreateTeam(ctx context.Context, leagueSeasonID int, name, ownerUserID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (league_season_id, name, owner_user_id) VALUES (?, ?, ?)`,
		leagueSeasonID, name, ownerUserID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	var t models.Team
	var owner, createdAt sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, league_season_id, name, owner_user_id, total_points, created_at
		FROM teams WHERE id = ?
	`, id).Scan(&t.ID, &t.LeagueSeasonID, &t.Name, &owner, &t.TotalPoints, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.OwnerUserID = owner.String
	t.CreatedAt = createdAt.String
	return &t, nil
}

// ListTeams returns a league-season's teams in creation order
func (r *Repository) ListTeams(ctx context.Context, leagueSeasonID int) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, league_season_id, name, owner_user_id, total_points, created_at
		FROM teams
		WHERE league_season_id = ?
		ORDER BY created_at, id
	`, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		var owner, createdAt sql.NullString
		if err := rows.Scan(&t.ID, &t.LeagueSeasonID, &t.Name, &owner, &t.TotalPoints, &createdAt); err != nil {
			return nil, err
		}
		t.OwnerUserID = owner.String
		t.CreatedAt = createdAt.String
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetTeamTotal reads the denormalized total points cache
func (r *Repository) GetTeamTotal(ctx context.Context, id int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT total_points FROM teams WHERE id = ?`, id).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return total, err
}

// ==================== Roster Methods ====================

// AddRosterEntry records a drafted window for a castaway on a team
func (r *Repository) AddRosterEntry(ctx context.Context, teamID, castawayID, startEpisode int, endEpisode *int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO roster_entries (team_id, castaway_id, start_episode, end_episode)
		VALUES (?, ?, ?, ?)
	`, teamID, castawayID, startEpisode, endEpisode)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListRosterEntries returns all roster windows of a team
func (r *Repository) ListRosterEntries(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, castaway_id, start_episode, end_episode
		FROM roster_entries
		WHERE team_id = ?
		ORDER BY castaway_id, start_episode, id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		var end sql.NullInt64
		if err := rows.Scan(&e.ID, &e.TeamID, &e.CastawayID, &e.StartEpisode, &end); err != nil {
			return nil, err
		}
		e.EndEpisode = intFromNull(end)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==================== Question Methods ====================

// CreateQuestion stores an unscored question
func (r *Repository) CreateQuestion(ctx context.Context, q models.Question) (int64, error) {
	var options interface{}
	if len(q.Options) > 0 {
		encoded, err := json.Marshal(q.Options)
		if err != nil {
			return 0, err
		}
		options = string(encoded)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (league_season_id, episode_number, question_type, prompt, options,
		                       point_value, is_wager, min_wager, max_wager)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.LeagueSeasonID, q.EpisodeNumber, string(q.Type), q.Prompt, options,
		q.PointValue, q.IsWager, q.MinWager, q.MaxWager)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetQuestion retrieves a question by ID
func (r *Repository) GetQuestion(ctx context.Context, id int) (*models.Question, error) {
	var q models.Question
	var qType string
	var prompt, options, correct sql.NullString
	var minWager, maxWager sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, league_season_id, episode_number, question_type, prompt, options,
		       point_value, is_wager, min_wager, max_wager, correct_answer, is_scored
		FROM questions WHERE id = ?
	`, id).Scan(&q.ID, &q.LeagueSeasonID, &q.EpisodeNumber, &qType, &prompt, &options,
		&q.PointValue, &q.IsWager, &minWager, &maxWager, &correct, &q.IsScored)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	q.Type = models.QuestionType(qType)
	q.Prompt = prompt.String
	q.MinWager = intFromNull(minWager)
	q.MaxWager = intFromNull(maxWager)
	q.CorrectAnswer = stringFromNull(correct)
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &q.Options); err != nil {
			return nil, err
		}
	}
	return &q, nil
}

// MarkQuestionScored sets the correct answer and flags the question scored.
// Calling it again overwrites the correct answer (rescoring).
func (r *Repository) MarkQuestionScored(ctx context.Context, id int, correctAnswer string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE questions SET correct_answer = ?, is_scored = 1 WHERE id = ?`, correctAnswer, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ==================== Answer Methods ====================

// SaveAnswer creates or replaces a team's answer. Any previously earned
// points are cleared until the ledger scores it again.
func (r *Repository) SaveAnswer(ctx context.Context, questionID, teamID int, answerText string, wagerAmount *int) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO answers (question_id, team_id, answer_text, wager_amount, points_earned)
		VALUES (?, ?, ?, ?, NULL)
		ON CONFLICT(question_id, team_id) DO UPDATE SET
			answer_text = excluded.answer_text,
			wager_amount = excluded.wager_amount,
			points_earned = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, questionID, teamID, answerText, wagerAmount)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM answers WHERE question_id = ? AND team_id = ?`, questionID, teamID).Scan(&id)
	return id, err
}

// GetAnswer retrieves a team's answer to a question
func (r *Repository) GetAnswer(ctx context.Context, questionID, teamID int) (*models.Answer, error) {
	var a models.Answer
	var wager, points sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, question_id, team_id, answer_text, wager_amount, points_earned
		FROM answers WHERE question_id = ? AND team_id = ?
	`, questionID, teamID).Scan(&a.ID, &a.QuestionID, &a.TeamID, &a.AnswerText, &wager, &points)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.WagerAmount = intFromNull(wager)
	a.PointsEarned = intFromNull(points)
	return &a, nil
}

// ListScoredAnswers returns a team's answers to scored questions in
// episodes 1..maxEpisode, joined with their questions
func (r *Repository) ListScoredAnswers(ctx context.Context, teamID, maxEpisode int) ([]models.ScoredAnswer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.question_id, a.team_id, a.answer_text, a.wager_amount, a.points_earned,
		       q.league_season_id, q.episode_number, q.question_type, q.point_value,
		       q.is_wager, q.min_wager, q.max_wager, q.correct_answer, q.is_scored
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.team_id = ? AND q.is_scored = 1 AND q.episode_number BETWEEN 1 AND ?
		ORDER BY q.episode_number, a.id
	`, teamID, maxEpisode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoredAnswer
	for rows.Next() {
		var sa models.ScoredAnswer
		var qType string
		var wager, points, minWager, maxWager sql.NullInt64
		var correct sql.NullString
		if err := rows.Scan(&sa.Answer.ID, &sa.Answer.QuestionID, &sa.Answer.TeamID, &sa.Answer.AnswerText,
			&wager, &points,
			&sa.Question.LeagueSeasonID, &sa.Question.EpisodeNumber, &qType, &sa.Question.PointValue,
			&sa.Question.IsWager, &minWager, &maxWager, &correct, &sa.Question.IsScored); err != nil {
			return nil, err
		}
		sa.Answer.WagerAmount = intFromNull(wager)
		sa.Answer.PointsEarned = intFromNull(points)
		sa.Question.ID = sa.Answer.QuestionID
		sa.Question.Type = models.QuestionType(qType)
		sa.Question.MinWager = intFromNull(minWager)
		sa.Question.MaxWager = intFromNull(maxWager)
		sa.Question.CorrectAnswer = stringFromNull(correct)
		out = append(out, sa)
	}
	return out, rows.Err()
}

// ListTeamIDsForQuestion returns the teams that answered a question
func (r *Repository) ListTeamIDsForQuestion(ctx context.Context, questionID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id FROM answers WHERE question_id = ? ORDER BY team_id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==================== Retention Config Methods ====================

// SetRetentionConfig creates or replaces one episode's retention points
func (r *Repository) SetRetentionConfig(ctx context.Context, leagueSeasonID, episode, pointsPerCastaway int) error {
	_, err := r.db.ExecContext(ctx, upsertRetentionSQL, leagueSeasonID, episode, pointsPerCastaway)
	return err
}

const upsertRetentionSQL = `
	INSERT INTO retention_configs (league_season_id, episode_number, points_per_castaway)
	VALUES (?, ?, ?)
	ON CONFLICT(league_season_id, episode_number) DO UPDATE SET
		points_per_castaway = excluded.points_per_castaway
`

// SetRetentionConfigRange applies one value to every episode in the range, atomically
func (r *Repository) SetRetentionConfigRange(ctx context.Context, leagueSeasonID, fromEpisode, toEpisode, pointsPerCastaway int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for ep := fromEpisode; ep <= toEpisode; ep++ {
		if _, err := tx.ExecContext(ctx, upsertRetentionSQL, leagueSeasonID, ep, pointsPerCastaway); err != nil {
			return fmt.Errorf("episode %d: %w", ep, err)
		}
	}
	return tx.Commit()
}

// DeleteRetentionConfig removes one episode's configuration
func (r *Repository) DeleteRetentionConfig(ctx context.Context, leagueSeasonID, episode int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM retention_configs WHERE league_season_id = ? AND episode_number = ?`,
		leagueSeasonID, episode)
	return err
}

// ListRetentionConfigs returns a league-season's configured episodes in order
func (r *Repository) ListRetentionConfigs(ctx context.Context, leagueSeasonID int) ([]models.RetentionConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT league_season_id, episode_number, points_per_castaway
		FROM retention_configs
		WHERE league_season_id = ?
		ORDER BY episode_number
	`, leagueSeasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.RetentionConfig
	for rows.Next() {
		var c models.RetentionConfig
		if err := rows.Scan(&c.LeagueSeasonID, &c.EpisodeNumber, &c.PointsPerCastaway); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// ==================== Ledger Methods ====================

// ListTeamEpisodePoints returns a team's ledger rows in episode order
func (r *Repository) ListTeamEpisodePoints(ctx context.Context, teamID int) ([]models.TeamEpisodePoints, error) {
	return r.queryEpisodePoints(ctx, `
		SELECT team_id, episode_number, question_points, retention_points, total_episode_points, running_total
		FROM team_episode_points
		WHERE team_id = ?
		ORDER BY episode_number
	`, teamID)
}

// ListSeasonEpisodePoints returns every ledger row of a league-season,
// ordered by team then episode
func (r *Repository) ListSeasonEpisodePoints(ctx context.Context, leagueSeasonID int) ([]models.TeamEpisodePoints, error) {
	return r.queryEpisodePoints(ctx, `
		SELECT p.team_id, p.episode_number, p.question_points, p.retention_points,
		       p.total_episode_points, p.running_total
		FROM team_episode_points p
		JOIN teams t ON t.id = p.team_id
		WHERE t.league_season_id = ?
		ORDER BY p.team_id, p.episode_number
	`, leagueSeasonID)
}

func (r *Repository) queryEpisodePoints(ctx context.Context, query string, args ...interface{}) ([]models.TeamEpisodePoints, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TeamEpisodePoints
	for rows.Next() {
		var p models.TeamEpisodePoints
		if err := rows.Scan(&p.TeamID, &p.EpisodeNumber, &p.QuestionPoints, &p.RetentionPoints,
			&p.TotalEpisodePoints, &p.RunningTotal); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const upsertEpisodePointsSQL = `
	INSERT INTO team_episode_points (team_id, episode_number, question_points, retention_points,
	                                 total_episode_points, running_total)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(team_id, episode_number) DO UPDATE SET
		question_points = excluded.question_points,
		retention_points = excluded.retention_points,
		total_episode_points = excluded.total_episode_points,
		running_total = excluded.running_total
`

// ReplaceTeamSeries overwrites a team's ledger rows from fromEpisode onward,
// persists the answers' earned points and sets the team's total cache, all
// in one transaction. Rows at or after fromEpisode that are not in rows are
// removed.
func (r *Repository) ReplaceTeamSeries(ctx context.Context, teamID, fromEpisode int, rows []models.TeamEpisodePoints, answers []models.AnswerPoints, totalPoints int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM team_episode_points WHERE team_id = ? AND episode_number >= ?`,
		teamID, fromEpisode); err != nil {
		return err
	}
	for _, row := range rows {
		if err := execEpisodePoints(ctx, tx, teamID, row); err != nil {
			return err
		}
	}
	if err := execAnswerPoints(ctx, tx, answers); err != nil {
		return err
	}
	if err := execTeamTotal(ctx, tx, teamID, totalPoints); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertTeamEpisode overwrites a single ledger row and persists its answers'
// points. With syncTotal the team's total cache is set to the row's running
// total in the same transaction.
func (r *Repository) UpsertTeamEpisode(ctx context.Context, row models.TeamEpisodePoints, answers []models.AnswerPoints, syncTotal bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := execEpisodePoints(ctx, tx, row.TeamID, row); err != nil {
		return err
	}
	if err := execAnswerPoints(ctx, tx, answers); err != nil {
		return err
	}
	if syncTotal {
		if err := execTeamTotal(ctx, tx, row.TeamID, row.RunningTotal); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func execEpisodePoints(ctx context.Context, tx *sql.Tx, teamID int, row models.TeamEpisodePoints) error {
	if row.TeamID != teamID {
		return fmt.Errorf("ledger row for team %d written to team %d", row.TeamID, teamID)
	}
	_, err := tx.ExecContext(ctx, upsertEpisodePointsSQL,
		row.TeamID, row.EpisodeNumber, row.QuestionPoints, row.RetentionPoints,
		row.TotalEpisodePoints, row.RunningTotal)
	return err
}

func execAnswerPoints(ctx context.Context, tx *sql.Tx, answers []models.AnswerPoints) error {
	for _, a := range answers {
		if _, err := tx.ExecContext(ctx,
			`UPDATE answers SET points_earned = ? WHERE id = ?`, a.PointsEarned, a.AnswerID); err != nil {
			return err
		}
	}
	return nil
}

func execTeamTotal(ctx context.Context, tx *sql.Tx, teamID, total int) error {
	result, err := tx.ExecContext(ctx, `UPDATE teams SET total_points = ? WHERE id = ?`, total, teamID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting creates or updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// ListSettings returns all settings
func (r *Repository) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// ==================== Helpers ====================

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stringFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
