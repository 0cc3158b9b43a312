package store

import "database/sql"

// Tables and secondary indexes. Timestamps are stored as Unix
// milliseconds; wrong answers as a JSON array.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL UNIQUE,
		age            INTEGER,
		tier_min       TEXT,
		tier_max       TEXT,
		color          TEXT NOT NULL DEFAULT '',
		total_score    INTEGER NOT NULL DEFAULT 0,
		created_at     INTEGER NOT NULL,
		last_played_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		text          TEXT NOT NULL,
		answer        TEXT NOT NULL,
		wrong_answers TEXT NOT NULL,
		category      TEXT NOT NULL DEFAULT '',
		tier          TEXT NOT NULL,
		base_points   INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL,
		flagged       INTEGER NOT NULL DEFAULT 0,
		source        TEXT NOT NULL DEFAULT 'bundled',
		correct_count INTEGER NOT NULL DEFAULT 0,
		wrong_count   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions (category)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_tier ON questions (tier)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_base_points ON questions (base_points)`,
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id      INTEGER NOT NULL REFERENCES players (id),
		started_at     INTEGER NOT NULL,
		ended_at       INTEGER,
		score          INTEGER NOT NULL DEFAULT 0,
		question_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_player ON game_sessions (player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_started ON game_sessions (started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_ended ON game_sessions (ended_at)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  INTEGER NOT NULL REFERENCES game_sessions (id),
		question_id INTEGER NOT NULL,
		given       TEXT NOT NULL,
		correct     INTEGER NOT NULL,
		latency_ms  INTEGER NOT NULL,
		category    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_session ON answers (session_id)`,
	`CREATE TABLE IF NOT EXISTS statistics (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id      INTEGER NOT NULL REFERENCES players (id),
		category       TEXT NOT NULL,
		games_played   INTEGER NOT NULL DEFAULT 0,
		total_score    INTEGER NOT NULL DEFAULT 0,
		correct_count  INTEGER NOT NULL DEFAULT 0,
		wrong_count    INTEGER NOT NULL DEFAULT 0,
		avg_latency_ms INTEGER NOT NULL DEFAULT 0,
		updated_at     INTEGER NOT NULL,
		UNIQUE (player_id, category)
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
