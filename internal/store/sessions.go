package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionRepo manages game-session records. A session is created open
// and finished exactly once; finished sessions are never mutated again.
type SessionRepo interface {
	// Start inserts a new open session and returns its id.
	Start(ctx context.Context, playerID int64, startedAt time.Time) (int64, error)

	// ByID returns the session with the given id, or nil if absent.
	ByID(ctx context.Context, id int64) (*GameSession, error)

	// All returns every session in natural record order.
	All(ctx context.Context) ([]GameSession, error)

	// Finish stamps the end time and writes the final score and
	// question count. Returns NotFoundError if the session is absent.
	Finish(ctx context.Context, id int64, endedAt time.Time, score, questionCount int) error
}

type sessionRepo struct {
	db *sql.DB
}

const sessionColumns = `id, player_id, started_at, ended_at, score, question_count`

func (r *sessionRepo) Start(ctx context.Context, playerID int64, startedAt time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO game_sessions (player_id, started_at, score, question_count) VALUES (?, ?, 0, 0)`,
		playerID, toMillis(startedAt))
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return res.LastInsertId()
}

func (r *sessionRepo) ByID(ctx context.Context, id int64) (*GameSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepo) All(ctx context.Context) ([]GameSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []GameSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepo) Finish(ctx context.Context, id int64, endedAt time.Time, score, questionCount int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_sessions SET ended_at = ?, score = ?, question_count = ? WHERE id = ?`,
		toMillis(endedAt), score, questionCount, id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return requireAffected(res, "game_sessions", id)
}

func scanSession(row rowScanner) (*GameSession, error) {
	var (
		s       GameSession
		started int64
		ended   sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.PlayerID, &started, &ended, &s.Score, &s.QuestionCount)
	if err != nil {
		return nil, err
	}
	s.StartedAt = fromMillis(started)
	s.EndedAt = millisPtr(ended)
	return &s, nil
}
