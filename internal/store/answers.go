package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AnswerRepo manages the append-only answer history. One record is
// written per question presented, at the moment the player responds.
type AnswerRepo interface {
	// Append records a response and returns its id.
	Append(ctx context.Context, a *Answer) (int64, error)

	// BySession returns the answers of one session in record order.
	BySession(ctx context.Context, sessionID int64) ([]Answer, error)

	// All returns every answer in natural record order.
	All(ctx context.Context) ([]Answer, error)
}

type answerRepo struct {
	db *sql.DB
}

const answerColumns = `id, session_id, question_id, given, correct, latency_ms, category`

func (r *answerRepo) Append(ctx context.Context, a *Answer) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO answers (session_id, question_id, given, correct, latency_ms, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.QuestionID, a.Given, a.Correct, a.LatencyMs, a.Category)
	if err != nil {
		return 0, fmt.Errorf("insert answer: %w", err)
	}
	return res.LastInsertId()
}

func (r *answerRepo) BySession(ctx context.Context, sessionID int64) ([]Answer, error) {
	return r.queryAnswers(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE session_id = ? ORDER BY id`, sessionID)
}

func (r *answerRepo) All(ctx context.Context) ([]Answer, error) {
	return r.queryAnswers(ctx, `SELECT `+answerColumns+` FROM answers ORDER BY id`)
}

func (r *answerRepo) queryAnswers(ctx context.Context, query string, args ...any) ([]Answer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Given, &a.Correct, &a.LatencyMs, &a.Category); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
