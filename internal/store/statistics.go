package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatRepo manages the derived per-player per-category rollup. It is a
// cache over the answer/session history, written best-effort at session
// end; readers must tolerate it being stale or missing.
type StatRepo interface {
	// Accumulate merges one session's per-category results into the
	// player's rollup row, creating it if absent. Running averages are
	// weighted by answer counts.
	Accumulate(ctx context.Context, playerID int64, category string, delta StatDelta, now time.Time) error

	// ByPlayer returns the player's rollup rows, one per category.
	ByPlayer(ctx context.Context, playerID int64) ([]StatRecord, error)

	// All returns every rollup row in natural record order.
	All(ctx context.Context) ([]StatRecord, error)
}

// StatDelta is one session's contribution to a rollup row.
type StatDelta struct {
	GamesPlayed  int
	Score        int
	Correct      int
	Wrong        int
	AvgLatencyMs int
}

type statRepo struct {
	db *sql.DB
}

const statColumns = `id, player_id, category, games_played, total_score, correct_count, wrong_count, avg_latency_ms, updated_at`

func (r *statRepo) Accumulate(ctx context.Context, playerID int64, category string, delta StatDelta, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin statistics tx: %w", err)
	}
	defer tx.Rollback()

	var (
		id                    int64
		correct, wrong, avgMs int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, correct_count, wrong_count, avg_latency_ms FROM statistics WHERE player_id = ? AND category = ?`,
		playerID, category).Scan(&id, &correct, &wrong, &avgMs)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO statistics (player_id, category, games_played, total_score, correct_count, wrong_count, avg_latency_ms, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			playerID, category, delta.GamesPlayed, delta.Score, delta.Correct, delta.Wrong, delta.AvgLatencyMs, toMillis(now))
		if err != nil {
			return fmt.Errorf("insert statistics: %w", err)
		}
	case err != nil:
		return fmt.Errorf("query statistics: %w", err)
	default:
		newAvg := weightedAvg(avgMs, correct+wrong, delta.AvgLatencyMs, delta.Correct+delta.Wrong)
		_, err = tx.ExecContext(ctx,
			`UPDATE statistics SET games_played = games_played + ?, total_score = total_score + ?,
			 correct_count = correct_count + ?, wrong_count = wrong_count + ?, avg_latency_ms = ?, updated_at = ?
			 WHERE id = ?`,
			delta.GamesPlayed, delta.Score, delta.Correct, delta.Wrong, newAvg, toMillis(now), id)
		if err != nil {
			return fmt.Errorf("update statistics: %w", err)
		}
	}

	return tx.Commit()
}

func (r *statRepo) ByPlayer(ctx context.Context, playerID int64) ([]StatRecord, error) {
	return r.queryStats(ctx,
		`SELECT `+statColumns+` FROM statistics WHERE player_id = ? ORDER BY category`, playerID)
}

func (r *statRepo) All(ctx context.Context) ([]StatRecord, error) {
	return r.queryStats(ctx, `SELECT `+statColumns+` FROM statistics ORDER BY id`)
}

func (r *statRepo) queryStats(ctx context.Context, query string, args ...any) ([]StatRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query statistics: %w", err)
	}
	defer rows.Close()

	var records []StatRecord
	for rows.Next() {
		var (
			rec     StatRecord
			updated int64
		)
		err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.Category, &rec.GamesPlayed, &rec.TotalScore,
			&rec.CorrectCount, &rec.WrongCount, &rec.AvgLatencyMs, &updated)
		if err != nil {
			return nil, err
		}
		rec.UpdatedAt = fromMillis(updated)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// weightedAvg merges two averages weighted by their sample counts.
func weightedAvg(avgA, countA, avgB, countB int) int {
	total := countA + countB
	if total == 0 {
		return 0
	}
	return (avgA*countA + avgB*countB) / total
}
