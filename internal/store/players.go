package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PlayerRepo manages player records. Cumulative scores are mutated only
// through AddScore; deletion is an explicit admin action.
type PlayerRepo interface {
	// Create inserts a new player and returns its id.
	Create(ctx context.Context, p *Player) (int64, error)

	// ByID returns the player with the given id, or nil if absent.
	ByID(ctx context.Context, id int64) (*Player, error)

	// ByName returns the player with the given name, or nil if absent.
	ByName(ctx context.Context, name string) (*Player, error)

	// All returns every player in natural record order.
	All(ctx context.Context) ([]Player, error)

	// AddScore adds points to the player's cumulative score and stamps
	// the last-played time.
	AddScore(ctx context.Context, id int64, points int, playedAt time.Time) error

	// Delete removes a player. Returns NotFoundError if absent.
	Delete(ctx context.Context, id int64) error
}

type playerRepo struct {
	db *sql.DB
}

const playerColumns = `id, name, age, tier_min, tier_max, color, total_score, created_at, last_played_at`

func (r *playerRepo) Create(ctx context.Context, p *Player) (int64, error) {
	var tierMin, tierMax sql.NullString
	if p.TierMin != nil {
		tierMin = sql.NullString{String: string(*p.TierMin), Valid: true}
	}
	if p.TierMax != nil {
		tierMax = sql.NullString{String: string(*p.TierMax), Valid: true}
	}
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, age, tier_min, tier_max, color, total_score, created_at, last_played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, age, tierMin, tierMax, p.Color, p.TotalScore, toMillis(p.CreatedAt), nullMillis(p.LastPlayed),
	)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	return res.LastInsertId()
}

func (r *playerRepo) ByID(ctx context.Context, id int64) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	return scanPlayer(row)
}

func (r *playerRepo) ByName(ctx context.Context, name string) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = ?`, name)
	return scanPlayer(row)
}

func (r *playerRepo) All(ctx context.Context) ([]Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayerRow(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *playerRepo) AddScore(ctx context.Context, id int64, points int, playedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET total_score = total_score + ?, last_played_at = ? WHERE id = ?`,
		points, toMillis(playedAt), id)
	if err != nil {
		return fmt.Errorf("update player score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Table: "players", ID: id}
	}
	return nil
}

func (r *playerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Table: "players", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row *sql.Row) (*Player, error) {
	p, err := scanPlayerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanPlayerRow(row rowScanner) (*Player, error) {
	var (
		p                Player
		age              sql.NullInt64
		tierMin, tierMax sql.NullString
		created          int64
		lastPlayed       sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &age, &tierMin, &tierMax, &p.Color, &p.TotalScore, &created, &lastPlayed)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if tierMin.Valid {
		t := Tier(tierMin.String)
		p.TierMin = &t
	}
	if tierMax.Valid {
		t := Tier(tierMax.String)
		p.TierMax = &t
	}
	p.CreatedAt = fromMillis(created)
	p.LastPlayed = millisPtr(lastPlayed)
	return &p, nil
}
