package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

// QuestionFilter narrows question queries. Zero values mean no filter.
type QuestionFilter struct {
	Category string
	Tier     Tier
}

// QuestionRepo is the query surface over the question bank.
type QuestionRepo interface {
	// Add inserts a new question and returns its id.
	Add(ctx context.Context, q *Question) (int64, error)

	// ByID returns the question with the given id, or nil if absent.
	ByID(ctx context.Context, id int64) (*Question, error)

	// All returns every question in natural record order.
	All(ctx context.Context) ([]Question, error)

	// Matching returns the questions matching the filter.
	Matching(ctx context.Context, f QuestionFilter) ([]Question, error)

	// Random picks one question uniformly at random from the filtered
	// set using rng, or nil when the set is empty. Scans the filtered
	// set; bank sizes are in the hundreds.
	Random(ctx context.Context, f QuestionFilter, rng *rand.Rand) (*Question, error)

	// Categories returns the sorted set of category names.
	Categories(ctx context.Context) ([]string, error)

	// CategoriesWithCounts returns category names with question counts,
	// alphabetically ordered for stable output.
	CategoriesWithCounts(ctx context.Context) ([]CategoryCount, error)

	// Update rewrites a question. Returns NotFoundError if absent.
	Update(ctx context.Context, q *Question) error

	// Delete removes a question. Returns NotFoundError if absent.
	Delete(ctx context.Context, id int64) error

	// Clear removes all questions.
	Clear(ctx context.Context) error

	// FlagError marks a question as having a reported error.
	FlagError(ctx context.Context, id int64) error

	// ClearError removes the error flag from a question.
	ClearError(ctx context.Context, id int64) error

	// RecordOutcome increments the question's correct or wrong counter.
	RecordOutcome(ctx context.Context, id int64, correct bool) error
}

// CategoryCount pairs a category name with its question count.
type CategoryCount struct {
	Category string
	Count    int
}

type questionRepo struct {
	db *sql.DB
}

const questionColumns = `id, text, answer, wrong_answers, category, tier, base_points, created_at, flagged, source, correct_count, wrong_count`

func (r *questionRepo) Add(ctx context.Context, q *Question) (int64, error) {
	wrong, err := encodeWrongAnswers(q.WrongAnswers)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (text, answer, wrong_answers, category, tier, base_points, created_at, flagged, source, correct_count, wrong_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Text, q.Answer, wrong, q.Category, string(q.Tier), q.BasePoints,
		toMillis(q.CreatedAt), q.Flagged, q.Source, q.CorrectCount, q.WrongCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return res.LastInsertId()
}

func (r *questionRepo) ByID(ctx context.Context, id int64) (*Question, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (r *questionRepo) All(ctx context.Context) ([]Question, error) {
	return r.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
}

func (r *questionRepo) Matching(ctx context.Context, f QuestionFilter) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	var args []any
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Tier != "" {
		query += ` AND tier = ?`
		args = append(args, string(f.Tier))
	}
	query += ` ORDER BY id`
	return r.queryQuestions(ctx, query, args...)
}

func (r *questionRepo) Random(ctx context.Context, f QuestionFilter, rng *rand.Rand) (*Question, error) {
	matched, err := r.Matching(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}
	q := matched[rng.IntN(len(matched))]
	return &q, nil
}

func (r *questionRepo) Categories(ctx context.Context) ([]string, error) {
	counts, err := r.CategoriesWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Category
	}
	return names, nil
}

func (r *questionRepo) CategoriesWithCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM questions GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Category < counts[j].Category })
	return counts, nil
}

func (r *questionRepo) Update(ctx context.Context, q *Question) error {
	wrong, err := encodeWrongAnswers(q.WrongAnswers)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET text = ?, answer = ?, wrong_answers = ?, category = ?, tier = ?,
		 base_points = ?, flagged = ?, source = ? WHERE id = ?`,
		q.Text, q.Answer, wrong, q.Category, string(q.Tier), q.BasePoints, q.Flagged, q.Source, q.ID,
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return requireAffected(res, "questions", q.ID)
}

func (r *questionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return requireAffected(res, "questions", id)
}

func (r *questionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	return nil
}

func (r *questionRepo) FlagError(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, true)
}

func (r *questionRepo) ClearError(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, false)
}

func (r *questionRepo) setFlag(ctx context.Context, id int64, flagged bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE questions SET flagged = ? WHERE id = ?`, flagged, id)
	if err != nil {
		return fmt.Errorf("flag question: %w", err)
	}
	return requireAffected(res, "questions", id)
}

func (r *questionRepo) RecordOutcome(ctx context.Context, id int64, correct bool) error {
	column := "wrong_count"
	if correct {
		column = "correct_count"
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE questions SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("record question outcome: %w", err)
	}
	return requireAffected(res, "questions", id)
}

func (r *questionRepo) queryQuestions(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func scanQuestion(row rowScanner) (*Question, error) {
	var (
		q       Question
		wrong   string
		tier    string
		created int64
	)
	err := row.Scan(&q.ID, &q.Text, &q.Answer, &wrong, &q.Category, &tier, &q.BasePoints,
		&created, &q.Flagged, &q.Source, &q.CorrectCount, &q.WrongCount)
	if err != nil {
		return nil, err
	}
	q.Tier = Tier(tier)
	q.CreatedAt = fromMillis(created)
	q.WrongAnswers, err = decodeWrongAnswers(wrong)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func requireAffected(res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Table: table, ID: id}
	}
	return nil
}
