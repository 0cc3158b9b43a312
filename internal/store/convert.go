package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func millisPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

func encodeWrongAnswers(wrong []string) (string, error) {
	b, err := json.Marshal(wrong)
	if err != nil {
		return "", fmt.Errorf("encode wrong answers: %w", err)
	}
	return string(b), nil
}

func decodeWrongAnswers(raw string) ([]string, error) {
	var wrong []string
	if err := json.Unmarshal([]byte(raw), &wrong); err != nil {
		return nil, fmt.Errorf("decode wrong answers: %w", err)
	}
	return wrong, nil
}
