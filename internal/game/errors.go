package game

import (
	"fmt"

	"kysymyssota/internal/store"
)

// PlayerCreationError indicates player lookup-or-create failed to yield
// a usable record. Fatal to the StartSession call.
type PlayerCreationError struct {
	Name string
	Err  error
}

func (e *PlayerCreationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("create player %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("create player %q: no record after insert", e.Name)
}

func (e *PlayerCreationError) Unwrap() error { return e.Err }

// UnknownSessionError indicates the targeted session id is not in the
// active set: never started, or already terminal.
type UnknownSessionError struct {
	SessionID int64
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("session %d is not active", e.SessionID)
}

// NoQuestionAvailableError indicates the filter criteria matched zero
// questions. Recoverable: the caller may retry with relaxed filters.
type NoQuestionAvailableError struct {
	Category string
	Tier     store.Tier
}

func (e *NoQuestionAvailableError) Error() string {
	msg := "no question available"
	if e.Category != "" {
		msg += fmt.Sprintf(" in category %q", e.Category)
	}
	if e.Tier != "" {
		msg += fmt.Sprintf(" at tier %q", e.Tier)
	}
	return msg
}
