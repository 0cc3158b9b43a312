package game

import (
	"time"

	"kysymyssota/internal/store"
)

// DefaultQuestionCount is the session length when the caller does not
// ask for a specific one.
const DefaultQuestionCount = 10

// SessionState tracks the runtime state of one active session. The
// engine owns exactly one SessionState per session id; it is discarded
// when the session ends.
type SessionState struct {
	// SessionID is the persisted game-session record id.
	SessionID int64

	// Player is a snapshot of the player taken at session start.
	Player store.Player

	// CurrentQuestion is the question awaiting an answer, nil between
	// questions.
	CurrentQuestion *store.Question

	// Options is the shuffled option set for the current question.
	Options []string

	// Score is the points accumulated so far.
	Score int

	// QuestionIndex is the 1-based count of questions presented.
	QuestionIndex int

	// TotalQuestions is the requested session length.
	TotalQuestions int

	// StartedAt is when the session began.
	StartedAt time.Time

	// QuestionShownAt is when the current question was presented.
	QuestionShownAt time.Time

	// Streak counts consecutive correct answers, reset on a wrong
	// answer or when the streak bonus pays out.
	Streak int

	// Finished is set once the session has been terminated and the
	// state removed from the active set.
	Finished bool

	// EndedAt is the termination time, set together with Finished.
	EndedAt *time.Time
}

// AnswerResult is returned from SubmitAnswer for UI feedback.
type AnswerResult struct {
	Correct       bool
	CorrectAnswer string
	Points        int
	Breakdown     Breakdown
}
