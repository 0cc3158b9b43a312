package game

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kysymyssota/internal/store"
)

// Engine owns the in-memory state of all currently active sessions and
// orchestrates session start, question advancement, answer scoring and
// termination with the statistics rollup.
type Engine struct {
	players   store.PlayerRepo
	questions store.QuestionRepo
	sessions  store.SessionRepo
	answers   store.AnswerRepo
	stats     store.StatRepo

	mu     sync.Mutex
	active map[int64]*SessionState

	bus *SessionEndedBus
	rng *mathrand.Rand
	log zerolog.Logger
	now func() time.Time
}

// Options configures an Engine. Zero values pick sane defaults.
type Options struct {
	// Rand is the randomness source for question selection and option
	// shuffling. Seedable for deterministic tests. Defaults to a
	// crypto-seeded PCG source.
	Rand *mathrand.Rand

	// Logger receives engine diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// New creates an Engine over the given store.
func New(st *store.Store, opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = mathrand.New(mathrand.NewPCG(cryptoSeed(), cryptoSeed()))
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		players:   st.Players(),
		questions: st.Questions(),
		sessions:  st.Sessions(),
		answers:   st.Answers(),
		stats:     st.Statistics(),
		active:    make(map[int64]*SessionState),
		bus:       NewSessionEndedBus(log),
		rng:       rng,
		log:       log,
		now:       now,
	}
}

// Events returns the session-ended bus for listener registration.
func (e *Engine) Events() *SessionEndedBus {
	return e.bus
}

// StartOptions configures a new session.
type StartOptions struct {
	// QuestionCount is the session length; DefaultQuestionCount when
	// zero or negative.
	QuestionCount int

	// Category and Tier filter question selection for the whole
	// session. Empty means any.
	Category string
	Tier     store.Tier

	// Age, TierMin, TierMax and Color are applied when the named
	// player does not exist yet and has to be created.
	Age     *int
	TierMin *store.Tier
	TierMax *store.Tier
	Color   string
}

// StartSession looks up or creates the named player, creates the
// session record and immediately advances to the first question.
//
// When no question matches the filters the returned state is still
// valid and registered: the caller may retry AdvanceQuestion with
// relaxed filters, and the error is a *NoQuestionAvailableError.
func (e *Engine) StartSession(ctx context.Context, playerName string, opts StartOptions) (*SessionState, error) {
	count := opts.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}

	player, err := e.players.ByName(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("look up player: %w", err)
	}
	if player == nil {
		id, err := e.players.Create(ctx, &store.Player{
			Name:      playerName,
			Age:       opts.Age,
			TierMin:   opts.TierMin,
			TierMax:   opts.TierMax,
			Color:     opts.Color,
			CreatedAt: e.now(),
		})
		if err != nil {
			return nil, &PlayerCreationError{Name: playerName, Err: err}
		}
		player, err = e.players.ByID(ctx, id)
		if err != nil {
			return nil, &PlayerCreationError{Name: playerName, Err: err}
		}
		if player == nil {
			return nil, &PlayerCreationError{Name: playerName}
		}
		e.log.Info().Str("player", playerName).Int64("id", id).Msg("created player")
	}

	startedAt := e.now()
	sessionID, err := e.sessions.Start(ctx, player.ID, startedAt)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	state := &SessionState{
		SessionID:      sessionID,
		Player:         *player,
		TotalQuestions: count,
		StartedAt:      startedAt,
	}

	e.mu.Lock()
	e.active[sessionID] = state
	e.mu.Unlock()

	e.log.Debug().
		Int64("session", sessionID).
		Str("player", playerName).
		Int("questions", count).
		Msg("session started")

	if _, err := e.AdvanceQuestion(ctx, sessionID, opts.Category, opts.Tier); err != nil {
		return state, err
	}
	return state, nil
}

// AdvanceQuestion selects and presents the next question, or ends the
// session once the requested count has been served. The returned state
// has Finished set when the call was terminal.
func (e *Engine) AdvanceQuestion(ctx context.Context, sessionID int64, category string, tier store.Tier) (*SessionState, error) {
	state := e.lookup(sessionID)
	if state == nil {
		return nil, &UnknownSessionError{SessionID: sessionID}
	}

	if state.QuestionIndex >= state.TotalQuestions {
		return e.EndSession(ctx, sessionID)
	}

	q, err := e.questions.Random(ctx, store.QuestionFilter{Category: category, Tier: tier}, e.rng)
	if err != nil {
		return nil, fmt.Errorf("select question: %w", err)
	}
	if q == nil {
		return nil, &NoQuestionAvailableError{Category: category, Tier: tier}
	}

	options := make([]string, 0, len(q.WrongAnswers)+1)
	options = append(options, q.Answer)
	options = append(options, q.WrongAnswers...)
	e.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	state.CurrentQuestion = q
	state.Options = options
	state.QuestionIndex++
	state.QuestionShownAt = e.now()

	return state, nil
}

// SubmitAnswer scores the player's response to the current question and
// appends the answer record. It returns nil when the session is unknown
// or no question is presented, so a double submit is a harmless no-op.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID int64, answerText string) (*AnswerResult, error) {
	state := e.lookup(sessionID)
	if state == nil || state.CurrentQuestion == nil {
		return nil, nil
	}

	q := state.CurrentQuestion
	correct := strings.EqualFold(strings.TrimSpace(answerText), strings.TrimSpace(q.Answer))
	latency := e.now().Sub(state.QuestionShownAt)
	if latency < 0 {
		latency = 0
	}

	result := &AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.Answer,
		Breakdown:     Breakdown{AgeMultiplier: 1.0},
	}

	if correct {
		points, bd := scoreCorrect(q, &state.Player, latency, state.Streak)
		state.Score += points
		state.Streak = bd.StreakAfter
		result.Points = points
		result.Breakdown = bd
	} else {
		state.Streak = 0
	}

	_, err := e.answers.Append(ctx, &store.Answer{
		SessionID:  sessionID,
		QuestionID: q.ID,
		Given:      answerText,
		Correct:    correct,
		LatencyMs:  int(latency.Milliseconds()),
		Category:   q.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	// Per-question outcome counters are a derived convenience; losing
	// an increment must not fail the submit.
	if err := e.questions.RecordOutcome(ctx, q.ID, correct); err != nil {
		e.log.Warn().Err(err).Int64("question", q.ID).Msg("outcome counter update failed")
	}

	state.CurrentQuestion = nil
	state.Options = nil

	return result, nil
}

// EndSession terminates the session: persists the final session record,
// credits the player's cumulative score, writes the best-effort
// statistics rollup and publishes the session-ended event. Returns nil
// when the session id is not active; a second call can never award a
// second score credit.
func (e *Engine) EndSession(ctx context.Context, sessionID int64) (*SessionState, error) {
	state := e.lookup(sessionID)
	if state == nil {
		return nil, nil
	}

	endedAt := e.now()
	if err := e.sessions.Finish(ctx, sessionID, endedAt, state.Score, state.QuestionIndex); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	if err := e.players.AddScore(ctx, state.Player.ID, state.Score, endedAt); err != nil {
		return nil, fmt.Errorf("credit player score: %w", err)
	}

	// The rollup is a cache. A failure here is logged and swallowed:
	// the score credit above is already committed and never undone.
	if err := e.rollupStatistics(ctx, state, endedAt); err != nil {
		e.log.Warn().Err(err).Int64("session", sessionID).Msg("statistics rollup failed")
	}

	e.mu.Lock()
	delete(e.active, sessionID)
	e.mu.Unlock()

	state.Finished = true
	state.EndedAt = &endedAt
	state.CurrentQuestion = nil
	state.Options = nil

	e.log.Info().
		Int64("session", sessionID).
		Str("player", state.Player.Name).
		Int("score", state.Score).
		Int("questions", state.QuestionIndex).
		Msg("session ended")

	e.bus.Publish(SessionEnded{
		SessionID:  sessionID,
		PlayerID:   state.Player.ID,
		TotalScore: state.Score,
	})

	return state, nil
}

// State returns the live state for an active session, or nil.
func (e *Engine) State(sessionID int64) *SessionState {
	return e.lookup(sessionID)
}

func (e *Engine) lookup(sessionID int64) *SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active[sessionID]
}

// rollupStatistics merges this session's answers into the per-player
// per-category statistics cache.
func (e *Engine) rollupStatistics(ctx context.Context, state *SessionState, now time.Time) error {
	answers, err := e.answers.BySession(ctx, state.SessionID)
	if err != nil {
		return fmt.Errorf("read session answers: %w", err)
	}
	if len(answers) == 0 {
		return nil
	}

	type tally struct {
		correct, wrong, latencySum int
	}
	byCategory := make(map[string]*tally)
	for _, a := range answers {
		t := byCategory[a.Category]
		if t == nil {
			t = &tally{}
			byCategory[a.Category] = t
		}
		if a.Correct {
			t.correct++
		} else {
			t.wrong++
		}
		t.latencySum += a.LatencyMs
	}

	for category, t := range byCategory {
		n := t.correct + t.wrong
		delta := store.StatDelta{
			GamesPlayed:  1,
			Score:        state.Score,
			Correct:      t.correct,
			Wrong:        t.wrong,
			AvgLatencyMs: t.latencySum / n,
		}
		if err := e.stats.Accumulate(ctx, state.Player.ID, category, delta, now); err != nil {
			return fmt.Errorf("accumulate %q: %w", category, err)
		}
	}
	return nil
}

// cryptoSeed draws one 64-bit seed from the OS entropy source.
func cryptoSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
