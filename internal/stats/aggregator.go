package stats

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"

	"kysymyssota/internal/store"
)

// lastSecondThresholdMs defines a "last-second" answer: one submitted
// with nine or more seconds of the speed-bonus window already gone.
const lastSecondThresholdMs = 9000

// hardestCategoryMinAnswers is the minimum answer count before a
// category qualifies for the hardest-category ranking.
const hardestCategoryMinAnswers = 10

// Aggregator answers analytical queries over historical play. All
// queries are full scans of the authoritative tables; every one returns
// nil (or zero) instead of an error when there is not enough data, so a
// freshly seeded database degrades gracefully.
type Aggregator struct {
	players  store.PlayerRepo
	sessions store.SessionRepo
	answers  store.AnswerRepo
	stats    store.StatRepo
}

// New creates an Aggregator over the given store.
func New(st *store.Store) *Aggregator {
	return &Aggregator{
		players:  st.Players(),
		sessions: st.Sessions(),
		answers:  st.Answers(),
		stats:    st.Statistics(),
	}
}

// PlayerScore pairs a player with a score value.
type PlayerScore struct {
	Player store.Player
	Score  int
}

// PlayerCount pairs a player with a count (games, answers, ...).
type PlayerCount struct {
	Player store.Player
	Count  int
}

// PlayerLatency pairs a player with a latency in milliseconds.
type PlayerLatency struct {
	Player    store.Player
	LatencyMs int
}

// SessionRecord is one finished session with its player.
type SessionRecord struct {
	Session store.GameSession
	Player  *store.Player
}

// CategoryCount pairs a category with an answer count.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryDifficulty summarizes one category's wrong-answer record.
type CategoryDifficulty struct {
	Category     string
	Correct      int
	Wrong        int
	Total        int
	WrongPercent float64
}

// PlayerPercentage is a player's overall answer percentage.
type PlayerPercentage struct {
	Player  store.Player
	Percent float64
	Correct int
	Wrong   int
}

// TopScorer returns the player with the highest cumulative score, or
// nil when no player has scored yet. Ties go to the first record.
func (a *Aggregator) TopScorer(ctx context.Context) (*PlayerScore, error) {
	players, err := a.players.All(ctx)
	if err != nil {
		return nil, err
	}
	var top *PlayerScore
	for _, p := range players {
		if p.TotalScore > 0 && (top == nil || p.TotalScore > top.Score) {
			top = &PlayerScore{Player: p, Score: p.TotalScore}
		}
	}
	return top, nil
}

// TopPlayers returns up to limit players ordered by cumulative score
// descending, ties in natural record order.
func (a *Aggregator) TopPlayers(ctx context.Context, limit int) ([]PlayerScore, error) {
	players, err := a.players.All(ctx)
	if err != nil {
		return nil, err
	}
	scores := make([]PlayerScore, len(players))
	for i, p := range players {
		scores[i] = PlayerScore{Player: p, Score: p.TotalScore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

// BestSession returns the finished session with the highest score,
// breaking ties by fewest questions. Nil when nothing has finished.
func (a *Aggregator) BestSession(ctx context.Context) (*SessionRecord, error) {
	sessions, err := a.sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	var best *store.GameSession
	for i := range sessions {
		s := &sessions[i]
		if s.EndedAt == nil {
			continue
		}
		if best == nil ||
			s.Score > best.Score ||
			(s.Score == best.Score && s.QuestionCount < best.QuestionCount) {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	player, err := a.players.ByID(ctx, best.PlayerID)
	if err != nil {
		return nil, err
	}
	return &SessionRecord{Session: *best, Player: player}, nil
}

// MostAskedCategory returns the category with the most answers.
func (a *Aggregator) MostAskedCategory(ctx context.Context) (*CategoryCount, error) {
	answers, err := a.answers.All(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, ans := range answers {
		counts[ans.Category]++
	}
	var top *CategoryCount
	for _, category := range sortedKeys(counts) {
		if top == nil || counts[category] > top.Count {
			top = &CategoryCount{Category: category, Count: counts[category]}
		}
	}
	return top, nil
}

// LongestCorrectStreak returns the player with the longest run of
// consecutive correct answers across all their play history, ordered by
// (session, answer id).
func (a *Aggregator) LongestCorrectStreak(ctx context.Context) (*PlayerCount, error) {
	return a.longestRun(ctx, true)
}

// LongestWrongStreak is LongestCorrectStreak for incorrect answers.
func (a *Aggregator) LongestWrongStreak(ctx context.Context) (*PlayerCount, error) {
	return a.longestRun(ctx, false)
}

func (a *Aggregator) longestRun(ctx context.Context, wantCorrect bool) (*PlayerCount, error) {
	answers, owner, err := a.answersWithOwners(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(answers, func(i, j int) bool {
		pi, pj := owner[answers[i].SessionID], owner[answers[j].SessionID]
		if pi != pj {
			return pi < pj
		}
		if answers[i].SessionID != answers[j].SessionID {
			return answers[i].SessionID < answers[j].SessionID
		}
		return answers[i].ID < answers[j].ID
	})

	longest := make(map[int64]int)
	current := make(map[int64]int)
	for _, ans := range answers {
		playerID, ok := owner[ans.SessionID]
		if !ok {
			continue
		}
		if ans.Correct == wantCorrect {
			current[playerID]++
			if current[playerID] > longest[playerID] {
				longest[playerID] = current[playerID]
			}
		} else {
			current[playerID] = 0
		}
	}

	return a.topPlayerCount(ctx, longest)
}

// LastSecondAnswers returns the player with the most answers submitted
// at nine seconds of latency or later.
func (a *Aggregator) LastSecondAnswers(ctx context.Context) (*PlayerCount, error) {
	answers, owner, err := a.answersWithOwners(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, ans := range answers {
		playerID, ok := owner[ans.SessionID]
		if !ok {
			continue
		}
		if ans.LatencyMs >= lastSecondThresholdMs {
			counts[playerID]++
		}
	}
	return a.topPlayerCount(ctx, counts)
}

// MostGamesPlayed returns the player with the most finished sessions.
func (a *Aggregator) MostGamesPlayed(ctx context.Context) (*PlayerCount, error) {
	sessions, err := a.sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, s := range sessions {
		if s.EndedAt != nil {
			counts[s.PlayerID]++
		}
	}
	return a.topPlayerCount(ctx, counts)
}

// BestAnswerPercentage returns the player with the highest percentage
// of correct answers among players with at least minGames finished
// games, reading the statistics rollup. minGames defaults to 1.
func (a *Aggregator) BestAnswerPercentage(ctx context.Context, minGames int) (*PlayerPercentage, error) {
	if minGames <= 0 {
		minGames = 1
	}
	records, err := a.stats.All(ctx)
	if err != nil {
		return nil, err
	}

	type tally struct{ games, correct, wrong int }
	byPlayer := make(map[int64]*tally)
	for _, rec := range records {
		t := byPlayer[rec.PlayerID]
		if t == nil {
			t = &tally{}
			byPlayer[rec.PlayerID] = t
		}
		if rec.GamesPlayed > t.games {
			t.games = rec.GamesPlayed
		}
		t.correct += rec.CorrectCount
		t.wrong += rec.WrongCount
	}

	var (
		best   *PlayerPercentage
		bestID int64
	)
	for _, playerID := range sortedKeys(byPlayer) {
		t := byPlayer[playerID]
		total := t.correct + t.wrong
		if t.games < minGames || total == 0 {
			continue
		}
		percent := float64(t.correct) / float64(total) * 100
		if best == nil || percent > best.Percent {
			best = &PlayerPercentage{Percent: percent, Correct: t.correct, Wrong: t.wrong}
			bestID = playerID
		}
	}
	if best == nil {
		return nil, nil
	}
	player, err := a.players.ByID(ctx, bestID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, nil
	}
	best.Player = *player
	return best, nil
}

// MostCorrectAnswers returns the player with the most correct answers
// according to the statistics rollup.
func (a *Aggregator) MostCorrectAnswers(ctx context.Context) (*PlayerCount, error) {
	return a.statCount(ctx, func(rec store.StatRecord) int { return rec.CorrectCount })
}

// MostWrongAnswers returns the player with the most wrong answers
// according to the statistics rollup.
func (a *Aggregator) MostWrongAnswers(ctx context.Context) (*PlayerCount, error) {
	return a.statCount(ctx, func(rec store.StatRecord) int { return rec.WrongCount })
}

func (a *Aggregator) statCount(ctx context.Context, pick func(store.StatRecord) int) (*PlayerCount, error) {
	records, err := a.stats.All(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, rec := range records {
		counts[rec.PlayerID] += pick(rec)
	}
	return a.topPlayerCount(ctx, counts)
}

// HardestCategory returns the category with the most wrong answers
// among categories with at least ten answers total.
func (a *Aggregator) HardestCategory(ctx context.Context) (*CategoryDifficulty, error) {
	answers, err := a.answers.All(ctx)
	if err != nil {
		return nil, err
	}

	type tally struct{ correct, wrong int }
	byCategory := make(map[string]*tally)
	for _, ans := range answers {
		t := byCategory[ans.Category]
		if t == nil {
			t = &tally{}
			byCategory[ans.Category] = t
		}
		if ans.Correct {
			t.correct++
		} else {
			t.wrong++
		}
	}

	var hardest *CategoryDifficulty
	for _, category := range sortedKeys(byCategory) {
		t := byCategory[category]
		total := t.correct + t.wrong
		if total < hardestCategoryMinAnswers {
			continue
		}
		if hardest == nil || t.wrong > hardest.Wrong {
			hardest = &CategoryDifficulty{
				Category:     category,
				Correct:      t.correct,
				Wrong:        t.wrong,
				Total:        total,
				WrongPercent: float64(t.wrong) / float64(total) * 100,
			}
		}
	}
	return hardest, nil
}

// FastestAnswer returns the single lowest-latency answer on record.
func (a *Aggregator) FastestAnswer(ctx context.Context) (*PlayerLatency, error) {
	answers, owner, err := a.answersWithOwners(ctx)
	if err != nil {
		return nil, err
	}
	var (
		best     *store.Answer
		playerID int64
	)
	for i := range answers {
		ans := &answers[i]
		pid, ok := owner[ans.SessionID]
		if !ok {
			continue
		}
		if best == nil || ans.LatencyMs < best.LatencyMs {
			best = ans
			playerID = pid
		}
	}
	if best == nil {
		return nil, nil
	}
	player, err := a.players.ByID(ctx, playerID)
	if err != nil || player == nil {
		return nil, err
	}
	return &PlayerLatency{Player: *player, LatencyMs: best.LatencyMs}, nil
}

// FastestAverage returns the player with the lowest average answer
// latency.
func (a *Aggregator) FastestAverage(ctx context.Context) (*PlayerLatency, error) {
	answers, owner, err := a.answersWithOwners(ctx)
	if err != nil {
		return nil, err
	}

	type tally struct{ sum, count int }
	byPlayer := make(map[int64]*tally)
	for _, ans := range answers {
		playerID, ok := owner[ans.SessionID]
		if !ok {
			continue
		}
		t := byPlayer[playerID]
		if t == nil {
			t = &tally{}
			byPlayer[playerID] = t
		}
		t.sum += ans.LatencyMs
		t.count++
	}

	var (
		best   *PlayerLatency
		bestID int64
	)
	for _, playerID := range sortedKeys(byPlayer) {
		t := byPlayer[playerID]
		avg := t.sum / t.count
		if best == nil || avg < best.LatencyMs {
			best = &PlayerLatency{LatencyMs: avg}
			bestID = playerID
		}
	}
	if best == nil {
		return nil, nil
	}
	player, err := a.players.ByID(ctx, bestID)
	if err != nil || player == nil {
		return nil, err
	}
	best.Player = *player
	return best, nil
}

// TotalScore returns the sum of all players' cumulative scores.
func (a *Aggregator) TotalScore(ctx context.Context) (int, error) {
	players, err := a.players.All(ctx)
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, p := range players {
		sum += p.TotalScore
	}
	return sum, nil
}

// PlayerStatistics returns the rollup rows for the named player, or nil
// when the player is unknown.
func (a *Aggregator) PlayerStatistics(ctx context.Context, name string) ([]store.StatRecord, error) {
	player, err := a.players.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, nil
	}
	return a.stats.ByPlayer(ctx, player.ID)
}

// Overview combines all aggregate queries into one snapshot. Missing
// data leaves the matching field nil.
type Overview struct {
	TopScorer            *PlayerScore
	BestSession          *SessionRecord
	MostAskedCategory    *CategoryCount
	LongestCorrectStreak *PlayerCount
	LongestWrongStreak   *PlayerCount
	LastSecondAnswers    *PlayerCount
	MostGamesPlayed      *PlayerCount
	BestAnswerPercentage *PlayerPercentage
	MostCorrectAnswers   *PlayerCount
	MostWrongAnswers     *PlayerCount
	HardestCategory      *CategoryDifficulty
	FastestAnswer        *PlayerLatency
	FastestAverage       *PlayerLatency
	TotalScore           int
}

// BuildOverview runs every query sequentially and collects the results.
func (a *Aggregator) BuildOverview(ctx context.Context) (*Overview, error) {
	o := &Overview{}
	var err error
	if o.TopScorer, err = a.TopScorer(ctx); err != nil {
		return nil, fmt.Errorf("top scorer: %w", err)
	}
	if o.BestSession, err = a.BestSession(ctx); err != nil {
		return nil, fmt.Errorf("best session: %w", err)
	}
	if o.MostAskedCategory, err = a.MostAskedCategory(ctx); err != nil {
		return nil, fmt.Errorf("most asked category: %w", err)
	}
	if o.LongestCorrectStreak, err = a.LongestCorrectStreak(ctx); err != nil {
		return nil, fmt.Errorf("longest correct streak: %w", err)
	}
	if o.LongestWrongStreak, err = a.LongestWrongStreak(ctx); err != nil {
		return nil, fmt.Errorf("longest wrong streak: %w", err)
	}
	if o.LastSecondAnswers, err = a.LastSecondAnswers(ctx); err != nil {
		return nil, fmt.Errorf("last-second answers: %w", err)
	}
	if o.MostGamesPlayed, err = a.MostGamesPlayed(ctx); err != nil {
		return nil, fmt.Errorf("most games played: %w", err)
	}
	if o.BestAnswerPercentage, err = a.BestAnswerPercentage(ctx, 1); err != nil {
		return nil, fmt.Errorf("best answer percentage: %w", err)
	}
	if o.MostCorrectAnswers, err = a.MostCorrectAnswers(ctx); err != nil {
		return nil, fmt.Errorf("most correct answers: %w", err)
	}
	if o.MostWrongAnswers, err = a.MostWrongAnswers(ctx); err != nil {
		return nil, fmt.Errorf("most wrong answers: %w", err)
	}
	if o.HardestCategory, err = a.HardestCategory(ctx); err != nil {
		return nil, fmt.Errorf("hardest category: %w", err)
	}
	if o.FastestAnswer, err = a.FastestAnswer(ctx); err != nil {
		return nil, fmt.Errorf("fastest answer: %w", err)
	}
	if o.FastestAverage, err = a.FastestAverage(ctx); err != nil {
		return nil, fmt.Errorf("fastest average: %w", err)
	}
	if o.TotalScore, err = a.TotalScore(ctx); err != nil {
		return nil, fmt.Errorf("total score: %w", err)
	}
	return o, nil
}

// answersWithOwners loads all answers plus the session-to-player map
// needed to group them by player; answer records themselves carry no
// player id.
func (a *Aggregator) answersWithOwners(ctx context.Context) ([]store.Answer, map[int64]int64, error) {
	answers, err := a.answers.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := a.sessions.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	owner := make(map[int64]int64, len(sessions))
	for _, s := range sessions {
		owner[s.ID] = s.PlayerID
	}
	return answers, owner, nil
}

// topPlayerCount resolves the player with the strictly highest count.
// Iteration over ascending player ids keeps ties deterministic: the
// first (lowest-id) player wins.
func (a *Aggregator) topPlayerCount(ctx context.Context, counts map[int64]int) (*PlayerCount, error) {
	var (
		topID  int64
		topVal int
	)
	for _, playerID := range sortedKeys(counts) {
		if counts[playerID] > topVal {
			topVal = counts[playerID]
			topID = playerID
		}
	}
	if topVal == 0 {
		return nil, nil
	}
	player, err := a.players.ByID(ctx, topID)
	if err != nil || player == nil {
		return nil, err
	}
	return &PlayerCount{Player: *player, Count: topVal}, nil
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
