package game

import (
	"math"
	"time"

	"kysymyssota/internal/store"
)

const (
	// speedBonusMax is awarded for instant answers, falling by one
	// point per whole second of latency.
	speedBonusMax = 10

	// streakTarget consecutive correct answers pay streakBonusPoints
	// and reset the counter.
	streakTarget      = 3
	streakBonusPoints = 50

	// The age modifier applies only on grandmaster questions: young
	// players get a boost, older players a handicap. Intentional
	// domain policy, not symmetric across tiers.
	ageYoungLimit      = 12
	ageOldLimit        = 50
	ageYoungMultiplier = 1.2
	ageOldMultiplier   = 0.8
)

// Breakdown itemizes the points awarded for one correct answer.
type Breakdown struct {
	Base          int
	SpeedBonus    int
	AgeMultiplier float64
	StreakAfter   int
	StreakBonus   int
}

// basePoints returns the question's declared base value when positive,
// falling back to the per-tier table otherwise.
func basePoints(q *store.Question) int {
	if q.BasePoints > 0 {
		return q.BasePoints
	}
	if pts, ok := store.BasePoints[q.Tier]; ok {
		return pts
	}
	return store.BasePoints[store.TierApprentice]
}

// speedBonus maps response latency to a 0-10 bonus: full at <=0s,
// minus one per whole second, zero at >=10s.
func speedBonus(latency time.Duration) int {
	secs := int(latency / time.Second)
	if secs < 0 {
		secs = 0
	}
	bonus := speedBonusMax - secs
	if bonus < 0 {
		return 0
	}
	return bonus
}

// ageMultiplier returns the grandmaster-only age modifier, 1.0 when it
// does not apply.
func ageMultiplier(tier store.Tier, age *int) float64 {
	if tier != store.TierGrandmaster || age == nil {
		return 1.0
	}
	switch {
	case *age < ageYoungLimit:
		return ageYoungMultiplier
	case *age > ageOldLimit:
		return ageOldMultiplier
	default:
		return 1.0
	}
}

// scoreCorrect computes the points for a correct answer and the
// resulting streak counter. Order matters: base plus speed bonus, then
// the age multiplier, then the flat streak bonus on top.
func scoreCorrect(q *store.Question, player *store.Player, latency time.Duration, streakBefore int) (int, Breakdown) {
	bd := Breakdown{
		Base:          basePoints(q),
		SpeedBonus:    speedBonus(latency),
		AgeMultiplier: ageMultiplier(q.Tier, player.Age),
	}

	points := bd.Base + bd.SpeedBonus
	if bd.AgeMultiplier != 1.0 {
		points = int(math.Round(float64(points) * bd.AgeMultiplier))
	}

	streak := streakBefore + 1
	if streak >= streakTarget {
		bd.StreakBonus = streakBonusPoints
		points += streakBonusPoints
		streak = 0
	}
	bd.StreakAfter = streak

	return points, bd
}
