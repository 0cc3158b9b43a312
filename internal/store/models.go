package store

import "time"

// Tier is a question difficulty tier, easiest first.
type Tier string

const (
	TierApprentice  Tier = "apprentice"
	TierSkilled     Tier = "skilled"
	TierMaster      Tier = "master"
	TierKing        Tier = "king"
	TierGrandmaster Tier = "grandmaster"
)

// Tiers lists all tiers in ascending difficulty.
var Tiers = []Tier{TierApprentice, TierSkilled, TierMaster, TierKing, TierGrandmaster}

// BasePoints is the default point value per tier, used when a question
// does not declare its own.
var BasePoints = map[Tier]int{
	TierApprentice:  10,
	TierSkilled:     20,
	TierMaster:      30,
	TierKing:        40,
	TierGrandmaster: 50,
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := BasePoints[t]
	return ok
}

// Question provenance values.
const (
	// SourceBundled marks questions shipped with the binary. They are
	// replaced wholesale on refresh.
	SourceBundled = "bundled"

	// SourceCurated marks questions added by hand or generated. They
	// survive a refresh.
	SourceCurated = "curated"
)

// Player is one registered player. TotalScore accumulates across all
// finished sessions.
type Player struct {
	ID         int64
	Name       string
	Age        *int
	TierMin    *Tier
	TierMax    *Tier
	Color      string
	TotalScore int
	CreatedAt  time.Time
	LastPlayed *time.Time
}

// Question is one multiple-choice question. WrongAnswers always holds
// exactly three options.
type Question struct {
	ID           int64
	Text         string
	Answer       string
	WrongAnswers []string
	Category     string
	Tier         Tier
	BasePoints   int
	CreatedAt    time.Time
	Flagged      bool
	Source       string
	CorrectCount int
	WrongCount   int
}

// GameSession is one play-through. EndedAt is nil while the session is
// open; Score and QuestionCount are written once at finish.
type GameSession struct {
	ID            int64
	PlayerID      int64
	StartedAt     time.Time
	EndedAt       *time.Time
	Score         int
	QuestionCount int
}

// Answer is one recorded response. The category is denormalized from
// the question so history survives question deletion.
type Answer struct {
	ID         int64
	SessionID  int64
	QuestionID int64
	Given      string
	Correct    bool
	LatencyMs  int
	Category   string
}

// StatRecord is one player's rollup for one category.
type StatRecord struct {
	ID           int64
	PlayerID     int64
	Category     string
	GamesPlayed  int
	TotalScore   int
	CorrectCount int
	WrongCount   int
	AvgLatencyMs int
	UpdatedAt    time.Time
}
