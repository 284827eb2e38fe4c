package engine

import (
	"time"
)

// DefaultMaxNodes bounds a search when the caller gives no budget at all.
const DefaultMaxNodes = 1_000_000

// Budget bounds one ChooseMove call. Zero fields are unlimited, but a budget with every
// field zero falls back to DefaultMaxNodes.
type Budget struct {
	// MaxNodes stops deepening once this many static evaluations were made. It is only
	// checked between iterations.
	MaxNodes uint64
	MaxDepth int
	// MoveTime is the wall-clock time for this move. It sets Deadline when Deadline is zero.
	MoveTime time.Duration
	// SafetyMargin stops deepening when less than this much time is left before the
	// deadline. Defaults to half of MoveTime.
	SafetyMargin time.Duration
	// Deadline aborts the search in progress cooperatively.
	Deadline time.Time
}

func (b Budget) resolve(start time.Time) Budget {
	if b.MaxNodes == 0 && b.MaxDepth == 0 && b.MoveTime == 0 && b.Deadline.IsZero() {
		b.MaxNodes = DefaultMaxNodes
	}
	if b.MaxDepth <= 0 || b.MaxDepth > MaxPly {
		b.MaxDepth = MaxPly
	}
	if b.MoveTime > 0 && b.Deadline.IsZero() {
		b.Deadline = start.Add(b.MoveTime)
	}
	if b.SafetyMargin == 0 {
		b.SafetyMargin = b.MoveTime / 2
	}
	return b
}

// Engine-side safety knobs for clock play.
const (
	moveOverhead   = 30 * time.Millisecond // reserve for UCI/IO jitter
	minMoveTime    = 5 * time.Millisecond
	maxFrac        = 0.7 // never spend >70% of remaining time
	panicThreshold = time.Second
	panicFrac      = 0.90 // use 90% of inc in panic
)

// AllocateTime decides how long to think given the remaining clock, the increment and
// the material phase (see GamePhase).
func AllocateTime(remaining, increment time.Duration, phase int) time.Duration {
	if remaining <= 0 {
		return minMoveTime
	}
	movesLeft := estimateMovesRemaining(phase)

	var moveTime time.Duration
	if increment > 0 {
		if remaining < panicThreshold {
			// Panic: try to bank a little time
			moveTime = time.Duration(float64(increment) * panicFrac)
		} else {
			moveTime = remaining/time.Duration(movesLeft) + increment
		}
	} else {
		moveTime = remaining / 40
	}

	moveTime = max(moveTime, minMoveTime)
	moveTime = min(moveTime, time.Duration(float64(remaining)*maxFrac), remaining-moveOverhead)
	return max(moveTime, minMoveTime)
}

// ClockBudget builds a time-limited budget from a game clock.
func ClockBudget(b Board, remaining, increment time.Duration) Budget {
	return Budget{MoveTime: AllocateTime(remaining, increment, GamePhase(b))}
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/midgame)
	return (phase*25)/TotalPhase + 20
}
