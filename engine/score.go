package engine

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Score is a centipawn value from the point of view of the side to move.
type Score int32

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	PawnValue Score = 100
	MateValue Score = PawnValue * 1000
	Infinity  Score = MateValue * 100
	DrawScore Score = 0

	// MateSlack is how close to MateValue a score must be to count as a forced mate
	// when deciding whether to keep deepening.
	MateSlack Score = 10

	// MaxPly bounds recursion regardless of extensions.
	MaxPly = 96
)

// IsMateScore reports whether the score encodes a forced mate for either side.
func IsMateScore(s Score) bool {
	return abs(s) > MateValue-MaxPly && abs(s) <= MateValue
}

// MateDistance returns the distance in plies to the mate encoded in s.
func MateDistance(s Score) int {
	return int(MateValue - abs(s))
}

// FormatScore renders a score the way UCI expects it ("cp 31" or "mate -2").
func FormatScore(s Score) string {
	if !IsMateScore(s) {
		return fmt.Sprintf("cp %d", s)
	}
	mateInN := (MateDistance(s) + 1) / 2
	if s < 0 {
		return fmt.Sprintf("mate %d", -mateInN)
	}
	return fmt.Sprintf("mate %d", mateInN)
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
