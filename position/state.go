package position

import "math/bits"

const fiftyMoveLimit = 100

// State captures the information we need to reason about repetitions and draws.
type State struct {
	Hash   uint64
	Rule50 int
}

// Rule50 returns the halfmove clock of the current position.
func (b *Board) Rule50() int {
	return b.history[len(b.history)-1].Rule50
}

// Ply returns how many moves have been applied since the board was parsed.
func (b *Board) Ply() int { return len(b.history) - 1 }

// MarkRoot records the current position as the search root. Repetitions of positions
// reached after the root count as draws on their first recurrence; older positions need
// to occur twice. The returned closure restores the previous root.
func (b *Board) MarkRoot() func() {
	prev := b.root
	b.root = len(b.history) - 1
	return func() { b.root = prev }
}

// IsDraw reports fifty-move, repetition and insufficient material draws.
func (b *Board) IsDraw() bool {
	curr := b.history[len(b.history)-1]
	if curr.Rule50 >= fiftyMoveLimit {
		return true
	}
	matchCount, firstIdx := b.repetitionInfo(curr.Hash, curr.Rule50)
	if matchCount >= 2 {
		return true
	}
	if matchCount >= 1 && firstIdx >= b.root {
		return true
	}
	return b.insufficientMaterial()
}

func (b *Board) repetitionInfo(hash uint64, rule50 int) (count int, firstIdx int) {
	firstIdx = -1
	if len(b.history) <= 1 {
		return 0, firstIdx
	}
	start := len(b.history) - 1 - rule50
	if start < 0 {
		start = 0
	}
	end := len(b.history) - 2
	for i := start; i <= end; i++ {
		if b.history[i].Hash == hash {
			count++
			if firstIdx == -1 {
				firstIdx = i
			}
		}
	}
	return count, firstIdx
}

// insufficientMaterial: no pawns, rooks or queens and each side has at most one minor.
func (b *Board) insufficientMaterial() bool {
	w, bl := &b.b.White, &b.b.Black
	if w.Pawns|bl.Pawns|w.Rooks|bl.Rooks|w.Queens|bl.Queens != 0 {
		return false
	}
	return bits.OnesCount64(w.All) <= 2 && bits.OnesCount64(bl.All) <= 2
}
