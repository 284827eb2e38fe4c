package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/slices"

	"chess-bot/position"
)

const (
	// memoPlies is how many plies from the root remember their best move between
	// iterations.
	memoPlies = 3
	memoSize  = 1 << 14
)

// child is one ordered move together with the evaluation of the position it leads to
// and that position's legal moves.
type child struct {
	move    position.Move
	score   Score
	replies []position.Move
}

// bestMoveMemo remembers, per shallow ply, the move that last raised alpha in a position.
type bestMoveMemo [memoPlies]*lru.Cache[uint64, position.Move]

func newBestMoveMemo() *bestMoveMemo {
	var memo bestMoveMemo
	for i := range memo {
		c, err := lru.New[uint64, position.Move](memoSize)
		if err != nil {
			panic(err)
		}
		memo[i] = c
	}
	return &memo
}

func (bm *bestMoveMemo) get(ply int, hash uint64) (position.Move, bool) {
	if ply >= memoPlies {
		return position.NullMove, false
	}
	return bm[ply].Get(hash)
}

func (bm *bestMoveMemo) put(ply int, hash uint64, m position.Move) {
	if ply < memoPlies {
		bm[ply].Add(hash, m)
	}
}

// orderMoves applies each move, evaluates the resulting position from the opponent's
// side, undoes it and sorts ascending: the lowest opponent score is the most promising
// move for us. With capturesOnly quiet moves are dropped before they are evaluated.
func (sc *SearchContext) orderMoves(moves []position.Move, ply int, capturesOnly bool) []child {
	children := make([]child, 0, len(moves))
	for _, m := range moves {
		if capturesOnly && !m.IsCapture() {
			continue
		}
		undo := sc.pos.Apply(m)
		score, replies := sc.eval.Evaluate(ply + 1)
		undo()
		sc.stats.Nodes++
		children = append(children, child{move: m, score: score, replies: replies})
	}

	slices.SortStableFunc(children, func(a, b child) bool { return a.score < b.score })

	if !capturesOnly && ply < memoPlies {
		if m, ok := sc.memo.get(ply, sc.pos.Hash()); ok && hoist(children, m) {
			sc.stats.MemoHits++
		}
	}
	return children
}

// hoist moves the child playing m to the front, keeping the order of the others.
func hoist(children []child, m position.Move) bool {
	for i := range children {
		if children[i].move == m {
			c := children[i]
			copy(children[1:i+1], children[:i])
			children[0] = c
			return true
		}
	}
	return false
}
