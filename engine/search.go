package engine

import (
	"context"
	"time"

	"chess-bot/position"
)

// DefaultQuiescenceSlack is how many captures deep quiescence follows an exchange.
const DefaultQuiescenceSlack = 5

// stopCheckMask sets how often (in visits) the search polls its context and deadline.
const stopCheckMask = 4095

// SearchContext carries everything one search shares across its recursion: the single
// mutable position, the evaluator, the counters and the cancellation state.
type SearchContext struct {
	ctx      context.Context
	pos      Position
	eval     Evaluator
	deadline time.Time

	rootDepth int
	slack     int
	memo      *bestMoveMemo

	stats   Stats
	visits  uint64
	aborted bool
}

// NewSearchContext prepares a search over pos. A zero deadline means no time limit.
func NewSearchContext(ctx context.Context, pos Position, eval Evaluator, deadline time.Time, slack int) *SearchContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if slack <= 0 {
		slack = DefaultQuiescenceSlack
	}
	return &SearchContext{
		ctx:      ctx,
		pos:      pos,
		eval:     eval,
		deadline: deadline,
		slack:    slack,
		memo:     newBestMoveMemo(),
	}
}

func (sc *SearchContext) Stats() Stats { return sc.stats }

// Aborted reports whether cancellation cut the last search short. Its result must be
// discarded.
func (sc *SearchContext) Aborted() bool { return sc.aborted }

func (sc *SearchContext) shouldStop() bool {
	if sc.aborted {
		return true
	}
	sc.visits++
	if sc.visits&stopCheckMask != 0 {
		return false
	}
	if sc.ctx.Err() != nil || (!sc.deadline.IsZero() && time.Now().After(sc.deadline)) {
		sc.aborted = true
	}
	return sc.aborted
}

// maxExtensions is how many capture or check extensions one line from the root may
// take. A position with a single legal reply is extended without spending any.
func (sc *SearchContext) maxExtensions() int {
	return sc.rootDepth / 2
}

// Search runs one fixed-depth search from the root. static is the root's own score and
// moves its legal moves.
func (sc *SearchContext) Search(depth int, static Score, moves []position.Move) (Score, PVLine) {
	sc.rootDepth = depth
	sc.aborted = false
	return sc.negamax(-Infinity, Infinity, depth, 0, sc.maxExtensions(), static, moves)
}

// negamax is a fail-hard alpha-beta search. static is the evaluation of the current node
// and moves its legal moves, both produced when the parent ordered its children. extLeft
// is what remains of the line's extension allowance.
func (sc *SearchContext) negamax(alpha, beta Score, depthLeft, ply, extLeft int, static Score, moves []position.Move) (Score, PVLine) {
	sc.stats.SearchNodes++

	if len(moves) == 0 || static == DrawScore {
		return static, nil
	}
	if depthLeft <= 0 || ply >= MaxPly {
		return sc.quiesce(alpha, beta, sc.slack, ply, static, moves), nil
	}
	if sc.shouldStop() {
		return alpha, nil
	}

	hash := sc.pos.Hash()
	var line PVLine

	for _, c := range sc.orderMoves(moves, ply, false) {
		undo := sc.pos.Apply(c.move)

		childDepth, childExt := depthLeft-1, extLeft
		switch {
		case len(c.replies) == 1:
			childDepth = depthLeft
			sc.stats.Extensions++
		case extLeft > 0 && (c.move.IsCapture() || sc.pos.InCheck()):
			childDepth, childExt = depthLeft, extLeft-1
			sc.stats.Extensions++
		}
		score, childLine := sc.negamax(-beta, -alpha, childDepth, ply+1, childExt, c.score, c.replies)
		score = -score

		undo()

		if sc.aborted {
			return alpha, nil
		}
		if score >= beta {
			sc.stats.BetaCutoffs++
			sc.memo.put(ply, hash, c.move)
			return beta, line.Update(c.move, childLine)
		}
		if score > alpha {
			alpha = score
			line = line.Update(c.move, childLine)
			sc.memo.put(ply, hash, c.move)
		}
	}
	return alpha, line
}

// quiesce resolves captures below the horizon. The stand-pat score is always available
// as the alternative to capturing; slack bounds how many captures deep it goes.
func (sc *SearchContext) quiesce(alpha, beta Score, slack, ply int, standPat Score, moves []position.Move) Score {
	sc.stats.QuiescenceNodes++

	if len(moves) == 0 || standPat == DrawScore || slack <= 0 || ply >= MaxPly {
		return standPat
	}
	if standPat >= beta {
		sc.stats.QStandPatCutoffs++
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if sc.shouldStop() {
		return alpha
	}

	for _, c := range sc.orderMoves(moves, ply, true) {
		undo := sc.pos.Apply(c.move)
		score := -sc.quiesce(-beta, -alpha, slack-1, ply+1, c.score, c.replies)
		undo()

		if sc.aborted {
			return alpha
		}
		if score >= beta {
			sc.stats.QBetaCutoffs++
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
