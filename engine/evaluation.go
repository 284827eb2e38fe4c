package engine

import (
	"fmt"
	"math/bits"
	"strings"

	"chess-bot/position"
)

// Center squares d4, e4, d5, e5 for knight/bishop move targets.
var centerSquares uint64 = 0x0000001818000000

// Castled king squares c1/g1 and their mirror c8/g8.
var whiteKingSafeSquares uint64 = 0x0000000000000044
var blackKingSafeSquares uint64 = 0x4400000000000000

// Pawn center control: d/e pawns on their third and fourth ranks count double, c/f pawns
// single. Indexed by color, then [single, double].
var pawnCenterMasks = [2][2]uint64{
	{0x0000000024240000, 0x0000000018180000},
	{0x0000242400000000, 0x0000181800000000},
}

// Game phase weights
const (
	PawnPhase   = 0
	KnightPhase = 1
	BishopPhase = 1
	RookPhase   = 2
	QueenPhase  = 4
	TotalPhase  = PawnPhase*16 + KnightPhase*4 + BishopPhase*4 + RookPhase*4 + QueenPhase*2
)

// Weights parameterize the static evaluation. All values are centipawns.
type Weights struct {
	// Pieces is indexed by position.PieceType. The king carries MateValue so it cancels
	// out instead of contributing through counting.
	Pieces [7]Score
	// PawnPush is indexed by the pawn's rank relative to its own side.
	PawnPush [8]Score
	// Mobility scales the legal-move differential. Moves of MobilityExclude are ignored.
	Mobility        Score
	MobilityExclude position.PieceType
	// Center scales knight/bishop moves onto the center plus pawn center control.
	Center     Score
	PawnCenter Score
	Castling   Score
	KingSafety Score
	// InCheck is charged to the mover when the pass-turn probe is refused.
	InCheck Score
	// EndgamePieces is the piece count below which kings are rewarded for centralization.
	EndgamePieces int
}

// DefaultWeights returns the stock evaluation weights.
func DefaultWeights() Weights {
	return Weights{
		Pieces:          [7]Score{0, PawnValue, 280, 320, 460, 910, MateValue},
		PawnPush:        [8]Score{0, 1, 3, 10, 20, 30, 50, 0},
		Mobility:        2,
		MobilityExclude: position.Queen,
		Center:          8,
		PawnCenter:      3,
		Castling:        50,
		KingSafety:      100,
		InCheck:         20,
		EndgamePieces:   5,
	}
}

// Breakdown itemizes one evaluation. Terms are from white's point of view; Total is from
// the mover's.
type Breakdown struct {
	Material      Score
	PawnPush      Score
	Mobility      Score
	Center        Score
	PawnCenter    Score
	Castling      Score
	KingSafety    Score
	KingCentering Score
	InCheck       Score
	White         Score
	Total         Score
}

func (bd Breakdown) String() string {
	var sb strings.Builder
	row := func(name string, v Score) { fmt.Fprintf(&sb, "%-15s %7d\n", name, v) }
	row("material", bd.Material)
	row("pawn push", bd.PawnPush)
	row("mobility", bd.Mobility)
	row("center", bd.Center)
	row("pawn center", bd.PawnCenter)
	row("castling", bd.Castling)
	row("king safety", bd.KingSafety)
	row("king centering", bd.KingCentering)
	row("in check", bd.InCheck)
	row("white", bd.White)
	row("side to move", bd.Total)
	return sb.String()
}

// StaticEvaluator scores the position held by its board. It is bound to one board and is
// not safe for concurrent use.
type StaticEvaluator struct {
	board Board
	cache *EvalCache
	w     Weights
}

// NewStaticEvaluator binds an evaluator to a board. cache may be nil.
func NewStaticEvaluator(b Board, cache *EvalCache, w Weights) *StaticEvaluator {
	return &StaticEvaluator{board: b, cache: cache, w: w}
}

// Evaluate scores the current position for the side to move and returns its legal moves.
// Checkmate scores -(MateValue - ply), draws score exactly 0, and every other position
// scores non-zero.
func (e *StaticEvaluator) Evaluate(ply int) (Score, []position.Move) {
	b := e.board
	moves := b.LegalMoves()
	if len(moves) == 0 {
		if b.InCheck() {
			return -(MateValue - Score(ply)), moves
		}
		return DrawScore, moves
	}
	if b.IsDraw() {
		return DrawScore, moves
	}

	var hash uint64
	if e.cache != nil {
		hash = b.Hash()
		if s, ok := e.cache.Probe(hash); ok {
			return s, moves
		}
	}
	s := e.breakdown(moves).Total
	if e.cache != nil {
		e.cache.Store(hash, s)
	}
	return s, moves
}

// Explain itemizes the evaluation of a non-terminal position. It bypasses the cache.
func (e *StaticEvaluator) Explain() Breakdown {
	return e.breakdown(e.board.LegalMoves())
}

func (e *StaticEvaluator) breakdown(moves []position.Move) (bd Breakdown) {
	b, w := e.board, &e.w
	factor := Score(-1)
	if b.WhiteToMove() {
		factor = 1
	}

	for pt := position.Pawn; pt <= position.King; pt++ {
		diff := bits.OnesCount64(b.Pieces(position.White, pt)) - bits.OnesCount64(b.Pieces(position.Black, pt))
		bd.Material += Score(diff) * w.Pieces[pt]
	}

	for wp := b.Pieces(position.White, position.Pawn); wp != 0; wp &= wp - 1 {
		bd.PawnPush += w.PawnPush[bits.TrailingZeros64(wp)>>3]
	}
	for bp := b.Pieces(position.Black, position.Pawn); bp != 0; bp &= bp - 1 {
		bd.PawnPush -= w.PawnPush[7-bits.TrailingZeros64(bp)>>3]
	}

	if undo, ok := b.PassTurn(); ok {
		opponent := b.LegalMoves()
		undo()
		mobility := e.mobility(moves) - e.mobility(opponent)
		bd.Mobility = Score(mobility) * factor * w.Mobility
		center := centerMoves(moves) - centerMoves(opponent)
		bd.Center = Score(center) * factor * w.Center
	} else {
		bd.InCheck = -w.InCheck * factor
	}

	wp, bp := b.Pieces(position.White, position.Pawn), b.Pieces(position.Black, position.Pawn)
	pawnCenter := 2*bits.OnesCount64(wp&pawnCenterMasks[position.White][1]) +
		bits.OnesCount64(wp&pawnCenterMasks[position.White][0]) -
		2*bits.OnesCount64(bp&pawnCenterMasks[position.Black][1]) -
		bits.OnesCount64(bp&pawnCenterMasks[position.Black][0])
	bd.PawnCenter = Score(pawnCenter) * w.PawnCenter * w.Center

	cr := b.CastlingRights()
	if cr.Has(position.White) {
		bd.Castling += w.Castling
	}
	if cr.Has(position.Black) {
		bd.Castling -= w.Castling
	}

	if b.Pieces(position.White, position.King)&whiteKingSafeSquares != 0 {
		bd.KingSafety += w.KingSafety
	}
	if b.Pieces(position.Black, position.King)&blackKingSafeSquares != 0 {
		bd.KingSafety -= w.KingSafety
	}

	if b.PieceCount() < w.EndgamePieces {
		bd.KingCentering = Score(edgeDistance(b.KingSquare(position.White)) - edgeDistance(b.KingSquare(position.Black)))
	}

	bd.White = bd.Material + bd.PawnPush + bd.Mobility + bd.Center + bd.PawnCenter +
		bd.Castling + bd.KingSafety + bd.KingCentering + bd.InCheck
	bd.Total = bd.White * factor
	// 0 is reserved for draws.
	if bd.Total == 0 {
		bd.Total = 1
	}
	return bd
}

func (e *StaticEvaluator) mobility(moves []position.Move) int {
	n := 0
	for _, m := range moves {
		if m.Piece != e.w.MobilityExclude {
			n++
		}
	}
	return n
}

func centerMoves(moves []position.Move) int {
	n := 0
	for _, m := range moves {
		if (m.Piece == position.Knight || m.Piece == position.Bishop) && centerSquares&m.To().Bit() != 0 {
			n++
		}
	}
	return n
}

// edgeDistance is the number of squares between sq and the nearest board edge.
func edgeDistance(sq position.Square) int {
	if sq == position.NoSquare {
		return 0
	}
	r, f := sq.Rank(), sq.File()
	return min(min(r, 7-r), min(f, 7-f))
}

// GamePhase returns the non-pawn material phase, TotalPhase in the opening and 0 with
// bare kings and pawns.
func GamePhase(b Board) (phase int) {
	count := func(pt position.PieceType) int {
		return bits.OnesCount64(b.Pieces(position.White, pt) | b.Pieces(position.Black, pt))
	}
	phase += count(position.Knight) * KnightPhase
	phase += count(position.Bishop) * BishopPhase
	phase += count(position.Rook) * RookPhase
	phase += count(position.Queen) * QueenPhase
	return min(phase, TotalPhase)
}
