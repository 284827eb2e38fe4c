package engine

import (
	"chess-bot/position"
)

// Position is the minimal state the search core mutates: one instance, applied and
// undone in strict LIFO order.
type Position interface {
	LegalMoves() []position.Move
	// Apply plays the move in place and returns the closure that takes it back.
	Apply(m position.Move) func()
	InCheck() bool
	Hash() uint64
}

// Board is the full adapter the driver and the static evaluator need.
type Board interface {
	Position
	IsDraw() bool
	// PassTurn hands the move to the opponent. It is refused while in check.
	PassTurn() (undo func(), ok bool)
	Pieces(c position.Color, pt position.PieceType) uint64
	CastlingRights() position.CastlingRights
	WhiteToMove() bool
	KingSquare(c position.Color) position.Square
	PieceCount() int
	// MarkRoot records the current position as the search root for repetition checks.
	MarkRoot() func()
}

// Evaluator scores the position its board currently holds. It returns the legal moves it
// generated so the search does not have to generate them again.
type Evaluator interface {
	Evaluate(ply int) (Score, []position.Move)
}

var _ Board = (*position.Board)(nil)
