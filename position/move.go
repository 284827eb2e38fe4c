package position

import (
	"github.com/dylhunn/dragontoothmg"
)

// Move is a comparable move value. The piece fields are filled in by the board that
// generated the move and are only used for heuristics.
type Move struct {
	raw       dragontoothmg.Move
	from, to  Square
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
}

// NullMove is the zero Move.
var NullMove Move

// NewMove constructs a move that is not bound to any generated move list. Such moves
// can be compared and printed but cannot be applied to a Board.
func NewMove(from, to Square, piece, captured PieceType) Move {
	return Move{from: from, to: to, Piece: piece, Captured: captured}
}

func (m Move) From() Square { return m.from }
func (m Move) To() Square   { return m.to }

// IsCapture reports whether the move removes an enemy piece (including en passant).
func (m Move) IsCapture() bool { return m.Captured != NoPieceType }

func (m Move) IsNull() bool { return m == NullMove }

// String returns the UCI form of the move (e2e4, e7e8q, 0000).
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.from.String() + m.to.String()
	if m.Promotion != NoPieceType {
		s += string(m.Promotion.Letter())
	}
	return s
}

func fromDragon(p dragontoothmg.Piece) PieceType {
	switch p {
	case dragontoothmg.Pawn:
		return Pawn
	case dragontoothmg.Knight:
		return Knight
	case dragontoothmg.Bishop:
		return Bishop
	case dragontoothmg.Rook:
		return Rook
	case dragontoothmg.Queen:
		return Queen
	case dragontoothmg.King:
		return King
	}
	return NoPieceType
}

// pieceTypeAt reports what piece of one side occupies the square.
func pieceTypeAt(sq Square, bb *dragontoothmg.Bitboards) PieceType {
	bit := sq.Bit()
	switch {
	case bb.Pawns&bit != 0:
		return Pawn
	case bb.Knights&bit != 0:
		return Knight
	case bb.Bishops&bit != 0:
		return Bishop
	case bb.Rooks&bit != 0:
		return Rook
	case bb.Queens&bit != 0:
		return Queen
	case bb.Kings&bit != 0:
		return King
	}
	return NoPieceType
}
