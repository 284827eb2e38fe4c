package position

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrIllegalMove indicates a move that is not legal in the current position.
	ErrIllegalMove = errors.New("illegal move")
)

// FENStartPos is the standard initial position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is a colorless piece kind. The ordering matches the piece value tables.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = [...]byte{'.', 'p', 'n', 'b', 'r', 'q', 'k'}

// Letter returns the lower case FEN letter of the piece type.
func (pt PieceType) Letter() byte {
	if int(pt) >= len(pieceLetters) {
		return '?'
	}
	return pieceLetters[pt]
}

// CastlingRights bit flags
type CastlingRights uint8

const (
	CastlingWhiteK CastlingRights = 1 << iota
	CastlingWhiteQ
	CastlingBlackK
	CastlingBlackQ

	castlingWhite = CastlingWhiteK | CastlingWhiteQ
	castlingBlack = CastlingBlackK | CastlingBlackQ
)

// Has reports whether the side still holds kingside or queenside rights.
func (cr CastlingRights) Has(c Color) bool {
	if c == White {
		return cr&castlingWhite != 0
	}
	return cr&castlingBlack != 0
}

func (cr CastlingRights) String() string {
	if cr == 0 {
		return "-"
	}
	out := make([]byte, 0, 4)
	for _, f := range []struct {
		flag CastlingRights
		ch   byte
	}{{CastlingWhiteK, 'K'}, {CastlingWhiteQ, 'Q'}, {CastlingBlackK, 'k'}, {CastlingBlackQ, 'q'}} {
		if cr&f.flag != 0 {
			out = append(out, f.ch)
		}
	}
	return string(out)
}

func parseCastling(field string) (CastlingRights, error) {
	var cr CastlingRights
	if field == "-" {
		return 0, nil
	}
	for _, ch := range field {
		switch ch {
		case 'K':
			cr |= CastlingWhiteK
		case 'Q':
			cr |= CastlingWhiteQ
		case 'k':
			cr |= CastlingBlackK
		case 'q':
			cr |= CastlingBlackQ
		default:
			return 0, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, field)
		}
	}
	return cr, nil
}

// Square represents a board position (0-63), a1 = 0, h8 = 63.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

// Bit returns the single-bit bitboard of the square.
func (s Square) Bit() uint64 { return uint64(1) << uint(s) }

func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '1' + byte(s.Rank())})
}

// ParseSquare converts algebraic notation ("e4") into a Square.
func ParseSquare(alg string) (Square, error) {
	if alg == "-" {
		return NoSquare, nil
	}
	if len(alg) != 2 {
		return NoSquare, fmt.Errorf("invalid algebraic square %q", alg)
	}
	file, rank := alg[0], alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("invalid algebraic square %q", alg)
	}
	return NewSquare(int(file-'a'), int(rank-'1')), nil
}
