// Package position adapts the dragontoothmg move generator to the board contract the
// search relies on: legal moves, in-place make/undo, a null-move probe, hashing and
// draw detection.
package position

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

// passKey is mixed into the hash while a pass turn is active.
const passKey uint64 = 0x9d39247e33776d41

// Board is a single mutable chess position. Every mutation returns an undo closure that
// must be called in LIFO order.
type Board struct {
	b dragontoothmg.Board

	// Shadow state that dragontoothmg keeps private.
	castling CastlingRights
	ep       Square

	history []State
	root    int
	passes  int
}

// StartPosition returns the standard initial position.
func StartPosition() *Board {
	b, err := FromFEN(FENStartPos)
	if err != nil {
		panic(err)
	}
	return b
}

// FromFEN parses a FEN string into a Board.
func FromFEN(fen string) (*Board, error) {
	fen = strings.TrimSpace(fen)
	if _, err := chess.FEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}
	castling, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	ep, err := ParseSquare(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	rule50 := 0
	if len(fields) > 4 {
		if rule50, err = strconv.Atoi(fields[4]); err != nil || rule50 < 0 {
			return nil, fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
		}
	}

	b := &Board{
		b:        dragontoothmg.ParseFen(fen),
		castling: castling,
		ep:       ep,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	b.history = append(make([]State, 0, 256), State{Hash: b.b.Hash(), Rule50: rule50})
	return b, nil
}

// validate rejects placements the move generator cannot handle: a missing or extra king,
// or a side not to move that is in check.
func (b *Board) validate() error {
	if bits.OnesCount64(b.b.White.Kings) != 1 || bits.OnesCount64(b.b.Black.Kings) != 1 {
		return fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}
	b.b.Wtomove = !b.b.Wtomove
	capturable := b.b.OurKingInCheck()
	b.b.Wtomove = !b.b.Wtomove
	if capturable {
		return fmt.Errorf("%w: the side not to move is in check", ErrInvalidFEN)
	}
	return nil
}

func (b *Board) sides() (us, them *dragontoothmg.Bitboards) {
	if b.b.Wtomove {
		return &b.b.White, &b.b.Black
	}
	return &b.b.Black, &b.b.White
}

// LegalMoves generates the legal moves of the side to move.
func (b *Board) LegalMoves() []Move {
	raw := b.b.GenerateLegalMoves()
	us, them := b.sides()
	moves := make([]Move, len(raw))
	for i := range raw {
		rm := raw[i]
		from, to := Square(rm.From()), Square(rm.To())
		m := Move{
			raw:       rm,
			from:      from,
			to:        to,
			Piece:     pieceTypeAt(from, us),
			Captured:  pieceTypeAt(to, them),
			Promotion: fromDragon(rm.Promote()),
		}
		// A pawn moving diagonally onto an empty square is an en passant capture.
		if m.Piece == Pawn && m.Captured == NoPieceType && from.File() != to.File() {
			m.Captured = Pawn
		}
		moves[i] = m
	}
	return moves
}

// Apply plays a move generated by LegalMoves and returns an undo closure.
func (b *Board) Apply(m Move) func() {
	prevCastling, prevEP := b.castling, b.ep
	rule50 := b.Rule50() + 1
	if m.Piece == Pawn || m.IsCapture() {
		rule50 = 0
	}

	unapply := b.b.Apply(m.raw)

	b.castling &^= castlingLost(m)
	b.ep = NoSquare
	if m.Piece == Pawn && (m.to-m.from == 16 || m.from-m.to == 16) {
		b.ep = (m.from + m.to) / 2
	}
	b.history = append(b.history, State{Hash: b.b.Hash(), Rule50: rule50})

	return func() {
		b.history = b.history[:len(b.history)-1]
		b.castling, b.ep = prevCastling, prevEP
		unapply()
	}
}

func castlingLost(m Move) CastlingRights {
	var lost CastlingRights
	if m.Piece == King {
		if m.from == NewSquare(4, 0) {
			lost |= castlingWhite
		} else if m.from == NewSquare(4, 7) {
			lost |= castlingBlack
		}
	}
	for _, sq := range [2]Square{m.from, m.to} {
		switch sq {
		case 0:
			lost |= CastlingWhiteQ
		case 7:
			lost |= CastlingWhiteK
		case 56:
			lost |= CastlingBlackQ
		case 63:
			lost |= CastlingBlackK
		}
	}
	return lost
}

// PassTurn hands the move to the opponent without moving a piece. It is refused while the
// side to move is in check.
func (b *Board) PassTurn() (func(), bool) {
	if b.b.OurKingInCheck() {
		return nil, false
	}
	saved := b.b
	if b.ep != NoSquare {
		// The stale en passant square would hand the opponent a bogus capture.
		b.b = dragontoothmg.ParseFen(passFEN(b.b.ToFen()))
	} else {
		b.b.Wtomove = !b.b.Wtomove
	}
	b.passes++
	return func() {
		b.passes--
		b.b = saved
	}, true
}

func passFEN(fen string) string {
	fields := strings.Fields(fen)
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	return strings.Join(fields, " ")
}

func (b *Board) InCheck() bool { return b.b.OurKingInCheck() }

// Hash returns the Zobrist key of the position.
func (b *Board) Hash() uint64 {
	if b.passes > 0 {
		return b.b.Hash() ^ passKey
	}
	return b.b.Hash()
}

func (b *Board) WhiteToMove() bool { return b.b.Wtomove }

func (b *Board) SideToMove() Color {
	if b.b.Wtomove {
		return White
	}
	return Black
}

func (b *Board) CastlingRights() CastlingRights { return b.castling }

// EnPassant returns the square a pawn skipped over on the last move, or NoSquare.
func (b *Board) EnPassant() Square { return b.ep }

// Pieces returns the bitboard of one piece type of one side.
func (b *Board) Pieces(c Color, pt PieceType) uint64 {
	bb := &b.b.White
	if c == Black {
		bb = &b.b.Black
	}
	switch pt {
	case Pawn:
		return bb.Pawns
	case Knight:
		return bb.Knights
	case Bishop:
		return bb.Bishops
	case Rook:
		return bb.Rooks
	case Queen:
		return bb.Queens
	case King:
		return bb.Kings
	}
	return bb.All
}

// Occupied returns every occupied square.
func (b *Board) Occupied() uint64 { return b.b.White.All | b.b.Black.All }

// PieceCount returns the number of pieces on the board, kings included.
func (b *Board) PieceCount() int { return bits.OnesCount64(b.Occupied()) }

func (b *Board) KingSquare(c Color) Square {
	k := b.Pieces(c, King)
	if k == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(k))
}

// FEN renders the position.
func (b *Board) FEN() string { return b.b.ToFen() }

// String renders an ASCII diagram, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte('1' + byte(rank))
		sb.WriteString(" ")
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			ch := byte('.')
			if pt := pieceTypeAt(sq, &b.b.White); pt != NoPieceType {
				ch = pt.Letter() - 'a' + 'A'
			} else if pt := pieceTypeAt(sq, &b.b.Black); pt != NoPieceType {
				ch = pt.Letter()
			}
			sb.WriteByte(' ')
			sb.WriteByte(ch)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "fen: %s\nhash: %016x\n", b.FEN(), b.Hash())
	return sb.String()
}

// ParseUCIMove resolves a UCI move string against the legal moves of the position.
func ParseUCIMove(b *Board, s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range b.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NullMove, fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, b.FEN())
}

// ApplyUCIMoves plays a list of UCI moves, keeping the history for repetition checks.
func (b *Board) ApplyUCIMoves(moves []string) error {
	for _, s := range moves {
		m, err := ParseUCIMove(b, s)
		if err != nil {
			return err
		}
		b.Apply(m)
	}
	return nil
}
