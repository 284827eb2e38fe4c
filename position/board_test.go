package position_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"

	"chess-bot/position"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustFEN(t testing.TB, fen string) *position.Board {
	t.Helper()
	b, err := position.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

func play(t *testing.T, b *position.Board, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := position.ParseUCIMove(b, s)
		if err != nil {
			t.Fatalf("play %s: %v", s, err)
		}
		b.Apply(m)
	}
}

type snapshot struct {
	FEN      string
	Hash     uint64
	Castling string
	EP       string
	Rule50   int
	Ply      int
	Check    bool
}

func snap(b *position.Board) snapshot {
	return snapshot{
		FEN:      b.FEN(),
		Hash:     b.Hash(),
		Castling: b.CastlingRights().String(),
		EP:       b.EnPassant().String(),
		Rule50:   b.Rule50(),
		Ply:      b.Ply(),
		Check:    b.InCheck(),
	}
}

func uciStrings(moves []position.Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func TestLegalMovesMatchReference(t *testing.T) {
	fens := []string{
		position.FENStartPos,
		kiwipete,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	}
	for _, fen := range fens {
		b := mustFEN(t, fen)
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("reference FEN %q: %v", fen, err)
		}
		game := chess.NewGame(opt)
		want := make([]string, 0)
		for _, m := range game.ValidMoves() {
			want = append(want, chess.UCINotation{}.Encode(game.Position(), m))
		}
		sort.Strings(want)
		if diff := cmp.Diff(want, uciStrings(b.LegalMoves())); diff != "" {
			t.Errorf("%s: legal moves mismatch (-want +got):\n%s", fen, diff)
		}
	}
}

func TestApplyUndoRestoresState(t *testing.T) {
	for _, fen := range []string{position.FENStartPos, kiwipete, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2"} {
		b := mustFEN(t, fen)
		before := snap(b)
		for _, m := range b.LegalMoves() {
			undo := b.Apply(m)
			for _, reply := range b.LegalMoves() {
				undoReply := b.Apply(reply)
				undoReply()
			}
			undo()
			if diff := cmp.Diff(before, snap(b)); diff != "" {
				t.Fatalf("%s: state after %s/undo differs (-want +got):\n%s", fen, m, diff)
			}
		}
	}
}

func TestMoveAnnotations(t *testing.T) {
	b := mustFEN(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	m, err := position.ParseUCIMove(b, "e5d6")
	if err != nil {
		t.Fatal(err)
	}
	if m.Piece != position.Pawn || m.Captured != position.Pawn || !m.IsCapture() {
		t.Fatalf("en passant: got piece %d captured %d", m.Piece, m.Captured)
	}

	b = mustFEN(t, "1n5k/P7/8/8/8/8/8/K7 w - - 0 1")
	got := uciStrings(b.LegalMoves())
	for _, want := range []string{"a7a8q", "a7a8n", "a7b8q", "a7b8r"} {
		idx := sort.SearchStrings(got, want)
		if idx == len(got) || got[idx] != want {
			t.Fatalf("missing promotion %s in %v", want, got)
		}
	}
	m, _ = position.ParseUCIMove(b, "a7b8q")
	if m.Captured != position.Knight || m.Promotion != position.Queen {
		t.Fatalf("a7b8q: got captured %d promotion %d", m.Captured, m.Promotion)
	}
}

func TestCastlingRightsTracking(t *testing.T) {
	tests := []struct {
		move string
		want string
	}{
		{"e1g1", "kq"},
		{"e1c1", "kq"},
		{"e1f1", "kq"},
		{"a1b1", "Kkq"},
		{"h1h8", "Qq"},
		{"a1a8", "Kk"},
	}
	for _, tc := range tests {
		b := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
		m, err := position.ParseUCIMove(b, tc.move)
		if err != nil {
			t.Fatal(err)
		}
		undo := b.Apply(m)
		if got := b.CastlingRights().String(); got != tc.want {
			t.Errorf("%s: castling got %s want %s", tc.move, got, tc.want)
		}
		undo()
		if got := b.CastlingRights().String(); got != "KQkq" {
			t.Errorf("%s: castling after undo got %s want KQkq", tc.move, got)
		}
	}
}

func TestPassTurn(t *testing.T) {
	b := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if _, ok := b.PassTurn(); ok {
		t.Fatalf("pass accepted while in check")
	}

	b = position.StartPosition()
	before := snap(b)
	undo, ok := b.PassTurn()
	if !ok {
		t.Fatalf("pass refused in start position")
	}
	if b.WhiteToMove() {
		t.Fatalf("side to move not flipped")
	}
	if b.Hash() == before.Hash {
		t.Fatalf("hash unchanged during pass")
	}
	if got := len(b.LegalMoves()); got != 20 {
		t.Fatalf("black moves during pass: got %d want 20", got)
	}
	undo()
	if diff := cmp.Diff(before, snap(b)); diff != "" {
		t.Fatalf("pass undo mismatch (-want +got):\n%s", diff)
	}

	// After 1.e4 the en passant square must not leak into the probe.
	play(t, b, "e2e4")
	before = snap(b)
	undo, ok = b.PassTurn()
	if !ok {
		t.Fatalf("pass refused after e4")
	}
	moves := b.LegalMoves()
	if len(moves) != 30 {
		t.Fatalf("white moves during pass: got %d want 30 (%v)", len(moves), uciStrings(moves))
	}
	for _, m := range moves {
		if m.To().String() == "e3" && m.Piece == position.Pawn {
			t.Fatalf("bogus en passant capture %s", m)
		}
	}
	undo()
	if diff := cmp.Diff(before, snap(b)); diff != "" {
		t.Fatalf("pass undo mismatch (-want +got):\n%s", diff)
	}
}

func TestIsDraw(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"fifty moves", "8/8/8/4k3/8/8/4K3/4R3 w - - 100 80", true},
		{"ninety-nine halfmoves", "8/8/8/4k3/8/8/4K3/4R3 w - - 99 80", false},
		{"bare kings", "8/8/8/4k3/8/8/4K3/8 w - - 0 1", true},
		{"knight", "8/8/8/4k3/8/8/4K3/6N1 w - - 0 1", true},
		{"bishops", "8/8/3b4/4k3/8/8/4K3/6B1 w - - 0 1", true},
		{"two knights", "8/8/8/4k3/8/8/4K3/5NN1 w - - 0 1", false},
		{"pawn", "8/8/8/4k3/8/8/4KP2/8 w - - 0 1", false},
		{"start", position.FENStartPos, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustFEN(t, tc.fen).IsDraw(); got != tc.want {
				t.Fatalf("IsDraw got %v want %v", got, tc.want)
			}
		})
	}
}

func TestRepetitionRespectsRoot(t *testing.T) {
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	b := position.StartPosition()
	play(t, b, shuffle...)
	if !b.IsDraw() {
		t.Fatalf("first recurrence after the root should be a draw")
	}

	b = position.StartPosition()
	play(t, b, shuffle...)
	restore := b.MarkRoot()
	play(t, b, "g1f3")
	if b.IsDraw() {
		t.Fatalf("Nf3 recurs once from before the root; not yet a draw")
	}
	play(t, b, shuffle[1:]...)
	if !b.IsDraw() {
		t.Fatalf("third occurrence should be a draw")
	}
	restore()
}

func TestParseErrors(t *testing.T) {
	if _, err := position.FromFEN("not a fen"); !errors.Is(err, position.ErrInvalidFEN) {
		t.Fatalf("FromFEN: got %v want ErrInvalidFEN", err)
	}
	b := position.StartPosition()
	if _, err := position.ParseUCIMove(b, "e2e5"); !errors.Is(err, position.ErrIllegalMove) {
		t.Fatalf("ParseUCIMove: got %v want ErrIllegalMove", err)
	}
	if err := b.ApplyUCIMoves([]string{"e2e4", "e7e5", "g1f3"}); err != nil {
		t.Fatalf("ApplyUCIMoves: %v", err)
	}
	if b.Ply() != 3 || b.WhiteToMove() {
		t.Fatalf("after three moves: ply %d white to move %v", b.Ply(), b.WhiteToMove())
	}
}

func TestFromFENRejectsImpossiblePlacements(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1"},
		{"no black king", "8/8/8/8/8/8/8/4K3 b - - 0 1"},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1"},
		{"side not to move in check", "4k2R/8/8/8/8/8/8/4K3 w - - 0 1"},
		{"white left in check", "4k3/8/8/8/8/8/8/r3K3 b - - 0 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := position.FromFEN(tc.fen); !errors.Is(err, position.ErrInvalidFEN) {
				t.Fatalf("got %v want ErrInvalidFEN", err)
			}
		})
	}

	// The side to move may be in check.
	if _, err := position.FromFEN("4k2R/8/8/8/8/8/8/4K3 b - - 0 1"); err != nil {
		t.Fatalf("black to move in check: %v", err)
	}
}

func TestQueries(t *testing.T) {
	b := position.StartPosition()
	if got := b.PieceCount(); got != 32 {
		t.Fatalf("PieceCount got %d want 32", got)
	}
	if got := b.KingSquare(position.Black).String(); got != "e8" {
		t.Fatalf("black king got %s want e8", got)
	}
	if got := b.Pieces(position.White, position.Pawn); got != 0xFF00 {
		t.Fatalf("white pawns got %#x want 0xff00", got)
	}
	if !b.CastlingRights().Has(position.White) || !b.CastlingRights().Has(position.Black) {
		t.Fatalf("castling rights missing: %s", b.CastlingRights())
	}
}
