package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/exp/slices"

	"chess-bot/config"
	"chess-bot/engine"
	"chess-bot/position"
)

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		CacheEntries:    1 << 12,
		QuiescenceSlack: engine.DefaultQuiescenceSlack,
		UseBook:         true,
		MaxDepth:        2,
	}
}

func runUCI(t *testing.T, script ...string) []string {
	t.Helper()
	return runUCIWith(t, testConfig(), script...)
}

func runUCIWith(t *testing.T, cfg config.EngineConfig, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	uciLoop(strings.NewReader(strings.Join(script, "\n")+"\n"), &out, cfg)
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func bestMove(t *testing.T, lines []string) string {
	t.Helper()
	var best []string
	for _, l := range lines {
		if strings.HasPrefix(l, "bestmove ") {
			best = append(best, strings.TrimPrefix(l, "bestmove "))
		}
	}
	if len(best) != 1 {
		t.Fatalf("expected exactly one bestmove, got %v in\n%s", best, strings.Join(lines, "\n"))
	}
	return best[0]
}

func TestUCISession(t *testing.T) {
	lines := runUCI(t,
		"uci",
		"isready",
		"setoption name OwnBook value false",
		"ucinewgame",
		"position startpos moves e2e4 e7e5",
		"go depth 2",
	)
	for _, want := range []string{"uciok", "readyok"} {
		if !slices.Contains(lines, want) {
			t.Fatalf("missing %q in\n%s", want, strings.Join(lines, "\n"))
		}
	}

	var depths []string
	for _, l := range lines {
		if strings.HasPrefix(l, "info depth ") {
			depths = append(depths, strings.Fields(l)[2])
		}
	}
	if !slices.Equal(depths, []string{"1", "2"}) {
		t.Fatalf("got info depths %v want [1 2]", depths)
	}

	b := position.StartPosition()
	if err := b.ApplyUCIMoves([]string{"e2e4", "e7e5"}); err != nil {
		t.Fatal(err)
	}
	if _, err := position.ParseUCIMove(b, bestMove(t, lines)); err != nil {
		t.Fatalf("bestmove is not legal: %v", err)
	}
}

func TestUCIBookMove(t *testing.T) {
	lines := runUCI(t, "position startpos", "go wtime 60000 btime 60000")
	if got := bestMove(t, lines); got != "e2e4" {
		t.Fatalf("got %s want the book move e2e4", got)
	}
}

func TestUCIFindsMate(t *testing.T) {
	lines := runUCI(t,
		"position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"go depth 3",
	)
	if got := bestMove(t, lines); got != "a1a8" {
		t.Fatalf("got %s want a1a8", got)
	}
	if !strings.Contains(strings.Join(lines, "\n"), "score mate 1 ") {
		t.Fatalf("no mate score reported in\n%s", strings.Join(lines, "\n"))
	}
}

func TestUCIStopInfinite(t *testing.T) {
	lines := runUCI(t,
		"setoption name OwnBook value false",
		"position fen r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"go infinite",
		"stop",
		"quit",
	)
	bestMove(t, lines)
}

func TestUCIDiagnostics(t *testing.T) {
	lines := runUCI(t,
		"position startpos moves d2d4",
		"d",
		"eval",
		"setoption name Hash value 0",
		"frobnicate",
	)
	out := strings.Join(lines, "\n")
	for _, want := range []string{
		"fen: rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq",
		"info string material",
		"info string Invalid Hash value 0",
		"info string Unknown command: frobnicate",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestUCIDebugDumpsStats(t *testing.T) {
	lines := runUCI(t,
		"debug on",
		"position fen r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"go depth 1",
	)
	if !slices.Contains(lines, "info string Search statistics:") {
		t.Fatalf("no statistics in\n%s", strings.Join(lines, "\n"))
	}
	bestMove(t, lines)
}

func TestUCIRejectsImpossiblePosition(t *testing.T) {
	lines := runUCI(t,
		"setoption name OwnBook value false",
		"position fen 4k3/8/8/8/8/8/8/8 w - - 0 1",
		"go depth 1",
	)
	out := strings.Join(lines, "\n")
	if !strings.Contains(out, "info string Invalid fen position") {
		t.Fatalf("impossible position was accepted:\n%s", out)
	}
	// The search runs on the previous position, the initial one.
	if _, err := position.ParseUCIMove(position.StartPosition(), bestMove(t, lines)); err != nil {
		t.Fatalf("bestmove is not legal from the start: %v", err)
	}
}

func TestUCIHashFollowsConfiguredCache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheEntries = engine.CacheEntriesForMB(32)
	lines := runUCIWith(t, cfg,
		"uci",
		"debug on",
		"position fen r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"go depth 1",
	)
	out := strings.Join(lines, "\n")
	for _, want := range []string{
		"option name Hash type spin default 32 min 1",
		fmt.Sprintf("of %d entries", cfg.CacheEntries),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestUCIInfiniteHoldsBestMoveUntilStop(t *testing.T) {
	// The mate is found at depth 1, long before stop arrives.
	lines := runUCI(t,
		"position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"go infinite",
		"isready",
		"stop",
	)
	ready, best := slices.Index(lines, "readyok"), slices.Index(lines, "bestmove a1a8")
	if ready < 0 || best < 0 || best < ready {
		t.Fatalf("bestmove must follow stop, got\n%s", strings.Join(lines, "\n"))
	}
}

func TestUCIInfiniteStopsAtEndOfInput(t *testing.T) {
	lines := runUCI(t,
		"position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"go infinite",
	)
	if got := bestMove(t, lines); got != "a1a8" {
		t.Fatalf("got %s want a1a8", got)
	}
}
