// Command searchbench runs fixed-depth searches over a set of positions and reports
// nodes, time and cache behaviour, optionally under the CPU or heap profiler.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"

	"chess-bot/config"
	"chess-bot/engine"
	"chess-bot/logging"
	"chess-bot/position"
)

var suite = []string{
	position.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
}

func main() {
	depth := flag.Int("depth", 4, "search depth in plies")
	repeat := flag.Int("repeat", 1, "number of passes over the positions")
	fen := flag.String("fen", "", "search only this FEN instead of the built-in suite")
	nodes := flag.Uint64("nodes", 0, "node budget per search (0 = depth only)")
	retain := flag.Bool("retain", false, "keep the evaluation cache between searches")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if err := logging.Setup(config.LogConfig{Style: "console", Level: "info"}); err != nil {
		log.Fatal().Err(err).Msg("setup-logging")
	}
	if *depth <= 0 || *depth > engine.MaxPly {
		log.Fatal().Int("depth", *depth).Msg("depth out of range")
	}

	positions := suite
	if *fen != "" {
		positions = []string{*fen}
	}
	boards := make([]*position.Board, len(positions))
	for i, f := range positions {
		b, err := position.FromFEN(f)
		if err != nil {
			log.Fatal().Err(err).Str("fen", f).Msg("parse-fen")
		}
		boards[i] = b
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("create-cpu-profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("start-cpu-profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	opts := engine.DefaultOptions()
	opts.UseBook = false
	opts.RetainCache = *retain
	eng := engine.New(opts)
	budget := engine.Budget{MaxDepth: *depth, MaxNodes: *nodes}

	var totalNodes uint64
	startAll := time.Now()
	for pass := 0; pass < *repeat; pass++ {
		for i, b := range boards {
			res, err := eng.ChooseMove(context.Background(), b, budget)
			if err != nil {
				log.Warn().Err(err).Str("fen", positions[i]).Msg("search-failed")
				continue
			}
			totalNodes += res.Stats.Nodes
			log.Info().
				Int("pass", pass+1).
				Int("position", i+1).
				Str("bestmove", res.Move.String()).
				Str("score", engine.FormatScore(res.Score)).
				Int("depth", res.Depth).
				Uint64("nodes", res.Stats.Nodes).
				Uint64("cutoffs", res.Stats.BetaCutoffs).
				Float64("cache_hit_rate", res.Stats.Cache.HitRate()).
				Dur("elapsed", res.Stats.Elapsed).
				Msg("search-done")
		}
	}
	elapsed := time.Since(startAll)
	log.Info().
		Uint64("nodes", totalNodes).
		Dur("elapsed", elapsed).
		Float64("nps", float64(totalNodes)/elapsed.Seconds()).
		Msg("bench-total")

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("create-mem-profile")
		}
		defer f.Close()

		runtime.GC() // up-to-date heap statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("write-mem-profile")
		}
	}
}
