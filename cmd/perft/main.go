// Command perft counts legal move tree leaves, for checking move generation and timing it.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"chess-bot/position"
)

func main() {
	fen := flag.String("fen", position.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := position.FromFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse fen: %v\n", err)
		os.Exit(2)
	}

	if *divide {
		printDivide(board, *depth)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var total uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		total += position.Perft(board, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(total) / elapsed.Seconds()

	// label depth nodes time nps
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, total, elapsed, nps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

func printDivide(b *position.Board, depth int) {
	div := position.PerftDivide(b, depth)
	byName := make(map[string]uint64, len(div))
	var sum uint64
	for m, n := range div {
		byName[m.String()] = n
		sum += n
	}
	names := maps.Keys(byName)
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("%s: %d\n", name, byName[name])
	}
	fmt.Printf("Total: %d\n", sum)
}
