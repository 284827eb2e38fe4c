package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chess-bot/config"
	"chess-bot/engine"
	"chess-bot/logging"
	"chess-bot/position"
)

const (
	maxHashMB = 1024
	maxSlack  = 16
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Logs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	uciLoop(os.Stdin, os.Stdout, cfg.Engine)
}

// uciSession holds the state of one UCI conversation. Searches run in their own
// goroutine; everything written to out goes through say.
type uciSession struct {
	outMu sync.Mutex
	out   io.Writer

	eng    *engine.Engine
	budget engine.Budget
	board  *position.Board
	debug  bool

	cancel   context.CancelFunc
	done     chan struct{}
	infinite bool
}

func uciLoop(in io.Reader, out io.Writer, cfg config.EngineConfig) {
	s := &uciSession{out: out, budget: cfg.Budget(), board: position.StartPosition()}
	opts := cfg.Options()
	hashMB := min(max(engine.CacheMBForEntries(opts.CacheEntries), 1), maxHashMB)
	opts.OnIteration = func(info engine.Info) { s.say(info.String()) }
	s.eng = engine.New(opts)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.say("id name chess-bot")
			s.say("id author chess-bot developers")
			s.say(fmt.Sprintf("option name Hash type spin default %d min 1 max %d", hashMB, maxHashMB))
			s.say(fmt.Sprintf("option name OwnBook type check default %t", opts.UseBook))
			s.say(fmt.Sprintf("option name QuiescenceSlack type spin default %d min 1 max %d", opts.QuiescenceSlack, maxSlack))
			s.say("uciok")
		case "debug":
			s.debug = len(tokens) > 1 && strings.EqualFold(tokens[1], "on")
		case "isready":
			s.say("readyok")
		case "ucinewgame":
			s.stop()
			s.board = position.StartPosition()
			s.eng.Clear()
		case "position":
			s.stop()
			s.position(tokens[1:])
		case "go":
			s.stop()
			s.goSearch(tokens[1:])
		case "stop":
			s.stop()
		case "quit":
			s.stop()
			return
		case "d":
			s.stop()
			s.say(s.board.String())
		case "eval":
			s.stop()
			s.eval()
		case "setoption":
			s.stop()
			s.setOption(tokens[1:])
		default:
			s.say("info string Unknown command: " + line)
		}
	}
	// Input closed: let a running search finish and report. An infinite one would never
	// finish on its own.
	if s.infinite {
		s.stop()
	}
	s.wait()
}

func (s *uciSession) say(line string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, line)
}

// stop cancels the running search, if any, and waits for its bestmove.
func (s *uciSession) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wait()
}

func (s *uciSession) wait() {
	if s.done != nil {
		<-s.done
		s.done, s.cancel, s.infinite = nil, nil, false
	}
}

func (s *uciSession) position(args []string) {
	if len(args) == 0 {
		s.say("info string Malformed position command")
		return
	}
	var (
		board *position.Board
		err   error
		rest  []string
	)
	switch strings.ToLower(args[0]) {
	case "startpos":
		board, rest = position.StartPosition(), args[1:]
	case "fen":
		end := len(args)
		for i, a := range args {
			if strings.ToLower(a) == "moves" {
				end = i
				break
			}
		}
		board, err = position.FromFEN(strings.Join(args[1:end], " "))
		if err != nil {
			s.say("info string Invalid fen position: " + err.Error())
			return
		}
		rest = args[end:]
	default:
		s.say("info string Invalid position subcommand")
		return
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		if err := board.ApplyUCIMoves(rest[1:]); err != nil {
			s.say("info string " + err.Error())
			return
		}
	}
	s.board = board
}

func (s *uciSession) goSearch(args []string) {
	var (
		wTime, bTime, wInc, bInc, moveTime int
		depth                              int
		nodes                              uint64
		infinite                           bool
	)
	for i := 0; i < len(args); i++ {
		name := strings.ToLower(args[i])
		if name == "infinite" {
			infinite = true
			continue
		}
		if i+1 >= len(args) {
			s.say("info string Malformed go command option " + name)
			break
		}
		i++
		var err error
		switch name {
		case "wtime":
			wTime, err = strconv.Atoi(args[i])
		case "btime":
			bTime, err = strconv.Atoi(args[i])
		case "winc":
			wInc, err = strconv.Atoi(args[i])
		case "binc":
			bInc, err = strconv.Atoi(args[i])
		case "movetime":
			moveTime, err = strconv.Atoi(args[i])
		case "depth":
			depth, err = strconv.Atoi(args[i])
		case "nodes":
			nodes, err = strconv.ParseUint(args[i], 10, 64)
		default:
			s.say("info string Unknown go subcommand " + name)
			i--
			continue
		}
		if err != nil {
			s.say(fmt.Sprintf("info string Malformed go command option %s: %v", name, err))
		}
	}

	remaining, inc := wTime, wInc
	if !s.board.WhiteToMove() {
		remaining, inc = bTime, bInc
	}

	var budget engine.Budget
	switch {
	case infinite:
		budget = engine.Budget{MaxDepth: engine.MaxPly}
	case depth > 0 || nodes > 0 || moveTime > 0:
		budget = engine.Budget{MaxDepth: depth, MaxNodes: nodes, MoveTime: time.Duration(moveTime) * time.Millisecond}
	case remaining > 0:
		budget = engine.ClockBudget(s.board, time.Duration(remaining)*time.Millisecond, time.Duration(inc)*time.Millisecond)
	default:
		budget = s.budget
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done, s.infinite = cancel, done, infinite
	board, debug := s.board, s.debug

	go func() {
		defer close(done)
		defer cancel()
		res, err := s.eng.ChooseMove(ctx, board, budget)
		if err != nil {
			s.say("info string " + err.Error())
			s.say("bestmove 0000")
			return
		}
		if res.Stats.Aborted {
			log.Debug().Int("depth", res.Depth).Msg("search-stopped")
		}
		if infinite {
			// bestmove is held back until the GUI says stop.
			<-ctx.Done()
		}
		if debug {
			var sb strings.Builder
			res.Stats.Dump(&sb)
			for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
				s.say(line)
			}
		}
		s.say("bestmove " + res.Move.String())
	}()
}

func (s *uciSession) eval() {
	ev := s.eng.Evaluator(s.board)
	score, moves := ev.Evaluate(0)
	if len(moves) == 0 || score == engine.DrawScore {
		s.say("info string terminal position, score " + engine.FormatScore(score))
		return
	}
	for _, line := range strings.Split(strings.TrimRight(ev.Explain().String(), "\n"), "\n") {
		s.say("info string " + line)
	}
}

func (s *uciSession) setOption(args []string) {
	// setoption name <id> value <x>
	var name, value string
	for i := 0; i+1 < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "name":
			name = strings.ToLower(args[i+1])
		case "value":
			value = args[i+1]
		}
	}

	switch name {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 || mb > maxHashMB {
			s.say("info string Invalid Hash value " + value)
			return
		}
		s.eng.SetOption(func(o *engine.Options) { o.CacheEntries = engine.CacheEntriesForMB(mb) })
	case "ownbook":
		use, err := strconv.ParseBool(value)
		if err != nil {
			s.say("info string Invalid OwnBook value " + value)
			return
		}
		s.eng.SetOption(func(o *engine.Options) { o.UseBook = use })
	case "quiescenceslack":
		slack, err := strconv.Atoi(value)
		if err != nil || slack < 1 || slack > maxSlack {
			s.say("info string Invalid QuiescenceSlack value " + value)
			return
		}
		s.eng.SetOption(func(o *engine.Options) { o.QuiescenceSlack = slack })
	default:
		s.say("info string Unknown option " + name)
	}
}
