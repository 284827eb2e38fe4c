// Package engine chooses moves: an iterative-deepening negamax search with alpha-beta
// pruning and quiescence over a single mutable board, a cached static evaluator and a
// small opening book.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chess-bot/position"
)

// ErrNoLegalMoves is returned when the game is already over at the root.
var ErrNoLegalMoves = errors.New("no legal moves")

// Source tells where a chosen move came from.
type Source string

const (
	SourceBook     Source = "book"
	SourceForced   Source = "forced"
	SourceSearch   Source = "search"
	SourceFallback Source = "fallback"
)

// Options configure an Engine.
type Options struct {
	CacheEntries    int
	QuiescenceSlack int
	UseBook         bool
	// RetainCache keeps static evaluations between ChooseMove calls instead of starting
	// every call with an empty cache.
	RetainCache bool
	Weights     Weights
	Book        *Book
	// OnIteration is called after every completed depth.
	OnIteration func(Info)
}

func DefaultOptions() Options {
	return Options{
		CacheEntries:    DefaultCacheEntries,
		QuiescenceSlack: DefaultQuiescenceSlack,
		UseBook:         true,
		Weights:         DefaultWeights(),
	}
}

// Result is the outcome of one ChooseMove call.
type Result struct {
	Move   position.Move
	Score  Score
	Depth  int
	Line   PVLine
	Source Source
	Stats  Stats
}

// Info describes one completed iteration.
type Info struct {
	Depth int
	Score Score
	Nodes uint64
	Time  time.Duration
	Line  PVLine
}

// String renders the iteration as a UCI info line.
func (i Info) String() string {
	ms := i.Time.Milliseconds()
	nps := i.Nodes * 1000
	if ms > 0 {
		nps /= uint64(ms)
	}
	return fmt.Sprintf("info depth %d score %s nodes %d time %d nps %d pv %s",
		i.Depth, FormatScore(i.Score), i.Nodes, ms, nps, i.Line)
}

// Engine owns the evaluation cache and options shared by successive calls. Calls are
// serialized.
type Engine struct {
	mu    sync.Mutex
	opts  Options
	cache *EvalCache
}

func New(opts Options) *Engine {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.UseBook && opts.Book == nil {
		opts.Book = DefaultBook()
	}
	return &Engine{opts: opts, cache: NewEvalCache(opts.CacheEntries)}
}

// ChooseMove picks a move for the side to move with a default engine.
func ChooseMove(ctx context.Context, b Board, budget Budget) (Result, error) {
	return New(DefaultOptions()).ChooseMove(ctx, b, budget)
}

// SetOption updates options between searches.
func (e *Engine) SetOption(apply func(*Options)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prevEntries := e.opts.CacheEntries
	apply(&e.opts)
	if e.opts.UseBook && e.opts.Book == nil {
		e.opts.Book = DefaultBook()
	}
	if e.opts.CacheEntries != prevEntries {
		e.cache = NewEvalCache(e.opts.CacheEntries)
	}
}

// Clear forgets every cached evaluation.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Clear()
}

// Evaluator returns a static evaluator over b with the engine's weights and no cache.
func (e *Engine) Evaluator(b Board) *StaticEvaluator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewStaticEvaluator(b, nil, e.opts.Weights)
}

// ChooseMove searches b, which is restored before returning, and returns the best move of
// the last completed iteration.
func (e *Engine) ChooseMove(ctx context.Context, b Board, budget Budget) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	budget = budget.resolve(start)

	moves := b.LegalMoves()
	switch {
	case len(moves) == 0:
		return Result{}, ErrNoLegalMoves
	case len(moves) == 1:
		res := Result{Move: moves[0], Line: PVLine{moves[0]}, Source: SourceForced}
		res.Stats.Elapsed = time.Since(start)
		e.logResult(res)
		return res, nil
	}
	if e.opts.UseBook {
		if m, ok := e.opts.Book.Lookup(b); ok {
			res := Result{Move: m, Line: PVLine{m}, Source: SourceBook}
			res.Stats.Elapsed = time.Since(start)
			e.logResult(res)
			return res, nil
		}
	}

	defer b.MarkRoot()()
	if !e.opts.RetainCache {
		e.cache.Clear()
	}
	before := e.cache.Stats()

	eval := NewStaticEvaluator(b, e.cache, e.opts.Weights)
	sc := NewSearchContext(ctx, b, eval, budget.Deadline, e.opts.QuiescenceSlack)

	res := Result{Source: SourceSearch}
	for depth := 1; depth <= budget.MaxDepth; depth++ {
		if depth > 1 && ctx != nil && ctx.Err() != nil {
			sc.stats.Aborted = true
			break
		}

		// The root is always searched, even when its own position counts as drawn.
		score, line := sc.Search(depth, 1, moves)
		if sc.Aborted() {
			sc.stats.Aborted = true
			break
		}
		if m := line.GetPVMove(); !m.IsNull() {
			res.Move, res.Score, res.Depth, res.Line = m, score, depth, line
		}

		info := Info{Depth: depth, Score: score, Nodes: sc.stats.Nodes, Time: time.Since(start), Line: line}
		log.Debug().
			Int("depth", depth).
			Str("score", FormatScore(score)).
			Uint64("nodes", info.Nodes).
			Dur("elapsed", info.Time).
			Str("pv", line.String()).
			Msg("iteration-complete")
		if e.opts.OnIteration != nil {
			e.opts.OnIteration(info)
		}

		if budget.MaxNodes > 0 && sc.stats.Nodes >= budget.MaxNodes {
			break
		}
		if abs(score)+MateSlack >= MateValue {
			break
		}
		if !budget.Deadline.IsZero() && time.Until(budget.Deadline) < budget.SafetyMargin {
			break
		}
	}

	if res.Move.IsNull() {
		// Not even depth 1 completed: play the move the orderer likes best.
		children := sc.orderMoves(moves, 0, false)
		res.Move, res.Score, res.Line, res.Source = children[0].move, -children[0].score, PVLine{children[0].move}, SourceFallback
	}

	res.Stats = sc.stats
	res.Stats.Cache = e.cache.Stats()
	res.Stats.Cache.Probes -= before.Probes
	res.Stats.Cache.Hits -= before.Hits
	res.Stats.Cache.Stores -= before.Stores
	res.Stats.Cache.Evictions -= before.Evictions
	res.Stats.Elapsed = time.Since(start)
	e.logResult(res)
	return res, nil
}

func (e *Engine) logResult(res Result) {
	log.Info().
		Str("source", string(res.Source)).
		Str("move", res.Move.String()).
		Str("score", FormatScore(res.Score)).
		Int("depth", res.Depth).
		Uint64("nodes", res.Stats.Nodes).
		Uint64("nps", res.Stats.NPS()).
		Float64("cache_hit_rate", res.Stats.Cache.HitRate()).
		Dur("elapsed", res.Stats.Elapsed).
		Msg("move-chosen")
}
