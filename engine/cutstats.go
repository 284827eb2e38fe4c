package engine

import (
	"fmt"
	"io"
	"time"
)

// Stats are the diagnostic counters of one ChooseMove call. They never influence the move.
type Stats struct {
	// Nodes counts static evaluations, the unit the node budget is expressed in.
	Nodes uint64
	// SearchNodes and QuiescenceNodes count visits of the two recursive searches.
	SearchNodes     uint64
	QuiescenceNodes uint64

	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
	Extensions       uint64
	MemoHits         uint64

	Cache   CacheStats
	Elapsed time.Duration
	// Aborted is set when the context or deadline stopped an iteration midway.
	Aborted bool
}

// NPS returns static evaluations per second.
func (s Stats) NPS() uint64 {
	ms := s.Elapsed.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return s.Nodes * 1000 / uint64(ms)
}

// Dump writes the counters as UCI "info string" lines.
func (s Stats) Dump(w io.Writer) {
	fmt.Fprintln(w, "info string Search statistics:")
	fmt.Fprintf(w, "info string   Evaluations: %d\n", s.Nodes)
	fmt.Fprintf(w, "info string   Search nodes: %d\n", s.SearchNodes)
	fmt.Fprintf(w, "info string   Quiescence nodes: %d\n", s.QuiescenceNodes)
	fmt.Fprintf(w, "info string   Beta cutoffs: %d\n", s.BetaCutoffs)
	fmt.Fprintf(w, "info string   QStandPat cutoffs: %d\n", s.QStandPatCutoffs)
	fmt.Fprintf(w, "info string   QBeta cutoffs: %d\n", s.QBetaCutoffs)
	fmt.Fprintf(w, "info string   Extensions: %d\n", s.Extensions)
	fmt.Fprintf(w, "info string   Memo hits: %d\n", s.MemoHits)
	fmt.Fprintf(w, "info string   Cache hit rate: %.3f (%d/%d)\n", s.Cache.HitRate(), s.Cache.Hits, s.Cache.Probes)
	fmt.Fprintf(w, "info string   Cache size: %d of %d entries\n", s.Cache.Entries, s.Cache.Capacity)
}
