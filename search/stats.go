package search

import "sync/atomic"

// Stats holds observational counters for one top-level search. They are
// never read back into search decisions; the one deliberate exception
// is nodes, which drives the cooperative stop-polling cadence. All
// fields are atomics so LazySMP helper threads can share one instance.
type Stats struct {
	Nodes  atomic.Uint64
	QNodes atomic.Uint64

	BetaCutoffs        atomic.Uint64
	TTCutoffs          atomic.Uint64
	NullMoveCutoffs    atomic.Uint64
	NullMoveVerifyFail atomic.Uint64
	// NullMoveSkippedEndgame counts nodes where the zugzwang material
	// guard suppressed null-move pruning.
	NullMoveSkippedEndgame atomic.Uint64
	IIDSearches            atomic.Uint64
	FutilityPrunes         atomic.Uint64
	LMRReductions          atomic.Uint64
	DeltaPrunes            atomic.Uint64
	SEEPrunes              atomic.Uint64
	StandPatCutoffs        atomic.Uint64
	OrderCacheHits         atomic.Uint64
	OrderCacheMisses       atomic.Uint64
	Repetitions            atomic.Uint64
}

func (s *Stats) Reset() {
	s.Nodes.Store(0)
	s.QNodes.Store(0)
	s.BetaCutoffs.Store(0)
	s.TTCutoffs.Store(0)
	s.NullMoveCutoffs.Store(0)
	s.NullMoveVerifyFail.Store(0)
	s.NullMoveSkippedEndgame.Store(0)
	s.IIDSearches.Store(0)
	s.FutilityPrunes.Store(0)
	s.LMRReductions.Store(0)
	s.DeltaPrunes.Store(0)
	s.SEEPrunes.Store(0)
	s.StandPatCutoffs.Store(0)
	s.OrderCacheHits.Store(0)
	s.OrderCacheMisses.Store(0)
	s.Repetitions.Store(0)
}

// Snapshot is a plain-value copy of the counters, safe to hand to
// callers after a search finishes.
type Snapshot struct {
	Nodes                  uint64
	QNodes                 uint64
	BetaCutoffs            uint64
	TTCutoffs              uint64
	TTLookups              uint64
	TTHits                 uint64
	TTCollisions           uint64
	NullMoveCutoffs        uint64
	NullMoveVerifyFail     uint64
	NullMoveSkippedEndgame uint64
	IIDSearches            uint64
	FutilityPrunes         uint64
	LMRReductions          uint64
	DeltaPrunes            uint64
	SEEPrunes              uint64
	StandPatCutoffs        uint64
	OrderCacheHits         uint64
	OrderCacheMisses       uint64
	Repetitions            uint64
}

func (s *Stats) snapshot(tt *TranspositionTable) Snapshot {
	snap := Snapshot{
		Nodes:                  s.Nodes.Load(),
		QNodes:                 s.QNodes.Load(),
		BetaCutoffs:            s.BetaCutoffs.Load(),
		TTCutoffs:              s.TTCutoffs.Load(),
		NullMoveCutoffs:        s.NullMoveCutoffs.Load(),
		NullMoveVerifyFail:     s.NullMoveVerifyFail.Load(),
		NullMoveSkippedEndgame: s.NullMoveSkippedEndgame.Load(),
		IIDSearches:            s.IIDSearches.Load(),
		FutilityPrunes:         s.FutilityPrunes.Load(),
		LMRReductions:          s.LMRReductions.Load(),
		DeltaPrunes:            s.DeltaPrunes.Load(),
		SEEPrunes:              s.SEEPrunes.Load(),
		StandPatCutoffs:        s.StandPatCutoffs.Load(),
		OrderCacheHits:         s.OrderCacheHits.Load(),
		OrderCacheMisses:       s.OrderCacheMisses.Load(),
		Repetitions:            s.Repetitions.Load(),
	}
	if tt != nil {
		snap.TTLookups = tt.lookups.Load()
		snap.TTHits = tt.hits.Load()
		snap.TTCollisions = tt.t2collisions.Load()
	}
	return snap
}
