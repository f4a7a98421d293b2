package search

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash"

	"github.com/fgantt/sente/config"
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/movegen"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

// Ordering score tiers, highest first: hash move, prior principal
// variation, winning captures, then killers, counter-move, and history,
// with losing captures below every quiet move. Within a tier the
// finer-grained bonuses break ties.
const (
	hashMoveScore     int32 = 1 << 30
	pvMoveScore       int32 = 1 << 29
	goodCaptureBase   int32 = 1 << 20
	killerFirstScore  int32 = 1<<20 - 1000
	killerSecondScore int32 = 1<<20 - 2000
	counterMoveScore  int32 = 1<<20 - 3000
	badCaptureBase    int32 = -(1 << 20)

	promotionBonus int32 = 3000
	checkBonus     int32 = 2500

	maxHistoryScore = 1 << 24
)

// fromSlots indexes move origins for the history and counter-move
// tables: 0..80 are board squares, 81..87 are drops by hand type.
const fromSlots = 88

func fromIndex(m move.Move) int {
	if m.IsDrop() {
		return 80 + int(m.Piece())
	}
	return int(m.From())
}

// OrderContext carries everything the orderer may consult for one
// node. HashMove covers both transposition hits and IID hints; it has
// already been verified legal by the caller.
type OrderContext struct {
	Ply      int
	Depth    int
	HashMove move.Move
	PVMove   move.Move
	LastMove move.Move
	PosKey   uint64
}

type orderCacheEntry struct {
	key   uint64
	moves []move.Move
}

// Orderer ranks legal moves to maximize early beta cutoffs. One
// instance belongs to one search thread; the tables inside are never
// shared.
type Orderer struct {
	cfg   *config.Config
	gen   movegen.Generator
	stats *Stats

	killers  [MaxPly][2]move.Move
	history  [2][fromSlots][piece.NumSquares]int32
	counters [2][fromSlots][piece.NumSquares]move.Move

	cache     []orderCacheEntry
	cacheMask uint64

	scratch []int32
}

func NewOrderer(cfg *config.Config, gen movegen.Generator, stats *Stats) *Orderer {
	o := &Orderer{cfg: cfg, gen: gen, stats: stats}
	if cfg.UseOrderingCache {
		n := nextPowerOf2(cfg.OrderingCacheEntries)
		o.cache = make([]orderCacheEntry, n)
		o.cacheMask = uint64(n - 1)
	}
	return o
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Reset clears killers and counter-moves and ages history, for reuse
// across independent top-level searches.
func (o *Orderer) Reset() {
	for i := range o.killers {
		o.killers[i][0] = move.NoMove
		o.killers[i][1] = move.NoMove
	}
	for s := range o.history {
		for f := range o.history[s] {
			for t := range o.history[s][f] {
				o.history[s][f][t] /= 2
				o.counters[s][f][t] = move.NoMove
			}
		}
	}
	for i := range o.cache {
		o.cache[i] = orderCacheEntry{}
	}
}

// Order sorts moves in place, best candidate first. The result is
// always a permutation of the input. Node order computed without a
// hash-move hint must not be replayed at a node that has one, so the
// cache is bypassed whenever ctx.HashMove is set.
func (o *Orderer) Order(p *position.Position, moves []move.Move, ctx OrderContext) {
	if len(moves) < 2 {
		return
	}

	cacheable := o.cache != nil && ctx.HashMove == move.NoMove
	var cacheKey uint64
	if cacheable {
		cacheKey = orderCacheKey(ctx.PosKey, ctx.Depth)
		if e := &o.cache[cacheKey&o.cacheMask]; e.key == cacheKey && len(e.moves) == len(moves) {
			o.stats.OrderCacheHits.Add(1)
			copy(moves, e.moves)
			return
		}
		o.stats.OrderCacheMisses.Add(1)
	}

	if cap(o.scratch) < len(moves) {
		o.scratch = make([]int32, len(moves))
	}
	scores := o.scratch[:len(moves)]
	for i, m := range moves {
		scores[i] = o.scoreMove(p, m, ctx)
	}
	sort.Stable(&byScore{moves: moves, scores: scores})

	if cacheable {
		e := &o.cache[cacheKey&o.cacheMask]
		e.key = cacheKey
		e.moves = append(e.moves[:0], moves...)
	}
}

// Contains reports whether m appears in moves. Hash and IID hints are
// checked through this before they are trusted at a node.
func Contains(moves []move.Move, m move.Move) bool {
	for _, cand := range moves {
		if cand == m {
			return true
		}
	}
	return false
}

func (o *Orderer) scoreMove(p *position.Position, m move.Move, ctx OrderContext) int32 {
	if m == ctx.HashMove {
		return hashMoveScore
	}
	if m == ctx.PVMove {
		return pvMoveScore
	}

	var score int32
	switch {
	case m.IsCapture():
		if s := see(p, m); s >= 0 {
			score = goodCaptureBase + mvvLva(m)
		} else {
			score = badCaptureBase + int32(s)
		}
	case o.cfg.UseKillers && m == o.killers[ctx.Ply][0]:
		score = killerFirstScore
	case o.cfg.UseKillers && m == o.killers[ctx.Ply][1]:
		score = killerSecondScore
	case o.cfg.UseCounterMoves && ctx.LastMove != move.NoMove &&
		m == o.counters[p.SideToMove()][fromIndex(ctx.LastMove)][ctx.LastMove.To()]:
		score = counterMoveScore
	case o.cfg.UseHistory:
		score = o.history[p.SideToMove()][fromIndex(m)][m.To()]
	}

	if m.Promotes() {
		score += promotionBonus
	}
	if o.gen.GivesCheck(p, m) {
		score += checkBonus
	}
	return score
}

// mvvLva prefers taking the biggest victim with the cheapest piece.
func mvvLva(m move.Move) int32 {
	return int32(piece.Value[m.Captured()])*16 - int32(piece.Value[m.Piece()])/16
}

// Update records a quiet move that produced a beta cutoff. Captures
// and promotions never enter the tables; their ordering comes from the
// exchange evaluator instead.
func (o *Orderer) Update(p *position.Position, m move.Move, ctx OrderContext) {
	if !m.IsQuiet() {
		return
	}
	if o.cfg.UseKillers && ctx.Ply < MaxPly && o.killers[ctx.Ply][0] != m {
		o.killers[ctx.Ply][1] = o.killers[ctx.Ply][0]
		o.killers[ctx.Ply][0] = m
	}
	if o.cfg.UseHistory {
		h := &o.history[p.SideToMove()][fromIndex(m)][m.To()]
		*h += int32(ctx.Depth) * int32(ctx.Depth)
		if *h > maxHistoryScore {
			o.ageHistory()
		}
	}
	if o.cfg.UseCounterMoves && ctx.LastMove != move.NoMove {
		o.counters[p.SideToMove()][fromIndex(ctx.LastMove)][ctx.LastMove.To()] = m
	}
}

func (o *Orderer) ageHistory() {
	for s := range o.history {
		for f := range o.history[s] {
			for t := range o.history[s][f] {
				o.history[s][f][t] /= 2
			}
		}
	}
}

func orderCacheKey(posKey uint64, depth int) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], posKey)
	buf[8] = byte(depth)
	return xxhash.Sum64(buf[:])
}

type byScore struct {
	moves  []move.Move
	scores []int32
}

func (b *byScore) Len() int           { return len(b.moves) }
func (b *byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b *byScore) Swap(i, j int) {
	b.moves[i], b.moves[j] = b.moves[j], b.moves[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}
