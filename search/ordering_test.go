package search

import (
	"sort"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/fgantt/sente/config"
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/movegen"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

func sortedCopy(moves []move.Move) []move.Move {
	c := append([]move.Move(nil), moves...)
	sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	return c
}

func TestOrderIsAPermutation(t *testing.T) {
	is := is.New(t)
	p, err := position.FromSFEN(position.StartSFEN)
	is.NoErr(err)
	gen := movegen.NewStandard()
	cfg := config.Default()
	var stats Stats
	o := NewOrderer(&cfg, gen, &stats)

	moves := gen.LegalMoves(p)
	want := sortedCopy(moves)

	// No context at all.
	o.Order(p, moves, OrderContext{})
	assert.Equal(t, want, sortedCopy(moves))

	// With a hash move, killers, and a history entry in play.
	hash := moves[7]
	o.killers[3][0] = moves[2]
	o.Update(p, moves[4], OrderContext{Ply: 3, Depth: 5})
	o.Order(p, moves, OrderContext{Ply: 3, Depth: 5, HashMove: hash})
	assert.Equal(t, want, sortedCopy(moves))
	is.Equal(moves[0], hash) // the hash move always sorts first
}

func TestKillerAndHistoryUpdatesAreQuietOnly(t *testing.T) {
	is := is.New(t)
	p, err := position.FromSFEN("8k/9/9/9/4p4/9/9/9/K3R4 b - 1")
	is.NoErr(err)
	gen := movegen.NewStandard()
	cfg := config.Default()
	var stats Stats
	o := NewOrderer(&cfg, gen, &stats)

	from := piece.SquareAt(5, 8)
	to := piece.SquareAt(5, 4)
	capture := move.New(from, to, piece.Rook, false, piece.Pawn)
	o.Update(p, capture, OrderContext{Ply: 2, Depth: 4})
	is.Equal(o.killers[2][0], move.NoMove)

	quiet := move.New(from, piece.SquareAt(4, 8), piece.Rook, false, piece.NoType)
	o.Update(p, quiet, OrderContext{Ply: 2, Depth: 4})
	is.Equal(o.killers[2][0], quiet)
	is.True(o.history[p.SideToMove()][fromIndex(quiet)][quiet.To()] > 0)
}

func TestOrderingCacheBypassedWithHashMove(t *testing.T) {
	is := is.New(t)
	p, err := position.FromSFEN(position.StartSFEN)
	is.NoErr(err)
	gen := movegen.NewStandard()
	cfg := config.Default()
	cfg.UseOrderingCache = true
	cfg.OrderingCacheEntries = 1 << 10
	var stats Stats
	o := NewOrderer(&cfg, gen, &stats)

	moves := gen.LegalMoves(p)
	ctx := OrderContext{Depth: 3, PosKey: 0xfeedbeef}
	o.Order(p, moves, ctx)
	is.Equal(stats.OrderCacheMisses.Load(), uint64(1))
	o.Order(p, moves, ctx)
	is.Equal(stats.OrderCacheHits.Load(), uint64(1))

	// A hash move invalidates the cached order for this node.
	ctx.HashMove = moves[len(moves)-1]
	o.Order(p, moves, ctx)
	is.Equal(stats.OrderCacheHits.Load(), uint64(1))
	is.Equal(moves[0], ctx.HashMove)
}
