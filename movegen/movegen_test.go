package movegen

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

func mustPosition(t *testing.T, sfen string) *position.Position {
	t.Helper()
	p, err := position.FromSFEN(sfen)
	if err != nil {
		t.Fatalf("bad sfen %q: %v", sfen, err)
	}
	return p
}

func moveStrings(moves []move.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func TestPerft(t *testing.T) {
	is := is.New(t)
	g := NewStandard()
	p := mustPosition(t, position.StartSFEN)

	is.Equal(Perft(g, p, 1), uint64(30))
	is.Equal(Perft(g, p, 2), uint64(900))
	is.Equal(Perft(g, p, 3), uint64(25470))
	if testing.Short() {
		t.Skip("skipping deep perft")
	}
	is.Equal(Perft(g, p, 4), uint64(719731))
}

func TestNifu(t *testing.T) {
	g := NewStandard()
	// A pawn already stands on the fifth file; no second pawn may drop
	// there, while the fourth file is open.
	p := mustPosition(t, "8k/9/9/9/4P4/9/9/9/4K4 b P 1")

	moves := moveStrings(g.LegalMoves(p))
	assert.NotContains(t, moves, "P*5f")
	assert.NotContains(t, moves, "P*5c")
	assert.Contains(t, moves, "P*4e")
}

func TestDeadEndDrops(t *testing.T) {
	g := NewStandard()
	p := mustPosition(t, "8k/9/9/9/9/9/9/9/4K4 b PLN 1")

	moves := moveStrings(g.LegalMoves(p))
	// Pawns and lances can never move again from the last rank, knights
	// from the last two.
	assert.NotContains(t, moves, "P*5a")
	assert.NotContains(t, moves, "L*5a")
	assert.NotContains(t, moves, "N*5a")
	assert.NotContains(t, moves, "N*5b")
	assert.Contains(t, moves, "P*5b")
	assert.Contains(t, moves, "L*5b")
	assert.Contains(t, moves, "N*5c")
}

func TestForcedPromotion(t *testing.T) {
	g := NewStandard()
	// A pawn stepping onto the last rank has no unpromoted future.
	p := mustPosition(t, "8k/4P4/9/9/9/9/9/9/4K4 b - 1")
	moves := moveStrings(g.LegalMoves(p))
	assert.Contains(t, moves, "5b5a+")
	assert.NotContains(t, moves, "5b5a")

	// Knights jumping into the last two ranks likewise.
	p = mustPosition(t, "8k/9/4N4/9/9/9/9/9/4K4 b - 1")
	moves = moveStrings(g.LegalMoves(p))
	assert.Contains(t, moves, "5c4a+")
	assert.Contains(t, moves, "5c6a+")
	assert.NotContains(t, moves, "5c4a")
	assert.NotContains(t, moves, "5c6a")
}

func TestOptionalPromotion(t *testing.T) {
	g := NewStandard()
	// A silver entering the zone may promote or stay.
	p := mustPosition(t, "8k/9/9/4S4/9/9/9/9/4K4 b - 1")
	moves := moveStrings(g.LegalMoves(p))
	assert.Contains(t, moves, "5d5c+")
	assert.Contains(t, moves, "5d5c")
}

func TestDropPawnMateForbidden(t *testing.T) {
	g := NewStandard()
	// P*1b would be checkmate by a pawn drop: the rook seals 2a and 2b,
	// the bishop guards the dropped pawn. Forbidden; other pawn drops
	// stay legal.
	p := mustPosition(t, "8k/9/9/6B2/9/9/9/9/K6R1 b P 1")

	moves := moveStrings(g.LegalMoves(p))
	assert.NotContains(t, moves, "P*1b")
	assert.Contains(t, moves, "P*5e")
}

func TestDropPawnCheckThatIsNotMateIsLegal(t *testing.T) {
	g := NewStandard()
	// Same shape without the rook: the king runs to 2a, so the pawn
	// drop check is fine.
	p := mustPosition(t, "8k/9/9/6B2/9/9/9/9/K8 b P 1")

	moves := moveStrings(g.LegalMoves(p))
	assert.Contains(t, moves, "P*1b")
}

func TestEvasionsOnly(t *testing.T) {
	is := is.New(t)
	g := NewStandard()
	// Black king checked by the lance down the fifth file.
	p := mustPosition(t, "4l3k/9/9/9/9/9/9/9/4K4 b - 1")
	is.True(p.InCheck())

	for _, m := range g.LegalMoves(p) {
		p.MakeMove(m)
		p2 := p.Copy()
		_ = p.UnmakeMove()
		// after any legal move our king is safe
		is.True(!p2.Attacked(p2.King(piece.Black), piece.White))
	}
}

func TestNoisyMovesAreSubsetOfLegal(t *testing.T) {
	is := is.New(t)
	g := NewStandard()
	p := mustPosition(t, "lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL b - 1")

	legal := map[move.Move]bool{}
	for _, m := range g.LegalMoves(p) {
		legal[m] = true
	}
	noisy := g.NoisyMoves(p, true)
	for _, m := range noisy {
		is.True(legal[m])
	}
}

func TestHasLegalMove(t *testing.T) {
	is := is.New(t)
	g := NewStandard()

	p := mustPosition(t, position.StartSFEN)
	is.True(g.HasLegalMove(p))

	// Black king cornered by a dragon its own king defends: no reply.
	p = mustPosition(t, "9/9/9/9/9/9/1k7/+r8/K8 b - 1")
	is.True(p.InCheck())
	is.True(!g.HasLegalMove(p))
	is.Equal(len(g.LegalMoves(p)), 0)
}

func TestGivesCheck(t *testing.T) {
	is := is.New(t)
	g := NewStandard()
	p := mustPosition(t, "4k4/9/9/9/9/9/9/3R5/4K4 b - 1")

	// Sliding onto the king's file delivers check; staying off it does
	// not.
	check := move.New(piece.SquareAt(6, 7), piece.SquareAt(5, 7), piece.Rook, false, piece.NoType)
	quiet := move.New(piece.SquareAt(6, 7), piece.SquareAt(6, 5), piece.Rook, false, piece.NoType)
	is.True(g.GivesCheck(p, check))
	is.True(!g.GivesCheck(p, quiet))
}
