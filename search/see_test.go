package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

func mustSq(t *testing.T, s string) piece.Square {
	t.Helper()
	sq, err := piece.ParseSquare(s)
	if err != nil {
		t.Fatal(err)
	}
	return sq
}

func TestSEEWinningCapture(t *testing.T) {
	is := is.New(t)
	// Rook takes a hanging pawn.
	p, err := position.FromSFEN("8k/9/9/9/4p4/9/9/9/K3R4 b - 1")
	is.NoErr(err)

	m := move.New(mustSq(t, "5i"), mustSq(t, "5e"), piece.Rook, false, piece.Pawn)
	is.Equal(see(p, m), piece.Value[piece.Pawn])
}

func TestSEELosingCapture(t *testing.T) {
	is := is.New(t)
	// The pawn on 5e is guarded by the gold on 5d: RxP, GxR loses the
	// exchange.
	p, err := position.FromSFEN("8k/9/9/4g4/4p4/9/9/9/K3R4 b - 1")
	is.NoErr(err)

	m := move.New(mustSq(t, "5i"), mustSq(t, "5e"), piece.Rook, false, piece.Pawn)
	is.Equal(see(p, m), piece.Value[piece.Pawn]-piece.Value[piece.Rook])
}

func TestSEERecaptureChain(t *testing.T) {
	is := is.New(t)
	// PxP GxP SxG: we win a pawn, give back a pawn, win a gold with the
	// silver still standing. Net for the mover: pawn.
	p, err := position.FromSFEN("8k/9/9/4g4/4p4/4PS3/9/9/K8 b - 1")
	is.NoErr(err)

	m := move.New(mustSq(t, "5f"), mustSq(t, "5e"), piece.Pawn, false, piece.Pawn)
	is.Equal(see(p, m), piece.Value[piece.Pawn])
}

func TestSEEDropsAndQuietsAreZero(t *testing.T) {
	is := is.New(t)
	p, err := position.FromSFEN(position.StartSFEN)
	is.NoErr(err)

	is.Equal(see(p, move.NewDrop(mustSq(t, "5e"), piece.Pawn)), int16(0))
	quiet := move.New(mustSq(t, "7g"), mustSq(t, "7f"), piece.Pawn, false, piece.NoType)
	is.Equal(see(p, quiet), int16(0))
}
