package move

import (
	"testing"

	"github.com/matryer/is"

	"github.com/fgantt/sente/piece"
)

func TestBoardMove(t *testing.T) {
	is := is.New(t)
	from, _ := piece.ParseSquare("7g")
	to, _ := piece.ParseSquare("7f")
	m := New(from, to, piece.Pawn, false, piece.NoType)

	is.Equal(m.From(), from)
	is.Equal(m.To(), to)
	is.Equal(m.Piece(), piece.Pawn)
	is.True(!m.IsDrop())
	is.True(!m.IsCapture())
	is.True(m.IsQuiet())
	is.Equal(m.String(), "7g7f")
}

func TestPromotingCapture(t *testing.T) {
	is := is.New(t)
	from, _ := piece.ParseSquare("8h")
	to, _ := piece.ParseSquare("2b")
	m := New(from, to, piece.Bishop, true, piece.Bishop)

	is.True(m.Promotes())
	is.Equal(m.Captured(), piece.Bishop)
	is.True(m.IsCapture())
	is.True(!m.IsQuiet())
	is.Equal(m.String(), "8h2b+")
}

func TestDrop(t *testing.T) {
	is := is.New(t)
	to, _ := piece.ParseSquare("5b")
	m := NewDrop(to, piece.Gold)

	is.True(m.IsDrop())
	is.Equal(m.From(), piece.NoSquare)
	is.Equal(m.Piece(), piece.Gold)
	is.True(m.IsQuiet())
	is.Equal(m.String(), "G*5b")
}

func TestCapturedKeepsPromotionStatus(t *testing.T) {
	is := is.New(t)
	from, _ := piece.ParseSquare("5e")
	to, _ := piece.ParseSquare("5d")
	m := New(from, to, piece.Rook, false, piece.PromotedPawn)
	is.Equal(m.Captured(), piece.PromotedPawn)
}

func TestNoMove(t *testing.T) {
	is := is.New(t)
	is.Equal(NoMove.String(), "none")
}
