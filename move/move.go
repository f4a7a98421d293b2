// Package move defines the packed move representation used throughout
// the engine. A Move is a plain value: once generated it is never
// mutated, and it is small enough to store directly in transposition
// table entries.
package move

import (
	"fmt"
	"strings"

	"github.com/fgantt/sente/piece"
)

// Move packs a board move or a drop into 32 bits.
//
// Schema:
//
//	bits  0-6   destination square (0..80)
//	bits  7-13  origin square (0..80), or dropOrigin for drops
//	bit   14    promotion flag
//	bits 15-18  moving (or dropped) piece type, pre-promotion
//	bits 19-22  captured piece type, including promotion status; 0 if none
//
// The zero value is NoMove.
type Move uint32

const NoMove Move = 0

const dropOrigin = 0x7F

const (
	toShift       = 0
	fromShift     = 7
	promoShift    = 14
	pieceShift    = 15
	capturedShift = 19

	squareMask = 0x7F
	typeMask   = 0x0F
)

// New builds a board move.
func New(from, to piece.Square, pt piece.Type, promotes bool, captured piece.Type) Move {
	m := Move(to)<<toShift |
		Move(from)<<fromShift |
		Move(pt)<<pieceShift |
		Move(captured)<<capturedShift
	if promotes {
		m |= 1 << promoShift
	}
	return m
}

// NewDrop builds a drop of an in-hand piece onto an empty square.
func NewDrop(to piece.Square, pt piece.Type) Move {
	return Move(to)<<toShift |
		dropOrigin<<fromShift |
		Move(pt)<<pieceShift
}

func (m Move) To() piece.Square {
	return piece.Square(m >> toShift & squareMask)
}

// From returns the origin square, or piece.NoSquare for drops.
func (m Move) From() piece.Square {
	f := m >> fromShift & squareMask
	if f == dropOrigin {
		return piece.NoSquare
	}
	return piece.Square(f)
}

func (m Move) IsDrop() bool {
	return m>>fromShift&squareMask == dropOrigin
}

// Piece returns the moving piece type as it stood on the origin square
// (pre-promotion), or the dropped type for drops.
func (m Move) Piece() piece.Type {
	return piece.Type(m >> pieceShift & typeMask)
}

func (m Move) Promotes() bool {
	return m>>promoShift&1 == 1
}

// Captured returns the type of the captured piece including its
// promotion status, or NoType for quiet moves.
func (m Move) Captured() piece.Type {
	return piece.Type(m >> capturedShift & typeMask)
}

func (m Move) IsCapture() bool {
	return m.Captured() != piece.NoType
}

// IsQuiet reports whether the move is neither a capture nor a
// promotion. Only quiet moves feed the killer, history, and
// counter-move tables.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.Promotes()
}

// String renders USI notation: "7g7f", "2b8h+", "G*5b".
func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", m.Piece().String(), m.To().String())
	}
	var sb strings.Builder
	sb.WriteString(m.From().String())
	sb.WriteString(m.To().String())
	if m.Promotes() {
		sb.WriteByte('+')
	}
	return sb.String()
}
