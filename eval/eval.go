// Package eval scores positions for the search. The search consumes it
// through the Evaluator interface and treats the score as an opaque
// side-to-move-relative value.
package eval

import (
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

// Evaluator scores a position from the side to move's point of view;
// positive favors the mover.
type Evaluator interface {
	Evaluate(p *position.Position) int16
}

// Material is a tapered material-and-advancement evaluator. It is
// deliberately simple: board material, hand material at a small
// discount, and a modest advancement bonus that fades as material
// leaves the board so the score stays continuous across game phases.
type Material struct{}

func NewMaterial() *Material {
	return &Material{}
}

// boardValue is the midgame exchange table; handValue discounts pieces
// in hand slightly since they must spend a tempo to land.
var boardValue = piece.Value

func handValue(t piece.Type) int32 {
	return int32(piece.Value[t]) * 9 / 10
}

// advancement bonus per relative rank (0 = deepest) for non-king board
// pieces; encourages pushing toward the promotion zone.
var advanceBonus = [9]int32{14, 12, 10, 6, 4, 2, 0, 0, 0}

// fullMaterial approximates the total non-king material of the
// starting position, used to taper the advancement term.
const fullMaterial = 2 * (9*100 + 2*300 + 2*350 + 2*500 + 2*550 + 800 + 1000)

// NonPawnMaterial sums the board value of c's pieces other than pawns
// and the king. The search uses it to detect positions quiet enough to
// be zugzwang-prone.
func NonPawnMaterial(p *position.Position, c piece.Color) int32 {
	var total int32
	for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
		pc := p.PieceAt(sq)
		if pc.IsEmpty() || pc.Color() != c {
			continue
		}
		t := pc.Type()
		if t == piece.Pawn || t == piece.King {
			continue
		}
		total += int32(boardValue[t])
	}
	for _, t := range piece.HandTypes {
		if t == piece.Pawn {
			continue
		}
		total += int32(piece.Value[t]) * int32(p.Hand(c, t))
	}
	return total
}

func (e *Material) Evaluate(p *position.Position) int16 {
	var mat, adv [2]int32
	var onBoard int32
	for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
		pc := p.PieceAt(sq)
		if pc.IsEmpty() {
			continue
		}
		c := pc.Color()
		t := pc.Type()
		if t == piece.King {
			continue
		}
		v := int32(boardValue[t])
		mat[c] += v
		onBoard += v
		adv[c] += advanceBonus[sq.RelativeRank(c)]
	}
	for _, c := range []piece.Color{piece.Black, piece.White} {
		for _, t := range piece.HandTypes {
			n := int32(p.Hand(c, t))
			if n == 0 {
				continue
			}
			mat[c] += handValue(t) * n
		}
	}
	// The advancement term fades linearly as material leaves the board,
	// which keeps the score continuous across game phases instead of
	// jumping at a phase boundary.
	phase := onBoard
	if phase > fullMaterial {
		phase = fullMaterial
	}
	us := p.SideToMove()
	them := us.Opponent()
	diff := mat[us] - mat[them] + (adv[us]-adv[them])*phase/fullMaterial
	if diff > 30000 {
		diff = 30000
	} else if diff < -30000 {
		diff = -30000
	}
	return int16(diff)
}
