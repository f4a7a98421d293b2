package search

import (
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

// see estimates the material outcome of playing m, assuming both sides
// keep recapturing on the destination square with their least valuable
// attackers and may stand pat at any point. Positive means the exchange
// wins material for the mover. Drops and quiet moves score zero, and so
// never get pruned on SEE grounds.
func see(p *position.Position, m move.Move) int16 {
	if m.IsDrop() || !m.IsCapture() {
		return 0
	}
	to := m.To()
	var gain [40]int16
	d := 0
	gain[0] = piece.Value[m.Captured()]
	if m.Promotes() {
		gain[0] += piece.Value[m.Piece().Promote()] - piece.Value[m.Piece()]
	}

	var removed [piece.NumSquares]bool
	removed[m.From()] = true
	attackerValue := piece.Value[m.Piece()]
	side := p.SideToMove().Opponent()

	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if max16(-gain[d-1], gain[d]) < 0 {
			break
		}
		sq, pt := leastValuableAttacker(p, to, side, &removed)
		if sq == piece.NoSquare {
			break
		}
		removed[sq] = true
		attackerValue = piece.Value[pt]
		side = side.Opponent()
		if d == len(gain)-2 {
			break
		}
	}
	for d--; d > 0; d-- {
		gain[d-1] = -max16(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker scans the live attackers of sq for side and
// returns the cheapest one. Already-consumed attackers are masked out
// via removed; lifting them off the board also uncovers x-ray sliders
// behind them.
func leastValuableAttacker(p *position.Position, sq piece.Square, side piece.Color, removed *[piece.NumSquares]bool) (piece.Square, piece.Type) {
	best := piece.NoSquare
	var bestType piece.Type
	bestValue := int16(32767)
	for _, from := range p.Attackers(sq, side, removed) {
		t := p.PieceAt(from).Type()
		if v := piece.Value[t]; v < bestValue {
			bestValue = v
			best = from
			bestType = t
		}
	}
	return best, bestType
}
