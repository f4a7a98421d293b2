package search

import (
	"context"

	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
)

// highValueCapture exempts a capture from delta and exchange pruning:
// winning a piece this big is tactical information a margin heuristic
// cannot see.
const highValueCapture = 800

// quiescence resolves the tactical noise below the horizon: captures,
// promotions, and for the first QSCheckDepth plies also checks. It
// bottoms out in the static evaluation ("stand pat"). qply counts
// quiescence plies only and enforces a hard cap independent of how
// forcing the sequence looks.
func (s *Solver) quiescence(ctx context.Context, nodeKey uint64, α, β int16, ply, qply, thread int) (int16, error) {
	s.stats.QNodes.Add(1)
	if err := s.pollStop(ctx); err != nil {
		return 0, err
	}
	g := s.gameFor(thread)
	gen := s.movegenFor(thread)

	// Stand pat is unsound in check, so the qply cap yields to evasions
	// there; evasion children land out of check and cap out normally.
	// MaxPly stays the absolute ceiling either way.
	inCheck := g.InCheck()
	if ply >= MaxPly || (qply >= s.cfg.QSMaxPly && !inCheck) {
		return s.evaluator.Evaluate(g), nil
	}

	standPat := int16(-HugeNumber)
	if !inCheck {
		// In check the side to move cannot pass, so stand pat is not a
		// sound lower bound and is skipped.
		standPat = s.evaluator.Evaluate(g)
		if standPat >= β {
			s.stats.StandPatCutoffs.Add(1)
			return β, nil
		}
		α = max16(α, standPat)
	}

	var moves []move.Move
	if inCheck {
		moves = gen.LegalMoves(g)
		if len(moves) == 0 {
			return MatedIn(ply), nil
		}
	} else {
		moves = gen.NoisyMoves(g, qply < s.cfg.QSCheckDepth)
	}

	orderer := s.ordererFor(thread)
	orderer.Order(g, moves, OrderContext{Ply: ply, LastMove: g.LastMove(), PosKey: nodeKey})

	for _, m := range moves {
		if !inCheck && m.IsCapture() && !m.Promotes() &&
			int(piece.Value[m.Captured()]) < highValueCapture {
			if !gen.GivesCheck(g, m) {
				if standPat+piece.Value[m.Captured()]+int16(s.cfg.DeltaMargin) <= α {
					s.stats.DeltaPrunes.Add(1)
					continue
				}
				if see(g, m) < 0 {
					s.stats.SEEPrunes.Add(1)
					continue
				}
			}
		}

		childKey := s.zobrist.AddMoveToPosition(nodeKey, g, m)
		g.MakeMove(m)
		value, err := s.quiescence(ctx, childKey, -β, -α, ply+1, qply+1, thread)
		g.UnmakeMove()
		if err != nil {
			return value, err
		}
		if -value > α {
			α = -value
		}
		if α >= β {
			s.stats.BetaCutoffs.Add(1)
			return β, nil
		}
	}
	return α, nil
}
