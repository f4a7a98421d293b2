package search

import (
	"context"
	"errors"

	"github.com/fgantt/sente/eval"
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/movegen"
	"github.com/fgantt/sente/position"
)

// errStopped unwinds the recursion when the time budget runs out. The
// iterative-deepening driver treats it as a normal end of search, not
// a failure.
var errStopped = errors.New("search stopped")

// stopPollInterval is how many nodes pass between cooperative
// time/cancellation checks. A modulus check, not a syscall per node.
const stopPollInterval = 1024

func (s *Solver) pollStop(ctx context.Context) error {
	if s.stats.Nodes.Add(1)%stopPollInterval != 0 {
		return nil
	}
	if s.timer.ShouldStop() {
		return errStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (s *Solver) gameFor(thread int) *position.Position {
	if thread > 0 {
		return s.gameCopies[thread-1]
	}
	return s.game
}

func (s *Solver) movegenFor(thread int) *movegen.Standard {
	if thread > 0 {
		return s.movegens[thread-1]
	}
	return s.stmMovegen
}

func (s *Solver) ordererFor(thread int) *Orderer {
	if thread > 0 {
		return s.orderers[thread-1]
	}
	return s.orderer
}

// isRepetition reports whether nodeKey already occurred in this search
// path or the game history leading to it. Null moves plant a barrier;
// positions on the far side of a null move are not really reachable,
// so they never count.
func (s *Solver) isRepetition(thread int, nodeKey uint64) bool {
	hist := s.keyHistory[thread]
	// hist's top entry is the current position itself.
	for i := len(hist) - 2; i >= 0; i-- {
		if hist[i].barrier {
			return false
		}
		if hist[i].key == nodeKey {
			return true
		}
	}
	return false
}

func (s *Solver) pushKey(thread int, key uint64, barrier bool) {
	s.keyHistory[thread] = append(s.keyHistory[thread], repKey{key: key, barrier: barrier})
}

func (s *Solver) popKey(thread int) {
	h := s.keyHistory[thread]
	s.keyHistory[thread] = h[:len(h)-1]
}

// negamax is the principal search. Bounds are fail-hard: the return
// value never escapes [α, β] except for the best score on completion,
// which is itself clamped by the loop. nullOK is false directly under
// a null move so the reduction can never stack.
func (s *Solver) negamax(ctx context.Context, nodeKey uint64, depth, ply int, α, β int16, pv *PVLine, thread int, nullOK bool) (int16, error) {
	if err := s.pollStop(ctx); err != nil {
		return 0, err
	}
	g := s.gameFor(thread)
	gen := s.movegenFor(thread)
	orderer := s.ordererFor(thread)

	if ply > 0 && s.isRepetition(thread, nodeKey) {
		s.stats.Repetitions.Add(1)
		return DrawScore, nil
	}

	inCheck := g.InCheck()
	if inCheck {
		// Check extension. Extensions add depth, never consume it.
		depth++
	}

	if depth <= 0 || ply >= MaxPly {
		return s.quiescence(ctx, nodeKey, α, β, ply, 0, thread)
	}

	alphaOrig := α
	ttMove := move.NoMove
	if s.ttable != nil {
		ttEntry := s.ttable.lookup(nodeKey)
		if ttEntry.valid() {
			if ttEntry.depth() >= uint8(depth) && ply > 0 {
				score := valueFromTT(ttEntry.score, ply)
				switch ttEntry.flag() {
				case TTExact:
					s.stats.TTCutoffs.Add(1)
					return score, nil
				case TTLower:
					α = max16(α, score)
				case TTUpper:
					β = min16(β, score)
				}
				if α >= β {
					s.stats.TTCutoffs.Add(1)
					return score, nil
				}
			}
			ttMove = ttEntry.move()
		}
	}

	var moves []move.Move
	atRoot := ply == 0
	if atRoot {
		moves = s.rootMoveList(thread)
	} else {
		moves = gen.LegalMoves(g)
	}
	if len(moves) == 0 {
		// Checkmate and stalemate both lose for the side to move.
		return MatedIn(ply), nil
	}

	if s.allowNullMove(g, depth, inCheck, nullOK, β) && !atRoot {
		score, err := s.nullMoveSearch(ctx, nodeKey, depth, ply, β, thread)
		if err != nil {
			return 0, err
		}
		if score >= β {
			s.stats.NullMoveCutoffs.Add(1)
			return β, nil
		}
	}

	if s.cfg.UseIID && s.ttable != nil && ttMove == move.NoMove && depth >= s.cfg.IIDMinDepth && !atRoot {
		// A shallow search purely for an ordering hint. The hint is used
		// whatever its score turned out to be.
		s.stats.IIDSearches.Add(1)
		var iidPV PVLine
		if _, err := s.negamax(ctx, nodeKey, depth-2, ply, α, β, &iidPV, thread, false); err != nil {
			return 0, err
		}
		if e := s.ttable.lookup(nodeKey); e.valid() {
			ttMove = e.move()
		}
	}

	// A hash or IID move is a hint from another depth or a colliding
	// entry; trust it only if it is actually one of our legal moves.
	if ttMove != move.NoMove && !Contains(moves, ttMove) {
		ttMove = move.NoMove
	}

	octx := OrderContext{
		Ply:      ply,
		Depth:    depth,
		HashMove: ttMove,
		PVMove:   s.priorPVMove(ply),
		LastMove: g.LastMove(),
		PosKey:   nodeKey,
	}
	if !atRoot {
		orderer.Order(g, moves, octx)
	}

	futile := false
	if s.cfg.UseFutility && !inCheck && depth < len(s.cfg.FutilityMargins) &&
		!IsMateScore(α) && !IsMateScore(β) {
		standing := s.evaluator.Evaluate(g)
		futile = standing+int16(s.cfg.FutilityMargins[depth]) <= α
	}

	bestValue := -HugeNumber
	bestMove := move.NoMove
	cutoff := false
	var childPV PVLine
	for i, m := range moves {
		givesCheck := gen.GivesCheck(g, m)
		if futile && bestValue > -HugeNumber && m.IsQuiet() && !givesCheck {
			s.stats.FutilityPrunes.Add(1)
			continue
		}

		childKey := s.zobrist.AddMoveToPosition(nodeKey, g, m)
		g.MakeMove(m)
		s.pushKey(thread, childKey, false)

		reduction := 0
		if s.cfg.UseLMR && depth >= s.cfg.LMRMinDepth && i >= s.cfg.LMRMoveThreshold &&
			m.IsQuiet() && !inCheck && !givesCheck {
			reduction = 1
			s.stats.LMRReductions.Add(1)
		}
		value, err := s.negamax(ctx, childKey, depth-1-reduction, ply+1, -β, -α, &childPV, thread, true)
		if err == nil && reduction > 0 && -value > α {
			// The reduced search found something; redo at full depth.
			childPV.Clear()
			value, err = s.negamax(ctx, childKey, depth-1, ply+1, -β, -α, &childPV, thread, true)
		}
		s.popKey(thread)
		g.UnmakeMove()
		if err != nil {
			return value, err
		}

		if -value > bestValue {
			bestValue = -value
			bestMove = m
			pv.Update(m, childPV, bestValue)
		}
		if atRoot {
			s.initialMoves[thread][i].value = -value
		}
		α = max16(α, bestValue)
		if α >= β {
			s.stats.BetaCutoffs.Add(1)
			orderer.Update(g, m, octx)
			cutoff = true
			break
		}
		childPV.Clear()
	}

	if s.ttable != nil {
		entry := TableEntry{
			score: valueToTT(min16(bestValue, β), ply),
			play:  bestMove,
		}
		var flag uint8
		switch {
		case cutoff:
			flag = TTLower
		case bestValue <= alphaOrig:
			flag = TTUpper
		default:
			flag = TTExact
		}
		d := depth
		if d > depthMask {
			d = depthMask
		}
		entry.flagAndDepth = flag<<6 | uint8(d)
		s.ttable.store(nodeKey, entry)
	}
	if cutoff {
		return β, nil
	}
	return bestValue, nil
}

// allowNullMove gates the null-move reduction. Positions with little
// non-pawn material are zugzwang-prone, where passing is an illegal
// luxury that makes the bound unsound.
func (s *Solver) allowNullMove(g *position.Position, depth int, inCheck, nullOK bool, β int16) bool {
	if !s.cfg.UseNullMove || !nullOK || inCheck {
		return false
	}
	if depth < s.cfg.NullMoveMinDepth || IsMateScore(β) {
		return false
	}
	if eval.NonPawnMaterial(g, g.SideToMove()) <= int32(s.cfg.ZugzwangMaterial) {
		s.stats.NullMoveSkippedEndgame.Add(1)
		return false
	}
	return true
}

// nullMoveSearch hands the opponent a free move and searches the reply
// at reduced depth with a null window around β. A returned score >= β
// means our position is strong enough to prune, subject to
// verification at higher depths.
func (s *Solver) nullMoveSearch(ctx context.Context, nodeKey uint64, depth, ply int, β int16, thread int) (int16, error) {
	g := s.gameFor(thread)
	reduction := 2 + depth/6

	childKey := s.zobrist.AddMoveToPosition(nodeKey, g, move.NoMove)
	g.MakeNullMove()
	s.pushKey(thread, childKey, true)
	var nullPV PVLine
	value, err := s.negamax(ctx, childKey, depth-1-reduction, ply+1, -β, -β+1, &nullPV, thread, false)
	s.popKey(thread)
	g.UnmakeNullMove()
	if err != nil {
		return 0, err
	}
	score := -value
	if score < β {
		return score, nil
	}

	if depth >= s.cfg.NullMoveVerifyDepth {
		// Deep nodes re-check the claim with a real (reduced) search
		// before trusting the cutoff.
		var verifyPV PVLine
		verified, err := s.negamax(ctx, nodeKey, depth-reduction, ply, β-1, β, &verifyPV, thread, false)
		if err != nil {
			return 0, err
		}
		if verified < β {
			s.stats.NullMoveVerifyFail.Add(1)
			return verified, nil
		}
	}
	return score, nil
}
