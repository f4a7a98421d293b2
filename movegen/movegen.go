// Package movegen generates legal shogi moves. The search consumes it
// through the Generator interface and never inspects board internals
// itself.
package movegen

import (
	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

// Generator is the move-generation contract the search depends on.
type Generator interface {
	// LegalMoves returns every legal move for the side to move. The
	// slice is freshly allocated on each call; callers own it.
	LegalMoves(p *position.Position) []move.Move
	// NoisyMoves returns legal captures and promotions, plus checking
	// moves when includeChecks is set. Used by quiescence search when
	// the side to move is not in check.
	NoisyMoves(p *position.Position, includeChecks bool) []move.Move
	// GivesCheck reports whether m checks the opponent.
	GivesCheck(p *position.Position, m move.Move) bool
}

// Standard is the mailbox implementation of Generator.
type Standard struct{}

func NewStandard() *Standard {
	return &Standard{}
}

func (g *Standard) LegalMoves(p *position.Position) []move.Move {
	pseudo := g.pseudoMoves(p, false)
	pseudo = append(pseudo, g.dropMoves(p)...)
	return g.filterLegal(p, pseudo)
}

func (g *Standard) NoisyMoves(p *position.Position, includeChecks bool) []move.Move {
	if !includeChecks {
		legal := g.filterLegal(p, g.pseudoMoves(p, true))
		out := legal[:0]
		for _, m := range legal {
			if m.IsCapture() || m.Promotes() {
				out = append(out, m)
			}
		}
		return out
	}
	// With checks included, quiet checking moves and checking drops must
	// be found too, so start from the full legal move set.
	all := g.LegalMoves(p)
	out := all[:0]
	for _, m := range all {
		if m.IsCapture() || m.Promotes() || g.GivesCheck(p, m) {
			out = append(out, m)
		}
	}
	return out
}

func (g *Standard) GivesCheck(p *position.Position, m move.Move) bool {
	p.MakeMove(m)
	check := p.InCheck()
	p.UnmakeMove()
	return check
}

// HasLegalMove reports whether any legal move exists, stopping at the
// first one found. The drop-pawn-mate filter is skipped here, which is
// what lets the mate probe inside filterLegal use this without
// recursing into further composed positions.
func (g *Standard) HasLegalMove(p *position.Position) bool {
	us := p.SideToMove()
	pseudo := g.pseudoMoves(p, false)
	pseudo = append(pseudo, g.dropMoves(p)...)
	for _, m := range pseudo {
		p.MakeMove(m)
		ok := !p.Attacked(p.King(us), us.Opponent())
		p.UnmakeMove()
		if ok {
			return true
		}
	}
	return false
}

// filterLegal removes moves that leave the mover's own king attacked,
// and pawn drops that deliver immediate checkmate (uchifuzume).
func (g *Standard) filterLegal(p *position.Position, pseudo []move.Move) []move.Move {
	us := p.SideToMove()
	legal := pseudo[:0]
	for _, m := range pseudo {
		p.MakeMove(m)
		ok := !p.Attacked(p.King(us), us.Opponent())
		if ok && m.IsDrop() && m.Piece() == piece.Pawn && p.InCheck() {
			// A checking pawn drop is illegal if it is mate.
			if !g.HasLegalMove(p) {
				ok = false
			}
		}
		p.UnmakeMove()
		if ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// pseudoMoves generates board moves without king-safety filtering. With
// capturesOnly, quiet non-promoting destinations are skipped but every
// promotion option is still emitted.
func (g *Standard) pseudoMoves(p *position.Position, capturesOnly bool) []move.Move {
	us := p.SideToMove()
	moves := make([]move.Move, 0, 128)
	for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
		pc := p.PieceAt(sq)
		if pc.IsEmpty() || pc.Color() != us {
			continue
		}
		for _, to := range p.Destinations(sq) {
			target := p.PieceAt(to)
			captured := piece.NoType
			if !target.IsEmpty() {
				captured = target.Type()
			}
			moves = appendWithPromotions(moves, us, sq, to, pc.Type(), captured, capturesOnly)
		}
	}
	return moves
}

// appendWithPromotions emits the promoting and non-promoting versions
// of a board move, honoring forced promotion for pieces that would
// otherwise have no further moves.
func appendWithPromotions(moves []move.Move, us piece.Color, from, to piece.Square,
	pt, captured piece.Type, capturesOnly bool) []move.Move {

	canPromote := pt.CanPromote() &&
		(from.InPromotionZone(us) || to.InPromotionZone(us))
	if canPromote {
		moves = append(moves, move.New(from, to, pt, true, captured))
	}
	if mustPromote(pt, to, us) {
		return moves
	}
	if capturesOnly && captured == piece.NoType {
		return moves
	}
	return append(moves, move.New(from, to, pt, false, captured))
}

// mustPromote reports whether a piece landing on to would be left with
// no legal moves, which makes promotion mandatory.
func mustPromote(pt piece.Type, to piece.Square, us piece.Color) bool {
	switch pt {
	case piece.Pawn, piece.Lance:
		return to.RelativeRank(us) == 0
	case piece.Knight:
		return to.RelativeRank(us) <= 1
	}
	return false
}

// dropMoves generates drops of in-hand pieces onto empty squares,
// excluding dead-end drops and doubled pawns (nifu). Drop-pawn-mate is
// handled later in filterLegal since it needs the position after the
// drop.
func (g *Standard) dropMoves(p *position.Position) []move.Move {
	us := p.SideToMove()
	var moves []move.Move
	var pawnFiles [9]bool
	if p.Hand(us, piece.Pawn) > 0 {
		for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
			pc := p.PieceAt(sq)
			if !pc.IsEmpty() && pc.Color() == us && pc.Type() == piece.Pawn {
				pawnFiles[int(sq)%9] = true
			}
		}
	}
	for _, t := range piece.HandTypes {
		if p.Hand(us, t) == 0 {
			continue
		}
		for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
			if !p.PieceAt(sq).IsEmpty() {
				continue
			}
			if mustPromote(t, sq, us) {
				continue // the dropped piece could never move again
			}
			if t == piece.Pawn && pawnFiles[int(sq)%9] {
				continue
			}
			moves = append(moves, move.NewDrop(sq, t))
		}
	}
	return moves
}
