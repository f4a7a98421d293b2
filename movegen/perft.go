package movegen

import "github.com/fgantt/sente/position"

// Perft counts leaf nodes of the legal move tree to the given depth.
// Used to validate generation and make/unmake against known totals.
func Perft(g Generator, p *position.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := g.LegalMoves(p)
	if depth == 1 {
		return uint64(len(moves))
	}
	var total uint64
	for _, m := range moves {
		p.MakeMove(m)
		total += Perft(g, p, depth-1)
		p.UnmakeMove()
	}
	return total
}
