package position

import (
	"github.com/fgantt/sente/piece"
)

// direction expressed as file-index and rank deltas. Square index math
// can silently wrap across ranks, so all stepping goes through offset.
type dir struct {
	df, dr int
}

// offset returns the square one step away in d, or NoSquare off-board.
func offset(sq piece.Square, d dir) piece.Square {
	f := int(sq)%9 + d.df
	r := int(sq)/9 + d.dr
	if f < 0 || f > 8 || r < 0 || r > 8 {
		return piece.NoSquare
	}
	return piece.Square(r*9 + f)
}

var (
	orthogonals = []dir{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagonals   = []dir{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	kingDirs    = []dir{{0, -1}, {0, 1}, {-1, 0}, {1, 0}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

	goldSteps   = []dir{{0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
	silverSteps = []dir{{0, -1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	knightSteps = []dir{{-1, -2}, {1, -2}}
	pawnSteps   = []dir{{0, -1}}
)

// stepDirs and slideDirs give each type's single-step and sliding
// directions from Black's point of view; White mirrors the rank delta.
var stepDirs, slideDirs [piece.NumTypes][]dir

func init() {
	stepDirs[piece.Pawn] = pawnSteps
	stepDirs[piece.Knight] = knightSteps
	stepDirs[piece.Silver] = silverSteps
	stepDirs[piece.Gold] = goldSteps
	stepDirs[piece.King] = kingDirs
	stepDirs[piece.PromotedPawn] = goldSteps
	stepDirs[piece.PromotedLance] = goldSteps
	stepDirs[piece.PromotedKnight] = goldSteps
	stepDirs[piece.PromotedSilver] = goldSteps
	stepDirs[piece.Horse] = orthogonals
	stepDirs[piece.Dragon] = diagonals

	slideDirs[piece.Lance] = []dir{{0, -1}}
	slideDirs[piece.Bishop] = diagonals
	slideDirs[piece.Rook] = orthogonals
	slideDirs[piece.Horse] = diagonals
	slideDirs[piece.Dragon] = orthogonals
}

// forColor mirrors a direction for White.
func forColor(d dir, c piece.Color) dir {
	if c == piece.Black {
		return d
	}
	return dir{d.df, -d.dr}
}

// Attacked reports whether sq is attacked by any piece of color by,
// given the current occupancy. It walks outward from sq: step attackers
// are found on adjacent squares, sliders on the first occupied square
// along each ray.
func (p *Position) Attacked(sq piece.Square, by piece.Color) bool {
	return p.attackedSkipping(sq, by, nil)
}

// attackedSkipping is Attacked with an optional removal mask: squares
// marked removed are treated as empty. Static exchange evaluation uses
// this to expose x-ray attackers as pieces come off the board.
func (p *Position) attackedSkipping(sq piece.Square, by piece.Color, removed *[piece.NumSquares]bool) bool {
	// Step attackers. A piece on nsq attacks sq along d iff the reverse
	// of d is in its step set, i.e. d reversed from the attacker's view.
	for _, d := range kingDirs {
		nsq := offset(sq, d)
		if !nsq.Valid() || (removed != nil && removed[nsq]) {
			continue
		}
		pc := p.board[nsq]
		if pc.IsEmpty() || pc.Color() != by {
			continue
		}
		back := forColor(dir{-d.df, -d.dr}, by)
		for _, s := range stepDirs[pc.Type()] {
			if s == back {
				return true
			}
		}
	}
	// Knight attackers jump, so the adjacency walk above misses them.
	for _, d := range knightSteps {
		// A knight of color by on nsq attacks sq; nsq is sq shifted by
		// the reverse of the knight step from by's perspective.
		rd := forColor(dir{-d.df, -d.dr}, by)
		nsq := offset(sq, rd)
		if !nsq.Valid() || (removed != nil && removed[nsq]) {
			continue
		}
		pc := p.board[nsq]
		if !pc.IsEmpty() && pc.Color() == by && pc.Type() == piece.Knight {
			return true
		}
	}
	// Sliding attackers: first piece along each ray.
	for _, d := range kingDirs {
		nsq := offset(sq, d)
		for nsq.Valid() {
			if removed != nil && removed[nsq] {
				nsq = offset(nsq, d)
				continue
			}
			pc := p.board[nsq]
			if pc.IsEmpty() {
				nsq = offset(nsq, d)
				continue
			}
			if pc.Color() == by {
				back := forColor(dir{-d.df, -d.dr}, by)
				for _, s := range slideDirs[pc.Type()] {
					if s == back {
						return true
					}
				}
			}
			break
		}
	}
	return false
}

// Attackers collects the squares of all pieces of color by that attack
// sq, honoring the removal mask the same way attackedSkipping does.
func (p *Position) Attackers(sq piece.Square, by piece.Color, removed *[piece.NumSquares]bool) []piece.Square {
	var out []piece.Square
	for _, d := range kingDirs {
		nsq := offset(sq, d)
		if !nsq.Valid() || (removed != nil && removed[nsq]) {
			continue
		}
		pc := p.board[nsq]
		if pc.IsEmpty() || pc.Color() != by {
			continue
		}
		back := forColor(dir{-d.df, -d.dr}, by)
		for _, s := range stepDirs[pc.Type()] {
			if s == back {
				out = append(out, nsq)
				break
			}
		}
	}
	for _, d := range knightSteps {
		rd := forColor(dir{-d.df, -d.dr}, by)
		nsq := offset(sq, rd)
		if !nsq.Valid() || (removed != nil && removed[nsq]) {
			continue
		}
		pc := p.board[nsq]
		if !pc.IsEmpty() && pc.Color() == by && pc.Type() == piece.Knight {
			out = append(out, nsq)
		}
	}
	for _, d := range kingDirs {
		nsq := offset(sq, d)
		for nsq.Valid() {
			if removed != nil && removed[nsq] {
				nsq = offset(nsq, d)
				continue
			}
			pc := p.board[nsq]
			if pc.IsEmpty() {
				nsq = offset(nsq, d)
				continue
			}
			if pc.Color() == by {
				back := forColor(dir{-d.df, -d.dr}, by)
				for _, s := range slideDirs[pc.Type()] {
					if s == back {
						out = append(out, nsq)
						break
					}
				}
			}
			break
		}
	}
	return out
}

// Destinations returns the pseudo-legal destination squares for the
// piece standing on from: every attacked square that is empty or holds
// an opposing piece. King safety is the move generator's problem.
func (p *Position) Destinations(from piece.Square) []piece.Square {
	pc := p.board[from]
	if pc.IsEmpty() {
		return nil
	}
	c := pc.Color()
	out := make([]piece.Square, 0, 16)
	for _, s := range stepDirs[pc.Type()] {
		nsq := offset(from, forColor(s, c))
		if !nsq.Valid() {
			continue
		}
		if t := p.board[nsq]; t.IsEmpty() || t.Color() != c {
			out = append(out, nsq)
		}
	}
	for _, s := range slideDirs[pc.Type()] {
		d := forColor(s, c)
		for nsq := offset(from, d); nsq.Valid(); nsq = offset(nsq, d) {
			t := p.board[nsq]
			if t.IsEmpty() {
				out = append(out, nsq)
				continue
			}
			if t.Color() != c {
				out = append(out, nsq)
			}
			break
		}
	}
	return out
}
