// Package zobrist hashes shogi positions for the transposition table
// and repetition detection.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
	"github.com/fgantt/sente/position"
)

const bignum = 1<<63 - 2

// maxHandCount bounds a single hand pile; 18 pawns is the shogi maximum.
const maxHandCount = 19

// Zobrist holds the random tables. Initialize must run before any
// hashing; the tables are then read-only and safe to share across
// search threads.
type Zobrist struct {
	whiteTurn uint64

	// posTable[square][piece]; piece is the packed color+type byte.
	posTable [piece.NumSquares][32]uint64
	// handTable[color][baseType][count]
	handTable [2][8][maxHandCount]uint64
}

func (z *Zobrist) Initialize() {
	for i := 0; i < piece.NumSquares; i++ {
		for j := 1; j < 32; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	for c := 0; c < 2; c++ {
		for t := 1; t < 8; t++ {
			for n := 0; n < maxHandCount; n++ {
				z.handTable[c][t][n] = frand.Uint64n(bignum) + 1
			}
		}
	}
	z.whiteTurn = frand.Uint64n(bignum) + 1
}

// Hash computes the full hash of a position from scratch.
func (z *Zobrist) Hash(p *position.Position) uint64 {
	var key uint64
	for sq := piece.Square(0); sq < piece.NumSquares; sq++ {
		pc := p.PieceAt(sq)
		if pc.IsEmpty() {
			continue
		}
		key ^= z.posTable[sq][pc]
	}
	for _, c := range []piece.Color{piece.Black, piece.White} {
		for _, t := range piece.HandTypes {
			key ^= z.handTable[c][t][p.Hand(c, t)]
		}
	}
	if p.SideToMove() == piece.White {
		key ^= z.whiteTurn
	}
	return key
}

// AddMove applies m incrementally to key. mover is the side that played
// m; the hand-count arguments are the mover's count for the captured
// (or dropped) base type before and after the move, so the caller can
// invoke this either before making the move or after unmaking it.
//
// In practice the search calls the convenience form AddMoveToPosition
// below; AddMove is kept separate so it can be tested against Hash
// without a Position in hand.
func (z *Zobrist) AddMove(key uint64, m move.Move, mover piece.Color, handBefore, handAfter int) uint64 {
	to := m.To()
	if m.IsDrop() {
		t := m.Piece()
		key ^= z.handTable[mover][t][handBefore]
		key ^= z.handTable[mover][t][handAfter]
		key ^= z.posTable[to][piece.New(mover, t)]
	} else {
		from := m.From()
		pt := m.Piece()
		key ^= z.posTable[from][piece.New(mover, pt)]
		final := pt
		if m.Promotes() {
			final = pt.Promote()
		}
		key ^= z.posTable[to][piece.New(mover, final)]
		if cap := m.Captured(); cap != piece.NoType {
			key ^= z.posTable[to][piece.New(mover.Opponent(), cap)]
			base := cap.Demote()
			key ^= z.handTable[mover][base][handBefore]
			key ^= z.handTable[mover][base][handAfter]
		}
	}
	key ^= z.whiteTurn
	return key
}

// AddMoveToPosition updates key for m, reading the needed hand counts
// from p. Call with p in the state BEFORE the move is made.
func (z *Zobrist) AddMoveToPosition(key uint64, p *position.Position, m move.Move) uint64 {
	mover := p.SideToMove()
	if m == move.NoMove {
		// null move: only the turn flips
		return key ^ z.whiteTurn
	}
	if m.IsDrop() {
		n := p.Hand(mover, m.Piece())
		return z.AddMove(key, m, mover, n, n-1)
	}
	if cap := m.Captured(); cap != piece.NoType {
		n := p.Hand(mover, cap.Demote())
		return z.AddMove(key, m, mover, n, n+1)
	}
	return z.AddMove(key, m, mover, 0, 0)
}
