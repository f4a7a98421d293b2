// Package position implements the shogi board state: piece placement,
// hands, side to move, and make/unmake with exact restoration. The
// search mutates a single working copy of a Position via MakeMove and
// UnmakeMove rather than copying it at every node.
package position

import (
	"errors"

	"github.com/fgantt/sente/move"
	"github.com/fgantt/sente/piece"
)

var ErrNoUndo = errors.New("no move to unmake")

// Position is the full game state. The zero value is an empty board;
// use New or FromSFEN.
type Position struct {
	board [piece.NumSquares]piece.Piece
	// hands holds captured-piece counts per color, indexed by base
	// (unpromoted) piece type.
	hands [2][8]uint8
	stm   piece.Color
	kings [2]piece.Square
	undos []undo

	moveNum int
}

type undo struct {
	m move.Move
}

// New returns the standard shogi starting position.
func New() *Position {
	p, err := FromSFEN(StartSFEN)
	if err != nil {
		panic(err) // the start SFEN is a constant
	}
	return p
}

func (p *Position) SideToMove() piece.Color {
	return p.stm
}

func (p *Position) PieceAt(sq piece.Square) piece.Piece {
	return p.board[sq]
}

// Hand returns how many pieces of base type t the given color holds.
func (p *Position) Hand(c piece.Color, t piece.Type) int {
	return int(p.hands[c][t.Demote()])
}

// King returns the king square for a color.
func (p *Position) King(c piece.Color) piece.Square {
	return p.kings[c]
}

func (p *Position) MoveNumber() int {
	return p.moveNum
}

// Ply returns how many moves are currently on the undo stack.
func (p *Position) Ply() int {
	return len(p.undos)
}

// Copy returns a deep copy with an empty undo stack. Used to give each
// search thread its own working position.
func (p *Position) Copy() *Position {
	c := *p
	c.undos = nil
	return &c
}

// MakeMove applies m. It assumes m was generated for this position;
// passing an arbitrary move corrupts the state.
func (p *Position) MakeMove(m move.Move) {
	us := p.stm
	to := m.To()
	if m.IsDrop() {
		p.hands[us][m.Piece()]--
		p.board[to] = piece.New(us, m.Piece())
	} else {
		from := m.From()
		pt := m.Piece()
		if cap := m.Captured(); cap != piece.NoType {
			p.hands[us][cap.Demote()]++
		}
		p.board[from] = piece.Empty
		final := pt
		if m.Promotes() {
			final = pt.Promote()
		}
		p.board[to] = piece.New(us, final)
		if pt == piece.King {
			p.kings[us] = to
		}
	}
	p.stm = us.Opponent()
	p.moveNum++
	p.undos = append(p.undos, undo{m: m})
}

// UnmakeMove reverts the most recent MakeMove or MakeNullMove.
func (p *Position) UnmakeMove() error {
	n := len(p.undos)
	if n == 0 {
		return ErrNoUndo
	}
	u := p.undos[n-1]
	p.undos = p.undos[:n-1]
	p.stm = p.stm.Opponent()
	p.moveNum--
	us := p.stm

	m := u.m
	if m == move.NoMove {
		// null move
		return nil
	}
	to := m.To()
	if m.IsDrop() {
		p.board[to] = piece.Empty
		p.hands[us][m.Piece()]++
		return nil
	}
	from := m.From()
	pt := m.Piece()
	p.board[from] = piece.New(us, pt)
	if cap := m.Captured(); cap != piece.NoType {
		p.board[to] = piece.New(us.Opponent(), cap)
		p.hands[us][cap.Demote()]--
	} else {
		p.board[to] = piece.Empty
	}
	if pt == piece.King {
		p.kings[us] = from
	}
	return nil
}

// MakeNullMove passes the turn without moving. The null branch must not
// look like a repetition of the parent, so the undo entry is a marker
// the repetition bookkeeping can skip.
func (p *Position) MakeNullMove() {
	p.stm = p.stm.Opponent()
	p.moveNum++
	p.undos = append(p.undos, undo{m: move.NoMove})
}

func (p *Position) UnmakeNullMove() error {
	return p.UnmakeMove()
}

// InCheck reports whether the side to move's king is attacked.
func (p *Position) InCheck() bool {
	return p.Attacked(p.kings[p.stm], p.stm.Opponent())
}

// LastMove returns the most recent move, or NoMove at the stack root
// (or after a null move).
func (p *Position) LastMove() move.Move {
	if len(p.undos) == 0 {
		return move.NoMove
	}
	return p.undos[len(p.undos)-1].m
}
