// Package piece defines the basic shogi domain types: colors, piece
// types, and the packed board piece representation shared by the move,
// position, and search packages.
package piece

// Color is a player color. Black (sente) moves first and advances toward
// rank a; White (gote) advances toward rank i.
type Color uint8

const (
	Black Color = 0
	White Color = 1
)

func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Type identifies a piece kind, independent of color. Promoted types are
// the base type with the promotion bit (8) set, so Pawn.Promote() ==
// PromotedPawn, and Demote masks the bit back off. Gold and King never
// promote.
type Type uint8

const (
	NoType Type = 0

	Pawn   Type = 1
	Lance  Type = 2
	Knight Type = 3
	Silver Type = 4
	Bishop Type = 5
	Rook   Type = 6
	Gold   Type = 7
	King   Type = 8

	promotionBit Type = 8

	PromotedPawn   Type = Pawn | promotionBit   // tokin
	PromotedLance  Type = Lance | promotionBit  // 10
	PromotedKnight Type = Knight | promotionBit // 11
	PromotedSilver Type = Silver | promotionBit // 12
	Horse          Type = Bishop | promotionBit // promoted bishop, 13
	Dragon         Type = Rook | promotionBit   // promoted rook, 14

	NumTypes = 15
)

// CanPromote reports whether this type has a promoted counterpart.
func (t Type) CanPromote() bool {
	switch t {
	case Pawn, Lance, Knight, Silver, Bishop, Rook:
		return true
	}
	return false
}

func (t Type) Promoted() bool {
	return t >= PromotedPawn && t <= Dragon
}

// Promote returns the promoted counterpart. Callers must check
// CanPromote first; promoting Gold or King is a programming error.
func (t Type) Promote() Type {
	return t | promotionBit
}

// Demote returns the base (in-hand) type of a possibly promoted piece.
// A captured Horse goes back to hand as a Bishop.
func (t Type) Demote() Type {
	if t.Promoted() {
		return t &^ promotionBit
	}
	return t
}

var typeNames = [NumTypes]string{
	"", "P", "L", "N", "S", "B", "R", "G", "K",
	"+P", "+L", "+N", "+S", "+B", "+R",
}

func (t Type) String() string {
	if t >= NumTypes {
		return "?"
	}
	return typeNames[t]
}

// TypeFromLetter maps an SFEN piece letter (unpromoted, uppercase) to a
// type. Returns NoType for unrecognized letters.
func TypeFromLetter(r rune) Type {
	switch r {
	case 'P':
		return Pawn
	case 'L':
		return Lance
	case 'N':
		return Knight
	case 'S':
		return Silver
	case 'B':
		return Bishop
	case 'R':
		return Rook
	case 'G':
		return Gold
	case 'K':
		return King
	}
	return NoType
}

// Piece is a colored piece as it sits on the board. The low four bits
// hold the Type, bit 4 the color. Empty squares are the zero value.
type Piece uint8

const Empty Piece = 0

const colorBit Piece = 1 << 4

func New(c Color, t Type) Piece {
	return Piece(t) | Piece(c)<<4
}

func (p Piece) Type() Type {
	return Type(p) & 0x0F
}

func (p Piece) Color() Color {
	return Color(p&colorBit) >> 4
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	s := p.Type().String()
	if p.Color() == White {
		// SFEN convention: white pieces lowercase.
		return lower(s)
	}
	return s
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// HandTypes are the types a player can hold in hand, in the
// conventional SFEN ordering (rook first).
var HandTypes = [7]Type{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// Exchange values in centipawn-like units, indexed by Type. These are
// used by move ordering and static exchange evaluation; the evaluator
// keeps its own tapered tables.
var Value = [NumTypes]int16{
	0,
	100,   // P
	300,   // L
	350,   // N
	500,   // S
	800,   // B
	1000,  // R
	550,   // G
	15000, // K, never actually exchanged
	600,   // +P
	600,   // +L
	600,   // +N
	650,   // +S
	1100,  // +B
	1300,  // +R
}
