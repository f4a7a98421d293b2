package piece

import "fmt"

// Square indexes the 9x9 board, rank-major from rank a. Index 0 is
// square 9a (file 9, rank a), index 80 is 1i. File runs 9..1 left to
// right within a rank, matching SFEN row order.
type Square int8

const (
	NoSquare   Square = -1
	NumSquares        = 81
)

func SquareAt(file, rank int) Square {
	return Square(rank*9 + (9 - file))
}

// File returns the shogi file, 1..9.
func (s Square) File() int {
	return 9 - int(s)%9
}

// Rank returns the rank index 0..8, where 0 is rank a.
func (s Square) Rank() int {
	return int(s) / 9
}

func (s Square) Valid() bool {
	return s >= 0 && s < NumSquares
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d%c", s.File(), 'a'+s.Rank())
}

// ParseSquare parses USI square notation like "7g".
func ParseSquare(str string) (Square, error) {
	if len(str) != 2 || str[0] < '1' || str[0] > '9' || str[1] < 'a' || str[1] > 'i' {
		return NoSquare, fmt.Errorf("invalid square %q", str)
	}
	return SquareAt(int(str[0]-'0'), int(str[1]-'a')), nil
}

// RelativeRank returns the rank from the mover's point of view: 0 is the
// farthest (promotion) rank for that color.
func (s Square) RelativeRank(c Color) int {
	if c == Black {
		return s.Rank()
	}
	return 8 - s.Rank()
}

// InPromotionZone reports whether the square lies in c's promotion zone
// (the far three ranks).
func (s Square) InPromotionZone(c Color) bool {
	return s.RelativeRank(c) <= 2
}
