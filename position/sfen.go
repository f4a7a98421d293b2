package position

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/fgantt/sente/piece"
)

// StartSFEN is the standard shogi starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// FromSFEN parses an SFEN position string: board, side to move, hands,
// and move number.
func FromSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid sfen %q: want at least 3 fields", sfen)
	}
	p := &Position{
		kings:   [2]piece.Square{piece.NoSquare, piece.NoSquare},
		moveNum: 1,
	}

	rows := strings.Split(fields[0], "/")
	if len(rows) != 9 {
		return nil, fmt.Errorf("invalid sfen board %q: want 9 ranks", fields[0])
	}
	for rank, row := range rows {
		fileIdx := 0
		promoted := false
		for _, r := range row {
			switch {
			case r >= '1' && r <= '9':
				if promoted {
					return nil, fmt.Errorf("invalid sfen board %q: dangling +", fields[0])
				}
				fileIdx += int(r - '0')
			case r == '+':
				promoted = true
			default:
				if fileIdx > 8 {
					return nil, fmt.Errorf("invalid sfen board %q: rank %d overflows", fields[0], rank)
				}
				c := piece.Black
				if unicode.IsLower(r) {
					c = piece.White
				}
				t := piece.TypeFromLetter(unicode.ToUpper(r))
				if t == piece.NoType {
					return nil, fmt.Errorf("invalid sfen piece %q", string(r))
				}
				if promoted {
					if !t.CanPromote() {
						return nil, fmt.Errorf("piece %q cannot be promoted", string(r))
					}
					t = t.Promote()
					promoted = false
				}
				sq := piece.Square(rank*9 + fileIdx)
				p.board[sq] = piece.New(c, t)
				if t == piece.King {
					p.kings[c] = sq
				}
				fileIdx++
			}
		}
		if fileIdx != 9 {
			return nil, fmt.Errorf("invalid sfen board %q: rank %d has %d files", fields[0], rank, fileIdx)
		}
	}

	switch fields[1] {
	case "b":
		p.stm = piece.Black
	case "w":
		p.stm = piece.White
	default:
		return nil, fmt.Errorf("invalid sfen side to move %q", fields[1])
	}

	if fields[2] != "-" {
		count := 0
		for _, r := range fields[2] {
			if r >= '0' && r <= '9' {
				count = count*10 + int(r-'0')
				continue
			}
			c := piece.Black
			if unicode.IsLower(r) {
				c = piece.White
			}
			t := piece.TypeFromLetter(unicode.ToUpper(r))
			if t == piece.NoType || t == piece.King {
				return nil, fmt.Errorf("invalid sfen hand piece %q", string(r))
			}
			if count == 0 {
				count = 1
			}
			p.hands[c][t] += uint8(count)
			count = 0
		}
	}

	if len(fields) >= 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid sfen move number %q", fields[3])
		}
		p.moveNum = n
	}

	if p.kings[piece.Black] == piece.NoSquare || p.kings[piece.White] == piece.NoSquare {
		return nil, fmt.Errorf("invalid sfen %q: both kings required", sfen)
	}
	return p, nil
}

// SFEN renders the position back to SFEN form.
func (p *Position) SFEN() string {
	var sb strings.Builder
	for rank := 0; rank < 9; rank++ {
		if rank > 0 {
			sb.WriteByte('/')
		}
		empties := 0
		for fileIdx := 0; fileIdx < 9; fileIdx++ {
			pc := p.board[rank*9+fileIdx]
			if pc.IsEmpty() {
				empties++
				continue
			}
			if empties > 0 {
				sb.WriteString(strconv.Itoa(empties))
				empties = 0
			}
			sb.WriteString(pc.String())
		}
		if empties > 0 {
			sb.WriteString(strconv.Itoa(empties))
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.stm.String())
	sb.WriteByte(' ')

	anyHand := false
	for _, c := range []piece.Color{piece.Black, piece.White} {
		for _, t := range piece.HandTypes {
			n := int(p.hands[c][t])
			if n == 0 {
				continue
			}
			anyHand = true
			if n > 1 {
				sb.WriteString(strconv.Itoa(n))
			}
			sb.WriteString(piece.New(c, t).String())
		}
	}
	if !anyHand {
		sb.WriteByte('-')
	}
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.moveNum))
	return sb.String()
}

// String returns the SFEN form; handy in logs and test failures.
func (p *Position) String() string {
	return p.SFEN()
}
