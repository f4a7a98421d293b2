package search

import (
	"fmt"

	"github.com/fgantt/sente/move"
)

// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []move.Move
	score int16
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score int16) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// Get the best move from the principal variation line.
func (pvLine *PVLine) GetPVMove() move.Move {
	if len(pvLine.Moves) == 0 {
		return move.NoMove
	}
	return pvLine.Moves[0]
}

// Clone deep-copies the line so a later iteration cannot overwrite it.
func (pvLine *PVLine) Clone() PVLine {
	c := PVLine{score: pvLine.score}
	c.Moves = append(c.Moves, pvLine.Moves...)
	return c
}

// Convert the principal variation line to a string.
func (pvLine PVLine) String() string {
	s := fmt.Sprintf("PV; val %d\n", pvLine.score)
	for i := 0; i < len(pvLine.Moves); i++ {
		s += fmt.Sprintf("%d: %s\n", i+1, pvLine.Moves[i].String())
	}
	return s
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	s := fmt.Sprintf("PV; val %d; ", pvLine.score)
	for i := 0; i < len(pvLine.Moves); i++ {
		s += fmt.Sprintf("%d: %s; ", i+1, pvLine.Moves[i].String())
	}
	return s
}
