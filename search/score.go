package search

// Score limits. Everything fits int16 so transposition entries stay
// small; -HugeNumber must always negate safely, so it stays shy of the
// int16 minimum.
const (
	HugeNumber = int16(32600)
	MateScore  = int16(31000)
	DrawScore  = int16(0)

	// mateThreshold separates mate scores (which encode a distance to
	// mate) from ordinary evaluations.
	mateThreshold = MateScore - int16(MaxPly)
)

// MaxPly caps the total search depth, including extensions and
// quiescence.
const MaxPly = 128

// MateIn returns the score for delivering mate at the given ply from
// root; shorter mates score higher.
func MateIn(ply int) int16 {
	return MateScore - int16(ply)
}

// MatedIn returns the score for being mated at the given ply from root.
func MatedIn(ply int) int16 {
	return -MateScore + int16(ply)
}

// IsMateScore reports whether v encodes a forced mate for either side.
func IsMateScore(v int16) bool {
	return v >= mateThreshold || v <= -mateThreshold
}

// valueToTT converts a score to its transposition form: mate scores
// are stored relative to the node rather than the root, so an entry
// stays correct when probed at a different ply.
func valueToTT(v int16, ply int) int16 {
	if v >= mateThreshold {
		return v + int16(ply)
	}
	if v <= -mateThreshold {
		return v - int16(ply)
	}
	return v
}

// valueFromTT is the inverse of valueToTT.
func valueFromTT(v int16, ply int) int16 {
	if v >= mateThreshold {
		return v - int16(ply)
	}
	if v <= -mateThreshold {
		return v + int16(ply)
	}
	return v
}

func max16(x, y int16) int16 {
	if x < y {
		return y
	}
	return x
}

func min16(x, y int16) int16 {
	if x < y {
		return x
	}
	return y
}
