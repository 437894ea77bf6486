// Package rating models the five-position star widget as pure functions, so
// hit-testing and rendering state are independent of the rendering
// technology.
package rating

import (
	"math"

	"boscov/client/internal/domain/fields"
)

// Positions is how many star positions the widget renders; each is worth two
// score points, a half star one.
const Positions = 5

type StarState int

const (
	StarEmpty StarState = iota
	StarHalf
	StarFull
)

// PositionState reports how star position pos (1..Positions) renders for the
// given score, comparing against the position's two-unit threshold.
func PositionState(pos int, score fields.Score) StarState {
	threshold := fields.Score(pos * 2)
	switch {
	case score >= threshold:
		return StarFull
	case score == threshold-1:
		return StarHalf
	default:
		return StarEmpty
	}
}

// ScoreAt maps a click on position pos to a score; half selects the
// half-star hit region.
func ScoreAt(pos int, half bool) fields.Score {
	if pos < 1 {
		return 0
	}
	if pos > Positions {
		pos = Positions
	}
	score := fields.Score(pos * 2)
	if half {
		score--
	}
	return score
}

// ScoreFromFraction maps a pointer offset across the whole control
// (0 at the left edge, 1 at the right) to a score in 0..10.
func ScoreFromFraction(x float64) fields.Score {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return fields.MaxScore
	}
	return fields.Score(math.Ceil(x * float64(fields.MaxScore)))
}

// Display resolves what the widget shows: the hovered score while the
// pointer is over a position, the committed score otherwise.
func Display(committed fields.Score, hover *fields.Score) fields.Score {
	if hover != nil {
		return *hover
	}
	return committed
}
