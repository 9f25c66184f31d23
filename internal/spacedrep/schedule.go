package spacedrep

import "github.com/abhisek/smartstudy/internal/deck"

// Ladder defines the review intervals in sessions. Rung 0 = new or just missed.
var Ladder = [deck.LadderLength]int{1, 2, 4, 6, 8}

// TopRung is the highest ladder index.
const TopRung = deck.LadderLength - 1

// IntervalFor returns the ladder interval for an index, clamping out of
// range values.
func IntervalFor(idx int) int {
	return Ladder[deck.ClampInterval(idx)]
}
