package deck

// masteryLabels maps ladder rungs to display labels.
var masteryLabels = [LadderLength]string{
	"New",
	"Learning",
	"Familiar",
	"Comfortable",
	"Mastered",
}

// MasteryLabel returns the display label for an interval index. Out of
// range values are clamped.
func MasteryLabel(intervalIndex int) string {
	return masteryLabels[ClampInterval(intervalIndex)]
}

// MasteryLabels returns all labels in ladder order.
func MasteryLabels() []string {
	return masteryLabels[:]
}

// MasteryDistribution counts questions per ladder rung.
func MasteryDistribution(questions []Question) [LadderLength]int {
	var dist [LadderLength]int
	for _, q := range questions {
		dist[ClampInterval(q.IntervalIndex)]++
	}
	return dist
}

// ClampInterval clamps an interval index to the ladder bounds.
func ClampInterval(i int) int {
	if i < 0 {
		return 0
	}
	if i > LadderLength-1 {
		return LadderLength - 1
	}
	return i
}
