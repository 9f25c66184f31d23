package gamify

// BaseLevelXP is the XP needed to go from level 1 to level 2.
const BaseLevelXP = 100

// Level describes progress through the XP curve.
type Level struct {
	Level     int
	TotalXP   int
	XPInLevel int
	XPForNext int
}

// Progress returns the fraction of the current level completed, in [0, 1).
func (l Level) Progress() float64 {
	if l.XPForNext == 0 {
		return 0
	}
	return float64(l.XPInLevel) / float64(l.XPForNext)
}

// LevelFor computes the level for an XP total. Each level needs 20% more XP
// than the previous one, rounded down.
func LevelFor(totalXP int) Level {
	if totalXP < 0 {
		totalXP = 0
	}
	lvl := Level{Level: 1, TotalXP: totalXP, XPForNext: BaseLevelXP}
	remaining := totalXP
	for remaining >= lvl.XPForNext {
		remaining -= lvl.XPForNext
		lvl.Level++
		lvl.XPForNext = lvl.XPForNext * 6 / 5
	}
	lvl.XPInLevel = remaining
	return lvl
}
