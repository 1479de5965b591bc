package codestats

import "math"

// levelFactor converts accumulated XP to a level on a square-root curve.
const levelFactor = 0.025

// Level returns the level reached with xp experience points.
func Level(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(xp)) * levelFactor))
}

// NextLevelXP returns the total XP required to reach level+1.
func NextLevelXP(level int) int64 {
	return int64(math.Ceil(math.Pow(float64(level+1)/levelFactor, 2)))
}

// LevelProgress returns the percentage of the way from the current level to
// the next one, rounded to the nearest integer.
func LevelProgress(xp int64) int {
	level := Level(xp)
	current := NextLevelXP(level - 1)
	next := NextLevelXP(level)
	have := xp - current
	needed := next - current
	if needed <= 0 {
		return 0
	}
	return int(math.Round(float64(have) / float64(needed) * 100))
}
