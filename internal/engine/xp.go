package engine

import "math"

// Level thresholds grow triangularly: level 2 at 100 XP, level 3 at 300,
// level 4 at 600, so T(n) = sum_{i=2..n} (i-1)*100.
const levelStepXP = 100

// XPRequiredForLevel returns the cumulative XP threshold for the given level.
// Levels 1 and below require 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0
	for i := 2; i <= level; i++ {
		total += (i - 1) * levelStepXP
	}
	return total
}

// LevelForXP returns the largest level whose threshold is <= xp. It is pure
// and is recomputed after every XP mutation; levels are never incrementally
// patched, so cached levels cannot drift.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := 1
	required := 0
	for required <= xp {
		level++
		required += (level - 1) * levelStepXP
	}
	return level - 1
}

// XPToNextLevel returns how much XP is still needed to reach the next level.
func XPToNextLevel(xp int) int {
	next := XPRequiredForLevel(LevelForXP(xp) + 1)
	if d := next - xp; d > 0 {
		return d
	}
	return 0
}

// XPRewardForDifficulty is the fixed difficulty-to-XP mapping frozen onto a
// task at creation time.
func XPRewardForDifficulty(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 25
	case DifficultyHard:
		return 50
	default:
		return 10
	}
}

// StreakMultiplier scales a task's base XP by the current daily streak.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 7:
		return 2.0
	case streak >= 3:
		return 1.5
	default:
		return 1.0
	}
}

// FinalXP applies the streak multiplier to a base reward.
func FinalXP(baseXP int, streak int) int {
	return int(math.Round(float64(baseXP) * StreakMultiplier(streak)))
}
