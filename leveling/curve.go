// Package leveling holds the XP curve: pure functions, no state, no I/O.
// Callers validate their inputs; everything here is total over level >= 1 and
// totalXP >= 0.
package leveling

import (
	"fmt"
	"math"
)

const (
	BaseXPPerLevel = 100
	XPMultiplier   = 1.1
	MaxLevel       = 100
)

// XPForNextLevel returns the XP required to go from level to level+1,
// floor(BaseXPPerLevel * XPMultiplier^(level-1)). Levels below 1 are
// evaluated at 1. Strictly increasing for level >= 1.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(BaseXPPerLevel * math.Pow(XPMultiplier, float64(level-1))))
}

// TotalXPForLevel returns the cumulative XP needed to *reach* level.
// TotalXPForLevel(1) = 0.
func TotalXPForLevel(level int) int64 {
	var total int64
	for i := 1; i < level; i++ {
		total += XPForNextLevel(i)
	}
	return total
}

// LevelFromTotalXP returns the largest level whose cumulative cost fits in
// totalXP, clamped to MaxLevel. XP keeps accumulating past the cap; the level
// stays clamped.
func LevelFromTotalXP(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	var spent int64
	for level < MaxLevel {
		cost := XPForNextLevel(level)
		if spent+cost > totalXP {
			break
		}
		spent += cost
		level++
	}
	return level
}

// CurrentLevelXP returns the XP earned within the current level.
func CurrentLevelXP(totalXP int64, level int) int64 {
	return totalXP - TotalXPForLevel(level)
}

// XPToNextLevel returns the XP still required to reach level+1. At MaxLevel
// there is no next level and the remainder is reported as 0.
func XPToNextLevel(totalXP int64, level int) int64 {
	if level >= MaxLevel {
		return 0
	}
	return XPForNextLevel(level) - CurrentLevelXP(totalXP, level)
}

// LevelProgress returns the percentage (0-100) into the current level.
func LevelProgress(totalXP int64, level int) float64 {
	need := XPForNextLevel(level)
	if need <= 0 {
		return 100
	}
	pct := float64(CurrentLevelXP(totalXP, level)) / float64(need) * 100
	return math.Min(pct, 100)
}

// DailyXPGoal returns the recommended daily XP target for a level.
func DailyXPGoal(level int) int64 {
	return int64(math.Floor(50 * (1 + float64(level)*0.1)))
}

// StreakBonus returns the bonus XP a streak would earn on top of baseXP.
// Streaks under 3 days earn nothing; the bonus tops out at 50% of base.
// Display-only: completion awards always persist the plain snapshot value.
func StreakBonus(streakDays int, baseXP int) int {
	if streakDays < 3 {
		return 0
	}
	mult := math.Min(float64(streakDays)/10, 0.5)
	return int(math.Floor(float64(baseXP) * mult))
}

// FormatXP renders an XP amount for display (1234 -> "1.2K").
func FormatXP(xp int64) string {
	switch {
	case xp >= 1000000:
		return fmt.Sprintf("%.1fM", float64(xp)/1000000)
	case xp >= 1000:
		return fmt.Sprintf("%.1fK", float64(xp)/1000)
	default:
		return fmt.Sprintf("%d", xp)
	}
}

// LevelTitle returns the display title for a level.
func LevelTitle(level int) string {
	switch {
	case level >= 100:
		return "Legendary Master"
	case level >= 75:
		return "Epic Champion"
	case level >= 50:
		return "Elite Hunter"
	case level >= 25:
		return "Skilled Warrior"
	case level >= 10:
		return "Rising Hero"
	case level >= 5:
		return "Apprentice"
	default:
		return "Novice Hunter"
	}
}
