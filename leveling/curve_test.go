package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPForNextLevel_BaseCases(t *testing.T) {
	assert.Equal(t, int64(100), XPForNextLevel(1))
	assert.Equal(t, int64(110), XPForNextLevel(2))
	assert.Equal(t, int64(121), XPForNextLevel(3))

	// levels below 1 evaluate at level 1
	assert.Equal(t, int64(100), XPForNextLevel(0))
	assert.Equal(t, int64(100), XPForNextLevel(-5))
}

func TestXPForNextLevel_StrictlyIncreasing(t *testing.T) {
	for n := 1; n < MaxLevel; n++ {
		assert.Greater(t, XPForNextLevel(n+1), XPForNextLevel(n), "level %d", n)
	}
}

func TestTotalXPForLevel(t *testing.T) {
	assert.Equal(t, int64(0), TotalXPForLevel(1))
	assert.Equal(t, int64(100), TotalXPForLevel(2))
	assert.Equal(t, int64(210), TotalXPForLevel(3))

	for n := 1; n <= MaxLevel; n++ {
		assert.Greater(t, TotalXPForLevel(n+1), TotalXPForLevel(n), "level %d", n)
	}
}

// Round-trip: at every level boundary, LevelFromTotalXP and the derived
// fields must reconstruct the original XP exactly.
func TestLevelFromTotalXP_RoundTrip(t *testing.T) {
	for lvl := 1; lvl <= MaxLevel; lvl++ {
		boundary := TotalXPForLevel(lvl)
		probes := []int64{boundary, boundary + 1}
		if boundary > 0 {
			probes = append(probes, boundary-1)
		}
		for _, xp := range probes {
			level := LevelFromTotalXP(xp)
			assert.LessOrEqual(t, TotalXPForLevel(level), xp, "xp=%d", xp)
			if level < MaxLevel {
				assert.Less(t, xp, TotalXPForLevel(level+1), "xp=%d", xp)
			}
			assert.Equal(t, xp, TotalXPForLevel(level)+CurrentLevelXP(xp, level), "xp=%d", xp)
			assert.Less(t, CurrentLevelXP(xp, level), XPForNextLevel(level), "xp=%d", xp)
		}
	}
}

func TestLevelFromTotalXP_Scenario(t *testing.T) {
	// level 1 user completes a 100 XP habit: exactly enough for level 2
	assert.Equal(t, 2, LevelFromTotalXP(100))
	assert.Equal(t, int64(0), CurrentLevelXP(100, 2))
	assert.Equal(t, int64(110), XPToNextLevel(100, 2))

	assert.Equal(t, 1, LevelFromTotalXP(0))
	assert.Equal(t, 1, LevelFromTotalXP(99))
}

func TestLevelFromTotalXP_ClampsAtMaxLevel(t *testing.T) {
	capXP := TotalXPForLevel(MaxLevel)
	assert.Equal(t, MaxLevel, LevelFromTotalXP(capXP))
	// XP keeps accumulating past the cap; the level stays clamped
	assert.Equal(t, MaxLevel, LevelFromTotalXP(capXP*10))
	assert.Equal(t, int64(0), XPToNextLevel(capXP*10, MaxLevel))
}

func TestXPToNextLevel_NonNegative(t *testing.T) {
	for _, xp := range []int64{0, 1, 99, 100, 250, 1000, 54321} {
		level := LevelFromTotalXP(xp)
		remaining := XPToNextLevel(xp, level)
		assert.GreaterOrEqual(t, remaining, int64(0), "xp=%d", xp)
		if level < MaxLevel {
			assert.Positive(t, remaining, "xp=%d", xp)
		}
	}
}

func TestStreakBonus(t *testing.T) {
	assert.Equal(t, 0, StreakBonus(0, 20))
	assert.Equal(t, 0, StreakBonus(2, 20))
	assert.Equal(t, 6, StreakBonus(3, 20))   // 30% of 20
	assert.Equal(t, 10, StreakBonus(5, 20))  // 50% of 20
	assert.Equal(t, 10, StreakBonus(40, 20)) // capped at 50%
}

func TestDailyXPGoal(t *testing.T) {
	assert.Equal(t, int64(55), DailyXPGoal(1))
	assert.Equal(t, int64(100), DailyXPGoal(10))
}

func TestFormatXP(t *testing.T) {
	assert.Equal(t, "0", FormatXP(0))
	assert.Equal(t, "999", FormatXP(999))
	assert.Equal(t, "1.2K", FormatXP(1234))
	assert.Equal(t, "2.5M", FormatXP(2500000))
}

func TestLevelTitle(t *testing.T) {
	assert.Equal(t, "Novice Hunter", LevelTitle(1))
	assert.Equal(t, "Apprentice", LevelTitle(5))
	assert.Equal(t, "Rising Hero", LevelTitle(10))
	assert.Equal(t, "Skilled Warrior", LevelTitle(25))
	assert.Equal(t, "Elite Hunter", LevelTitle(50))
	assert.Equal(t, "Epic Champion", LevelTitle(75))
	assert.Equal(t, "Legendary Master", LevelTitle(100))
}

func TestLevelProgress(t *testing.T) {
	assert.Equal(t, float64(0), LevelProgress(0, 1))
	assert.InDelta(t, 50, LevelProgress(50, 1), 0.01)
	assert.Equal(t, float64(100), LevelProgress(200, 1)) // clamped
}
