package services

import (
	"habit-quest-system/models"
)

// AchievementMetrics is the snapshot the evaluator reads. Streaks is the
// per-habit current streak set; only the maximum matters for thresholds.
type AchievementMetrics struct {
	Level      int
	TotalXP    int64
	Streaks    map[string]int
	HabitCount int
}

func (m AchievementMetrics) maxStreak() int {
	max := 0
	for _, s := range m.Streaks {
		if s > max {
			max = s
		}
	}
	return max
}

// EvaluateAchievements walks the static threshold table and returns the defs
// newly earned by the metrics, skipping anything already unlocked. Pure
// function of its arguments: identical inputs can never emit a code twice.
func EvaluateAchievements(metrics AchievementMetrics, unlocked map[string]bool) []models.AchievementDef {
	var earned []models.AchievementDef
	maxStreak := metrics.maxStreak()

	for _, def := range models.AchievementThresholds {
		if unlocked[def.Code] {
			continue
		}
		var met bool
		switch def.Kind {
		case "level":
			met = int64(metrics.Level) >= def.Value
		case "xp":
			met = metrics.TotalXP >= def.Value
		case "streak":
			met = int64(maxStreak) >= def.Value
		case "habits":
			met = int64(metrics.HabitCount) >= def.Value
		}
		if met {
			earned = append(earned, def)
		}
	}
	return earned
}

// AchievementByCode looks up a threshold definition.
func AchievementByCode(code string) (models.AchievementDef, bool) {
	for _, def := range models.AchievementThresholds {
		if def.Code == code {
			return def, true
		}
	}
	return models.AchievementDef{}, false
}
