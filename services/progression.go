package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"habit-quest-system/leveling"
	"habit-quest-system/models"
	"habit-quest-system/streak"
)

// CompletionResult describes what changed when a habit was completed. The
// presentation layer decides what to celebrate; nothing here plays sounds or
// fires animations.
type CompletionResult struct {
	XPGained        int      `json:"xp_gained"`
	TotalXP         int64    `json:"total_xp"`
	NewLevel        int      `json:"new_level"`
	LeveledUp       bool     `json:"leveled_up"`
	CurrentLevelXP  int64    `json:"current_level_xp"`
	XPToNextLevel   int64    `json:"xp_to_next_level"`
	NewStreak       int      `json:"new_streak"`
	NewAchievements []string `json:"new_achievements"`
}

// ProgressSnapshot is the derived progression view, recomputed from TotalXP
// on every read.
type ProgressSnapshot struct {
	TotalXP        int64   `json:"total_xp"`
	TotalXPDisplay string  `json:"total_xp_display"`
	Level          int     `json:"level"`
	LevelTitle     string  `json:"level_title"`
	CurrentLevelXP int64   `json:"current_level_xp"`
	XPToNextLevel  int64   `json:"xp_to_next_level"`
	Progress       float64 `json:"progress"`
	DailyXPGoal    int64   `json:"daily_xp_goal"`
}

// ProgressionService orchestrates the complete-a-habit transaction per user.
// It owns the per-user ledgers; all local mutation goes through here, and
// local state only moves after the store confirms a write.
type ProgressionService struct {
	store Store

	mu      sync.Mutex
	ledgers map[string]*ledgerEntry
}

// ledgerEntry gates a ledger behind its first load. Concurrent callers for
// the same user share one load via the Once; nobody sees the ledger before
// Load has finished.
type ledgerEntry struct {
	once   sync.Once
	ledger *HabitLedger
	err    error
}

func NewProgressionService(store Store) *ProgressionService {
	return &ProgressionService{
		store:   store,
		ledgers: map[string]*ledgerEntry{},
	}
}

// Ledger returns the user's ledger, loading it from the store on first use.
// Callers arriving while the first load is in flight wait for it instead of
// seeing an empty ledger.
func (s *ProgressionService) Ledger(ctx context.Context, userID string) (*HabitLedger, error) {
	s.mu.Lock()
	entry, ok := s.ledgers[userID]
	if !ok {
		entry = &ledgerEntry{ledger: NewHabitLedger(userID, s.store)}
		s.ledgers[userID] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.err = entry.ledger.Load(ctx)
	})
	if entry.err != nil {
		// Drop the failed entry so the next request retries the load. All
		// waiters on this entry fail with the same error.
		s.mu.Lock()
		if s.ledgers[userID] == entry {
			delete(s.ledgers, userID)
		}
		s.mu.Unlock()
		return nil, entry.err
	}
	return entry.ledger, nil
}

// CompleteHabit runs the full transaction: validate, persist, recompute,
// evaluate achievements. On any persistence failure local state is left
// untouched, so no celebration can outrun the write.
func (s *ProgressionService) CompleteHabit(ctx context.Context, userID, habitID string, asOf time.Time) (*CompletionResult, error) {
	ledger, err := s.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Validating
	habit, err := ledger.Habit(habitID)
	if err != nil {
		return nil, err
	}
	date := streak.DayKey(asOf)
	if ledger.IsCompleted(habitID, date) {
		return nil, ErrAlreadyCompleted
	}

	// Persisting — one store transaction: completion row (snapshotting the
	// habit's current XP value), XP increment, XP event.
	newTotalXP, err := s.store.RecordCompletion(ctx, userID, habitID, date, habit.XPValue)
	if err != nil {
		return nil, err
	}

	// leveledUp is judged against the total as it stood inside the same
	// transaction, so gains landing concurrently cannot skew it.
	oldLevel := leveling.LevelFromTotalXP(newTotalXP - int64(habit.XPValue))

	// Recomputing — the write is confirmed, local state may now move.
	newStreak := ledger.markCompleted(habitID, date, asOf)
	if err := s.store.SetHabitStreak(ctx, habitID, newStreak); err != nil {
		// Snapshot refresh only; the hourly job repairs it.
		log.Printf("⚠️ [PROGRESSION] streak snapshot update failed for habit %s: %v", habitID, err)
	}
	newLevel := leveling.LevelFromTotalXP(newTotalXP)

	result := &CompletionResult{
		XPGained:        habit.XPValue,
		TotalXP:         newTotalXP,
		NewLevel:        newLevel,
		LeveledUp:       newLevel > oldLevel,
		CurrentLevelXP:  leveling.CurrentLevelXP(newTotalXP, newLevel),
		XPToNextLevel:   leveling.XPToNextLevel(newTotalXP, newLevel),
		NewStreak:       newStreak,
		NewAchievements: []string{},
	}

	// Done — evaluate and persist unlocks.
	unlocked, err := s.store.GetUnlockedAchievements(ctx, userID)
	if err != nil {
		// The completion itself stands; report it without new unlocks.
		log.Printf("⚠️ [PROGRESSION] achievement lookup failed for %s: %v", userID, err)
		return result, nil
	}
	metrics := AchievementMetrics{
		Level:      newLevel,
		TotalXP:    newTotalXP,
		Streaks:    ledger.Streaks(asOf),
		HabitCount: ledger.HabitCount(),
	}
	earned := EvaluateAchievements(metrics, unlocked)
	if len(earned) > 0 {
		codes := make([]string, len(earned))
		for i, def := range earned {
			codes[i] = def.Code
		}
		if err := s.store.UnlockAchievements(ctx, userID, codes); err != nil {
			log.Printf("⚠️ [PROGRESSION] achievement unlock failed for %s: %v", userID, err)
		} else {
			result.NewAchievements = codes
			log.Printf("🎖️ Achievements unlocked: %v → %s", codes, userID)
		}
	}

	if result.LeveledUp {
		log.Printf("🎮 Level up: %s → Lvl %d (%s, XP=%d)",
			userID, newLevel, leveling.LevelTitle(newLevel), newTotalXP)
	}
	return result, nil
}

// Progress reads stored XP and derives everything else from it. A stored
// level that disagrees with the recomputation is drift from older writes; it
// is repaired in place rather than trusted.
func (s *ProgressionService) Progress(ctx context.Context, userID string) (*ProgressSnapshot, error) {
	totalXP, storedLevel, err := s.store.GetUserXP(ctx, userID)
	if err != nil {
		return nil, err
	}
	level := leveling.LevelFromTotalXP(totalXP)
	if level != storedLevel {
		log.Printf("⚠️ [PROGRESSION] level drift for %s: stored=%d computed=%d — repairing", userID, storedLevel, level)
		if err := s.store.SetUserXP(ctx, userID, totalXP, level); err != nil {
			return nil, fmt.Errorf("repairing level drift: %w", err)
		}
	}
	return &ProgressSnapshot{
		TotalXP:        totalXP,
		TotalXPDisplay: leveling.FormatXP(totalXP),
		Level:          level,
		LevelTitle:     leveling.LevelTitle(level),
		CurrentLevelXP: leveling.CurrentLevelXP(totalXP, level),
		XPToNextLevel:  leveling.XPToNextLevel(totalXP, level),
		Progress:       leveling.LevelProgress(totalXP, level),
		DailyXPGoal:    leveling.DailyXPGoal(level),
	}, nil
}

// RecentXPEvents returns the latest gains for the activity feed.
func (s *ProgressionService) RecentXPEvents(ctx context.Context, userID string) ([]models.XPEvent, error) {
	return s.store.GetRecentXPEvents(ctx, userID, 10)
}

// UnlockedAchievements returns the user's unlocked defs, newest thresholds
// last (table order).
func (s *ProgressionService) UnlockedAchievements(ctx context.Context, userID string) ([]models.AchievementDef, error) {
	unlocked, err := s.store.GetUnlockedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.AchievementDef, 0, len(unlocked))
	for _, def := range models.AchievementThresholds {
		if unlocked[def.Code] {
			out = append(out, def)
		}
	}
	return out, nil
}
