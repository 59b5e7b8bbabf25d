package services

import (
	"context"

	"habit-quest-system/models"
)

// Store is the persistence collaborator behind the ledger and the
// progression service. Implementations must make RecordCompletion atomic and
// must reject a duplicate (habitID, date) pair with ErrAlreadyCompleted —
// the check-then-write race is closed here, not assumed away upstream.
type Store interface {
	GetHabits(ctx context.Context, userID string) ([]models.Habit, error)
	GetCompletions(ctx context.Context, userID string) ([]models.Completion, error)

	// CreateHabit assigns the habit's ID before returning.
	CreateHabit(ctx context.Context, habit *models.Habit) error
	UpdateHabit(ctx context.Context, habitID string, patch models.HabitPatch) error
	SetHabitIcon(ctx context.Context, habitID, iconURL string) error
	SetHabitStreak(ctx context.Context, habitID string, current int) error

	// RecordCompletion inserts one completion, increments the user's TotalXP
	// by xpGained and appends the XPEvent in a single transaction, returning
	// the new total.
	RecordCompletion(ctx context.Context, userID, habitID, date string, xpGained int) (int64, error)

	GetUserXP(ctx context.Context, userID string) (totalXP int64, level int, err error)
	SetUserXP(ctx context.Context, userID string, totalXP int64, level int) error

	GetUnlockedAchievements(ctx context.Context, userID string) (map[string]bool, error)
	UnlockAchievements(ctx context.Context, userID string, codes []string) error
	GetRecentXPEvents(ctx context.Context, userID string, limit int) ([]models.XPEvent, error)
}
