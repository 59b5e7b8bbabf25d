package services

import (
	"context"
	"testing"
	"time"

	"habit-quest-system/models"

	"github.com/stretchr/testify/assert"
)

func TestHabitLedger_CreateValidatesBeforeIO(t *testing.T) {
	store := newMemStore()
	ledger := NewHabitLedger("user-1", store)
	ctx := context.Background()

	var validationErr *ValidationError

	_, err := ledger.CreateHabit(ctx, models.HabitDraft{Name: "   ", XPValue: 10})
	assert.ErrorAs(t, err, &validationErr)

	_, err = ledger.CreateHabit(ctx, models.HabitDraft{Name: "Read", XPValue: 0})
	assert.ErrorAs(t, err, &validationErr)

	_, err = ledger.CreateHabit(ctx, models.HabitDraft{Name: "Read", XPValue: 101})
	assert.ErrorAs(t, err, &validationErr)

	// nothing reached the store
	habits, _ := store.GetHabits(ctx, "user-1")
	assert.Empty(t, habits)
}

func TestHabitLedger_CreateAssignsDefaultsAndSlug(t *testing.T) {
	store := newMemStore()
	ledger := NewHabitLedger("user-1", store)

	habit, err := ledger.CreateHabit(context.Background(), models.HabitDraft{
		Name:    "Morning Run",
		XPValue: 25,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, habit.ID)
	assert.Equal(t, "morning-run", habit.Slug)
	assert.Equal(t, "general", habit.Category)
	assert.Equal(t, models.FrequencyDaily, habit.Frequency)
	assert.True(t, habit.IsActive)
}

func TestHabitLedger_UpdateNeverTouchesID(t *testing.T) {
	store := newMemStore()
	ledger := NewHabitLedger("user-1", store)
	ctx := context.Background()

	habit, err := ledger.CreateHabit(ctx, models.HabitDraft{Name: "Read", XPValue: 10})
	assert.NoError(t, err)

	newName := "Read a chapter"
	newXP := 20
	assert.NoError(t, ledger.UpdateHabit(ctx, habit.ID, models.HabitPatch{Name: &newName, XPValue: &newXP}))

	updated, err := ledger.Habit(habit.ID)
	assert.NoError(t, err)
	assert.Equal(t, habit.ID, updated.ID)
	assert.Equal(t, "Read a chapter", updated.Name)
	assert.Equal(t, 20, updated.XPValue)

	assert.ErrorIs(t, ledger.UpdateHabit(ctx, "nope", models.HabitPatch{Name: &newName}), ErrHabitNotFound)
}

func TestHabitLedger_SoftDeleteViaIsActive(t *testing.T) {
	store := newMemStore()
	ledger := NewHabitLedger("user-1", store)
	ctx := context.Background()

	habit, _ := ledger.CreateHabit(ctx, models.HabitDraft{Name: "Read", XPValue: 10})
	assert.Len(t, ledger.ActiveHabits(), 1)

	inactive := false
	assert.NoError(t, ledger.UpdateHabit(ctx, habit.ID, models.HabitPatch{IsActive: &inactive}))
	assert.Empty(t, ledger.ActiveHabits())
	// still known to the ledger, just hidden from today's views
	assert.Equal(t, 1, ledger.HabitCount())
}

func TestHabitLedger_IsCompletedAndStats(t *testing.T) {
	store := newMemStore()
	ledger := NewHabitLedger("user-1", store)
	ctx := context.Background()

	habit, _ := ledger.CreateHabit(ctx, models.HabitDraft{Name: "Meditate", XPValue: 10})

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	for i := 2; i >= 0; i-- {
		date := dayKeyOffset(now, -i)
		assert.False(t, ledger.IsCompleted(habit.ID, date))
		ledger.markCompleted(habit.ID, date, now.AddDate(0, 0, -i))
		assert.True(t, ledger.IsCompleted(habit.ID, date))
	}

	stats, err := ledger.Stats(habit.ID, now)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.TotalCompletions)
	assert.Equal(t, 10, stats.CompletionRate) // 3 of 30 days

	_, err = ledger.Stats("nope", now)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestHabitLedger_LoadReplacesState(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	seeded := &models.Habit{ExternalUserID: "user-1", Name: "Stretch", XPValue: 5, IsActive: true}
	assert.NoError(t, store.CreateHabit(ctx, seeded))
	_, err := store.RecordCompletion(ctx, "user-1", seeded.ID, "2026-08-27", 5)
	assert.NoError(t, err)

	ledger := NewHabitLedger("user-1", store)
	assert.NoError(t, ledger.Load(ctx))
	assert.Len(t, ledger.ActiveHabits(), 1)
	assert.True(t, ledger.IsCompleted(seeded.ID, "2026-08-27"))
}

func TestHabitLedger_LoadSurfacesPersistenceError(t *testing.T) {
	store := newMemStore()
	store.failAll = true

	ledger := NewHabitLedger("user-1", store)
	err := ledger.Load(context.Background())

	var persistenceErr *PersistenceError
	assert.ErrorAs(t, err, &persistenceErr)
}
