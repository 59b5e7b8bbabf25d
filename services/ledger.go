package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"habit-quest-system/models"
	"habit-quest-system/streak"

	"github.com/gosimple/slug"
)

// HabitLedger is the in-process view of one user's habits and completion
// days, backed by the Store. Local state changes only after the store
// confirms a write — never optimistically — so the client view cannot
// diverge from what was actually persisted.
type HabitLedger struct {
	userID string
	store  Store

	mu          sync.RWMutex
	habits      map[string]*models.Habit
	order       []string                       // creation order for listing
	completions map[string]map[string]struct{} // habitID -> set of day keys
}

func NewHabitLedger(userID string, store Store) *HabitLedger {
	return &HabitLedger{
		userID:      userID,
		store:       store,
		habits:      map[string]*models.Habit{},
		completions: map[string]map[string]struct{}{},
	}
}

// Load fetches habits and completions and replaces local state. No retry on
// failure; the caller decides whether and when to try again.
func (l *HabitLedger) Load(ctx context.Context) error {
	habits, err := l.store.GetHabits(ctx, l.userID)
	if err != nil {
		return err
	}
	completions, err := l.store.GetCompletions(ctx, l.userID)
	if err != nil {
		return err
	}

	byID := make(map[string]*models.Habit, len(habits))
	order := make([]string, 0, len(habits))
	for i := range habits {
		byID[habits[i].ID] = &habits[i]
		order = append(order, habits[i].ID)
	}
	days := make(map[string]map[string]struct{}, len(habits))
	for _, c := range completions {
		set, ok := days[c.HabitID]
		if !ok {
			set = map[string]struct{}{}
			days[c.HabitID] = set
		}
		set[c.Date] = struct{}{}
	}

	l.mu.Lock()
	l.habits = byID
	l.order = order
	l.completions = days
	l.mu.Unlock()
	return nil
}

// CreateHabit validates the draft before any I/O, persists it, then appends
// it locally.
func (l *HabitLedger) CreateHabit(ctx context.Context, draft models.HabitDraft) (*models.Habit, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if draft.XPValue < 1 || draft.XPValue > 100 {
		return nil, &ValidationError{Field: "xp_value", Reason: "must be between 1 and 100"}
	}

	category := draft.Category
	if category == "" {
		category = "general"
	}
	frequency := draft.Frequency
	if frequency == "" {
		frequency = models.FrequencyDaily
	}

	habit := &models.Habit{
		ExternalUserID: l.userID,
		Name:           name,
		Slug:           slug.Make(name),
		Description:    draft.Description,
		Category:       category,
		Color:          draft.Color,
		XPValue:        draft.XPValue,
		Frequency:      frequency,
		IsActive:       true,
	}
	if err := l.store.CreateHabit(ctx, habit); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.habits[habit.ID] = habit
	l.order = append(l.order, habit.ID)
	l.completions[habit.ID] = map[string]struct{}{}
	l.mu.Unlock()
	return habit, nil
}

// UpdateHabit applies a partial update. The ID never changes and recorded
// completions keep their XPGained snapshots regardless of an XPValue edit.
func (l *HabitLedger) UpdateHabit(ctx context.Context, habitID string, patch models.HabitPatch) error {
	l.mu.RLock()
	_, known := l.habits[habitID]
	l.mu.RUnlock()
	if !known {
		return ErrHabitNotFound
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if patch.XPValue != nil && (*patch.XPValue < 1 || *patch.XPValue > 100) {
		return &ValidationError{Field: "xp_value", Reason: "must be between 1 and 100"}
	}

	if err := l.store.UpdateHabit(ctx, habitID, patch); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	habit := l.habits[habitID]
	if habit == nil {
		return nil
	}
	if patch.Name != nil {
		habit.Name = strings.TrimSpace(*patch.Name)
		habit.Slug = slug.Make(habit.Name)
	}
	if patch.Description != nil {
		habit.Description = *patch.Description
	}
	if patch.Category != nil {
		habit.Category = *patch.Category
	}
	if patch.Color != nil {
		habit.Color = *patch.Color
	}
	if patch.XPValue != nil {
		habit.XPValue = *patch.XPValue
	}
	if patch.Frequency != nil {
		habit.Frequency = *patch.Frequency
	}
	if patch.IsActive != nil {
		habit.IsActive = *patch.IsActive
	}
	return nil
}

// Habit returns a copy of the habit, or ErrHabitNotFound.
func (l *HabitLedger) Habit(habitID string) (models.Habit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	habit, ok := l.habits[habitID]
	if !ok {
		return models.Habit{}, ErrHabitNotFound
	}
	return *habit, nil
}

// ActiveHabits lists active habits in creation order.
func (l *HabitLedger) ActiveHabits() []models.Habit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Habit, 0, len(l.order))
	for _, id := range l.order {
		if h := l.habits[id]; h != nil && h.IsActive {
			out = append(out, *h)
		}
	}
	return out
}

// IsCompleted reports whether the habit has a completion for the given day.
func (l *HabitLedger) IsCompleted(habitID, date string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.completions[habitID][date]
	return ok
}

// markCompleted records a confirmed completion locally and returns the
// resulting streak. Called by the progression service after the store write.
func (l *HabitLedger) markCompleted(habitID, date string, asOf time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.completions[habitID]
	if !ok {
		set = map[string]struct{}{}
		l.completions[habitID] = set
	}
	set[date] = struct{}{}
	current := streak.Compute(set, asOf)
	if h := l.habits[habitID]; h != nil {
		h.CurrentStreak = current
	}
	return current
}

// HabitStats summarizes one habit's history.
type HabitStats struct {
	CurrentStreak    int `json:"current_streak"`
	CompletionRate   int `json:"completion_rate"` // trailing 30 days, percent
	TotalCompletions int `json:"total_completions"`
}

// Stats computes streak and 30-day completion rate as of the given time. The
// rate is not adjusted for habit age: a week-old habit tops out around 23%.
func (l *HabitLedger) Stats(habitID string, asOf time.Time) (HabitStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.habits[habitID]; !ok {
		return HabitStats{}, ErrHabitNotFound
	}
	set := l.completions[habitID]
	return HabitStats{
		CurrentStreak:    streak.Compute(set, asOf),
		CompletionRate:   streak.Window30Rate(set, asOf),
		TotalCompletions: len(set),
	}, nil
}

// Streaks returns the current streak per habit, for achievement metrics.
func (l *HabitLedger) Streaks(asOf time.Time) map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int, len(l.habits))
	for id := range l.habits {
		out[id] = streak.Compute(l.completions[id], asOf)
	}
	return out
}

// HabitCount returns the number of habits ever created in this ledger view.
func (l *HabitLedger) HabitCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.habits)
}
