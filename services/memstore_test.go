package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"habit-quest-system/leveling"
	"habit-quest-system/models"
	"habit-quest-system/streak"
)

func dayKeyOffset(t time.Time, offset int) string {
	return streak.DayKey(t.AddDate(0, 0, offset))
}

// memStore is the in-memory Store used by the service tests. It mirrors the
// GormStore contract, including the duplicate (habit, date) rejection and the
// atomic XP increment, and can be told to fail to simulate a dead backend.
type memStore struct {
	mu sync.Mutex

	habits      map[string]*models.Habit
	completions map[string]map[string]models.Completion // habitID -> date -> record
	totalXP     map[string]int64
	level       map[string]int
	unlocked    map[string]map[string]bool
	events      map[string][]models.XPEvent

	nextID int

	failAll bool // every call returns a PersistenceError
}

func newMemStore() *memStore {
	return &memStore{
		habits:      map[string]*models.Habit{},
		completions: map[string]map[string]models.Completion{},
		totalXP:     map[string]int64{},
		level:       map[string]int{},
		unlocked:    map[string]map[string]bool{},
		events:      map[string][]models.XPEvent{},
	}
}

func (m *memStore) fail(op string) error {
	return &PersistenceError{Op: op, Err: errors.New("backend unavailable")}
}

func (m *memStore) GetHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.fail("get habits")
	}
	var out []models.Habit
	for _, h := range m.habits {
		if h.ExternalUserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *memStore) GetCompletions(ctx context.Context, userID string) ([]models.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.fail("get completions")
	}
	var out []models.Completion
	for _, byDate := range m.completions {
		for _, c := range byDate {
			if c.ExternalUserID == userID {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memStore) CreateHabit(ctx context.Context, habit *models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.fail("create habit")
	}
	m.nextID++
	habit.ID = fmt.Sprintf("habit-%d", m.nextID)
	clone := *habit
	m.habits[habit.ID] = &clone
	return nil
}

func (m *memStore) UpdateHabit(ctx context.Context, habitID string, patch models.HabitPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.fail("update habit")
	}
	h, ok := m.habits[habitID]
	if !ok {
		return ErrHabitNotFound
	}
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.XPValue != nil {
		h.XPValue = *patch.XPValue
	}
	if patch.Category != nil {
		h.Category = *patch.Category
	}
	if patch.IsActive != nil {
		h.IsActive = *patch.IsActive
	}
	return nil
}

func (m *memStore) SetHabitIcon(ctx context.Context, habitID, iconURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok {
		return ErrHabitNotFound
	}
	h.IconURL = iconURL
	return nil
}

func (m *memStore) SetHabitStreak(ctx context.Context, habitID string, current int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.habits[habitID]; ok {
		h.CurrentStreak = current
	}
	return nil
}

func (m *memStore) RecordCompletion(ctx context.Context, userID, habitID, date string, xpGained int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return 0, m.fail("record completion")
	}
	byDate, ok := m.completions[habitID]
	if !ok {
		byDate = map[string]models.Completion{}
		m.completions[habitID] = byDate
	}
	if _, dup := byDate[date]; dup {
		return 0, ErrAlreadyCompleted
	}
	byDate[date] = models.Completion{
		ExternalUserID: userID,
		HabitID:        habitID,
		Date:           date,
		XPGained:       xpGained,
	}
	m.totalXP[userID] += int64(xpGained)
	m.level[userID] = leveling.LevelFromTotalXP(m.totalXP[userID])
	m.events[userID] = append(m.events[userID], models.XPEvent{
		ExternalUserID: userID,
		HabitID:        &habitID,
		Amount:         xpGained,
		Source:         "habit",
	})
	return m.totalXP[userID], nil
}

func (m *memStore) GetUserXP(ctx context.Context, userID string) (int64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return 0, 0, m.fail("get user xp")
	}
	level := m.level[userID]
	if level == 0 {
		level = 1
	}
	return m.totalXP[userID], level, nil
}

func (m *memStore) SetUserXP(ctx context.Context, userID string, totalXP int64, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.fail("set user xp")
	}
	m.totalXP[userID] = totalXP
	m.level[userID] = level
	return nil
}

func (m *memStore) GetUnlockedAchievements(ctx context.Context, userID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.fail("get achievements")
	}
	out := map[string]bool{}
	for code := range m.unlocked[userID] {
		out[code] = true
	}
	return out, nil
}

func (m *memStore) UnlockAchievements(ctx context.Context, userID string, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return m.fail("unlock achievements")
	}
	set, ok := m.unlocked[userID]
	if !ok {
		set = map[string]bool{}
		m.unlocked[userID] = set
	}
	for _, code := range codes {
		set[code] = true
	}
	return nil
}

func (m *memStore) GetRecentXPEvents(ctx context.Context, userID string, limit int) ([]models.XPEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, m.fail("get xp events")
	}
	events := m.events[userID]
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]models.XPEvent, len(events))
	copy(out, events)
	return out, nil
}

// completionRecord returns the stored record for assertions.
func (m *memStore) completionRecord(habitID, date string) (models.Completion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.completions[habitID][date]
	return c, ok
}

func (m *memStore) completionCount(habitID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completions[habitID])
}
