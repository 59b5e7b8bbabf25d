package services

import (
	"context"
	"errors"
	"time"

	"habit-quest-system/leveling"
	"habit-quest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. Requires the connection to be
// opened with TranslateError so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	var habits []models.Habit
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("created_at ASC").
		Find(&habits).Error
	if err != nil {
		return nil, &PersistenceError{Op: "get habits", Err: err}
	}
	return habits, nil
}

func (s *GormStore) GetCompletions(ctx context.Context, userID string) ([]models.Completion, error) {
	var completions []models.Completion
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Find(&completions).Error
	if err != nil {
		return nil, &PersistenceError{Op: "get completions", Err: err}
	}
	return completions, nil
}

func (s *GormStore) CreateHabit(ctx context.Context, habit *models.Habit) error {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(habit).Error; err != nil {
			return err
		}
		prog, err := ensureProgressTx(tx, habit.ExternalUserID)
		if err != nil {
			return err
		}
		prog.TotalHabits++
		return tx.Save(prog).Error
	})
	if err != nil {
		return &PersistenceError{Op: "create habit", Err: err}
	}
	return nil
}

func (s *GormStore) UpdateHabit(ctx context.Context, habitID string, patch models.HabitPatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.XPValue != nil {
		updates["xp_value"] = *patch.XPValue
	}
	if patch.Frequency != nil {
		updates["frequency"] = *patch.Frequency
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.DB.WithContext(ctx).
		Model(&models.Habit{}).
		Where("id = ?", habitID).
		Updates(updates)
	if res.Error != nil {
		return &PersistenceError{Op: "update habit", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (s *GormStore) SetHabitIcon(ctx context.Context, habitID, iconURL string) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Habit{}).
		Where("id = ?", habitID).
		Update("icon_url", iconURL)
	if res.Error != nil {
		return &PersistenceError{Op: "set habit icon", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (s *GormStore) SetHabitStreak(ctx context.Context, habitID string, current int) error {
	err := s.DB.WithContext(ctx).
		Model(&models.Habit{}).
		Where("id = ?", habitID).
		Update("current_streak", current).Error
	if err != nil {
		return &PersistenceError{Op: "set habit streak", Err: err}
	}
	return nil
}

// RecordCompletion inserts the completion, the XP increment and the XP event
// in one transaction. The unique (habit_id, date) index is the final word on
// double submissions: a lost race comes back as ErrAlreadyCompleted.
func (s *GormStore) RecordCompletion(ctx context.Context, userID, habitID, date string, xpGained int) (int64, error) {
	var newTotal int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completion := models.Completion{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			HabitID:        habitID,
			Date:           date,
			XPGained:       xpGained,
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}

		prog, err := ensureProgressTx(tx, userID)
		if err != nil {
			return err
		}
		oldLevel := prog.Level
		prog.TotalXP += int64(xpGained)
		prog.TotalCompletions++
		prog.Level = leveling.LevelFromTotalXP(prog.TotalXP)
		if prog.Level > oldLevel {
			now := time.Now()
			prog.LastLevelUpAt = &now
		}
		if err := tx.Save(prog).Error; err != nil {
			return err
		}
		newTotal = prog.TotalXP

		event := models.XPEvent{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			HabitID:        &habitID,
			Amount:         xpGained,
			Source:         "habit",
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrAlreadyCompleted
		}
		return 0, &PersistenceError{Op: "record completion", Err: err}
	}
	return newTotal, nil
}

func (s *GormStore) GetUserXP(ctx context.Context, userID string) (int64, int, error) {
	prog, err := ensureProgressTx(s.DB.WithContext(ctx), userID)
	if err != nil {
		return 0, 0, &PersistenceError{Op: "get user xp", Err: err}
	}
	return prog.TotalXP, prog.Level, nil
}

func (s *GormStore) SetUserXP(ctx context.Context, userID string, totalXP int64, level int) error {
	err := s.DB.WithContext(ctx).
		Model(&models.UserProgress{}).
		Where("external_user_id = ?", userID).
		Updates(map[string]interface{}{"total_xp": totalXP, "level": level}).Error
	if err != nil {
		return &PersistenceError{Op: "set user xp", Err: err}
	}
	return nil
}

func (s *GormStore) GetUnlockedAchievements(ctx context.Context, userID string) (map[string]bool, error) {
	var rows []models.UserAchievement
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "get achievements", Err: err}
	}
	unlocked := make(map[string]bool, len(rows))
	for _, r := range rows {
		unlocked[r.Code] = true
	}
	return unlocked, nil
}

// UnlockAchievements persists new unlocks; conflicts are skipped so a
// concurrent unlock of the same code stays idempotent.
func (s *GormStore) UnlockAchievements(ctx context.Context, userID string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	rows := make([]models.UserAchievement, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, models.UserAchievement{
			ID:             uuid.NewString(),
			ExternalUserID: userID,
			Code:           code,
		})
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return &PersistenceError{Op: "unlock achievements", Err: err}
	}
	return nil
}

func (s *GormStore) GetRecentXPEvents(ctx context.Context, userID string, limit int) ([]models.XPEvent, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var events []models.XPEvent
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, &PersistenceError{Op: "get xp events", Err: err}
	}
	return events, nil
}

// ensureProgressTx fetches or creates the UserProgress row (idempotent).
// The insert uses ON CONFLICT DO NOTHING: two transactions racing to create
// a new user's row must not raise a duplicate-key error here, because the
// enclosing RecordCompletion transaction maps gorm.ErrDuplicatedKey onto
// ErrAlreadyCompleted — that translation is reserved for the completions
// unique index.
func ensureProgressTx(tx *gorm.DB, userID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := tx.Where("external_user_id = ?", userID).First(&prog).Error
	if err == nil {
		return &prog, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.UserProgress{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		TotalXP:        0,
		Level:          1,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&fresh)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return &fresh, nil
	}

	// Lost the insert race: another transaction committed the row first.
	if err := tx.Where("external_user_id = ?", userID).First(&prog).Error; err != nil {
		return nil, err
	}
	return &prog, nil
}
