package models

import "time"

// Completion records one habit completion for one local calendar day.
// Date is "YYYY-MM-DD" (user-local), never a timestamp: exactly one row may
// exist per (habit, day), enforced by the composite unique index so a
// double-tap race is rejected by the database, not just by the ledger check.
type Completion struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	HabitID        string `gorm:"not null;uniqueIndex:idx_completions_habit_date" json:"habit_id"`
	Date           string `gorm:"type:varchar(10);not null;uniqueIndex:idx_completions_habit_date" json:"date"`

	// XPGained snapshots the habit's XPValue at completion time. Immutable.
	XPGained int `gorm:"not null" json:"xp_gained"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
