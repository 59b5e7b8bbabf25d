package models

import "time"

// XPEvent records a single XP gain (the feed behind the "recent gains"
// toasts). Amount is pre-calculated at award time to avoid recomputation.
type XPEvent struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"index;not null" json:"external_user_id"`
	HabitID        *string `gorm:"index" json:"habit_id,omitempty"` // nil = non-habit source

	Amount int    `json:"amount" gorm:"not null"`
	Source string `json:"source" gorm:"type:varchar(32);default:'habit'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
