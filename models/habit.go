package models

// HabitFrequency describes how often a habit is expected to be completed.
// Only "daily" is interpreted by the streak logic today; the column exists so
// weekly habits can land without a migration.
type HabitFrequency string

const (
	FrequencyDaily  HabitFrequency = "daily"
	FrequencyWeekly HabitFrequency = "weekly"
)

// Habit is a user-defined quest. XPValue is the reward granted per
// completion; completions snapshot it, so editing XPValue never rewrites
// history.
type Habit struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"` // links to profile service

	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"index" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"type:varchar(32);default:'general'" json:"category"`
	IconURL     string         `gorm:"type:text" json:"icon_url"`
	Color       string         `gorm:"size:10" json:"color"`
	XPValue     int            `gorm:"not null;check:xp_value BETWEEN 1 AND 100" json:"xp_value"`
	Frequency   HabitFrequency `gorm:"type:varchar(16);default:'daily'" json:"frequency"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`

	// Denormalized streak snapshot for list views; refreshed on completion and
	// by the nightly scheduler. Never trusted for progression math.
	CurrentStreak int `gorm:"default:0" json:"current_streak"`

	Timestamps
}

// HabitDraft carries the caller-supplied fields for habit creation.
type HabitDraft struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Color       string         `json:"color"`
	XPValue     int            `json:"xp_value"`
	Frequency   HabitFrequency `json:"frequency"`
}

// HabitPatch is a partial update; nil fields are left untouched. ID and
// recorded completions are never altered through a patch.
type HabitPatch struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Color       *string         `json:"color"`
	XPValue     *int            `json:"xp_value"`
	Frequency   *HabitFrequency `json:"frequency"`
	IsActive    *bool           `json:"is_active"`
}
