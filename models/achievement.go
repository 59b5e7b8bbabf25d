package models

import (
	"time"
)

// AchievementDef: static threshold config. Code is the stable key clients
// reference (e.g., "level_25"); Kind+Value is the metric that unlocks it.
type AchievementDef struct {
	Code        string // e.g., "level_25", "xp_5000", "streak_30", "habits_10"
	Name        string
	Description string
	Icon        string
	Rarity      string // common, uncommon, rare, epic, legendary
	Kind        string // "level", "xp", "streak", "habits"
	Value       int64  // threshold the metric must reach
}

// UserAchievement: an unlocked instance. Once unlocked, never revoked —
// TotalXP is monotonic so the underlying metric cannot regress.
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_user_achievement_code" json:"external_user_id"`
	Code           string    `gorm:"not null;uniqueIndex:idx_user_achievement_code" json:"code"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

// AchievementThresholds is the full unlock table, sorted ascending per kind.
var AchievementThresholds = []AchievementDef{
	{Code: "level_5", Name: "Rising Star", Description: "Reached level 5", Icon: "⭐", Rarity: "common", Kind: "level", Value: 5},
	{Code: "level_10", Name: "Dedicated Hunter", Description: "Reached level 10", Icon: "🎯", Rarity: "uncommon", Kind: "level", Value: 10},
	{Code: "level_25", Name: "Elite Warrior", Description: "Reached level 25", Icon: "⚔️", Rarity: "rare", Kind: "level", Value: 25},
	{Code: "level_50", Name: "Master Hunter", Description: "Reached level 50", Icon: "👑", Rarity: "epic", Kind: "level", Value: 50},
	{Code: "level_100", Name: "Legendary Champion", Description: "Reached level 100", Icon: "🏆", Rarity: "legendary", Kind: "level", Value: 100},

	{Code: "xp_1000", Name: "First Milestone", Description: "Earned 1,000 total XP", Icon: "🚀", Rarity: "common", Kind: "xp", Value: 1000},
	{Code: "xp_5000", Name: "XP Collector", Description: "Earned 5,000 total XP", Icon: "💎", Rarity: "uncommon", Kind: "xp", Value: 5000},
	{Code: "xp_10000", Name: "Experience Master", Description: "Earned 10,000 total XP", Icon: "🌟", Rarity: "rare", Kind: "xp", Value: 10000},
	{Code: "xp_25000", Name: "XP Legend", Description: "Earned 25,000 total XP", Icon: "⚡", Rarity: "epic", Kind: "xp", Value: 25000},
	{Code: "xp_50000", Name: "Ultimate Achiever", Description: "Earned 50,000 total XP", Icon: "🔥", Rarity: "legendary", Kind: "xp", Value: 50000},

	{Code: "streak_7", Name: "Week Warrior", Description: "7-day streak on a habit", Icon: "📅", Rarity: "common", Kind: "streak", Value: 7},
	{Code: "streak_30", Name: "Monthly Master", Description: "30-day streak on a habit", Icon: "🗓️", Rarity: "uncommon", Kind: "streak", Value: 30},
	{Code: "streak_100", Name: "Consistency King", Description: "100-day streak on a habit", Icon: "👑", Rarity: "rare", Kind: "streak", Value: 100},
	{Code: "streak_365", Name: "Year-Long Legend", Description: "365-day streak on a habit", Icon: "🎊", Rarity: "legendary", Kind: "streak", Value: 365},

	{Code: "habits_5", Name: "Habit Builder", Description: "Created 5 habits", Icon: "🔨", Rarity: "common", Kind: "habits", Value: 5},
	{Code: "habits_10", Name: "Routine Master", Description: "Created 10 habits", Icon: "⚙️", Rarity: "uncommon", Kind: "habits", Value: 10},
	{Code: "habits_25", Name: "Life Optimizer", Description: "Created 25 habits", Icon: "🏛️", Rarity: "rare", Kind: "habits", Value: 25},
	{Code: "habits_50", Name: "Transformation Guru", Description: "Created 50 habits", Icon: "🦋", Rarity: "epic", Kind: "habits", Value: 50},
}
