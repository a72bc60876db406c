package models

import "time"

// StreakState tracks a member's consecutive-day training streak. One row per
// user, created lazily on first check-in, never deleted. LongestStreak is
// always >= CurrentStreak after any update.
type StreakState struct {
	UserID          uint       `gorm:"primaryKey" json:"user_id"`
	CurrentStreak   int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak   int        `gorm:"not null;default:0" json:"longest_streak"`
	LastCheckInDate *time.Time `gorm:"type:date" json:"last_check_in_date"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
