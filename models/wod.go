package models

import "time"

// WOD result kinds. Exactly one interpretation applies per submission.
const (
	WODScoreTime       = "time"        // finish time in seconds (lower is better)
	WODScoreRoundsReps = "rounds_reps" // AMRAP: completed rounds plus extra reps
	WODScoreReps       = "reps"        // total reps
)

// WOD is the workout of the day. One per calendar date.
type WOD struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ScoreType   string    `gorm:"size:16;not null" json:"score_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WODResult is one member's score for a WOD. At most one per (user, wod);
// resubmission overwrites. Kind selects which score fields are meaningful.
type WODResult struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WODID       uint      `gorm:"index:idx_wod_user,unique;not null" json:"wod_id"`
	UserID      uint      `gorm:"index:idx_wod_user,unique;index;not null" json:"user_id"`
	DisplayName string    `gorm:"size:64" json:"display_name"`
	Kind        string    `gorm:"size:16;not null" json:"kind"`
	TimeSeconds int       `json:"time_seconds,omitempty"`
	Rounds      int       `json:"rounds,omitempty"`
	Reps        int       `json:"reps,omitempty"`
	Rx          bool      `json:"rx"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
