package models

import "time"

// Reservation statuses. A reservation is never resurrected once cancelled.
const (
	ReservationConfirmed = "confirmed"
	ReservationCheckedIn = "checked_in"
	ReservationCancelled = "cancelled"
)

// Reservation is one member's booking of a class session. Class metadata is
// denormalized onto the row so booking history survives timetable edits.
type Reservation struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	ClassID     uint       `gorm:"index;not null" json:"class_id"`
	ClassTitle  string     `gorm:"size:128" json:"class_title"`
	Instructor  string     `gorm:"size:64" json:"instructor"`
	ClassDate   time.Time  `gorm:"type:date;index;not null" json:"class_date"`
	StartTime   string     `gorm:"size:5" json:"start_time"`
	EndTime     string     `gorm:"size:5" json:"end_time"`
	Status      string     `gorm:"size:16;index;not null" json:"status"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActive reports whether the reservation still occupies a class spot.
func (r *Reservation) IsActive() bool {
	return r.Status != ReservationCancelled
}
