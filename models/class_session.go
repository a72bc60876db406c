package models

import "time"

// ClassSession is a single scheduled class occurrence on the studio timetable.
// ReservedCount is maintained transactionally with reservation writes and must
// never exceed Capacity.
type ClassSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	Discipline    string    `gorm:"size:32;index" json:"discipline"`
	Level         string    `gorm:"size:32" json:"level"`
	Instructor    string    `gorm:"size:64" json:"instructor"`
	Date          time.Time `gorm:"type:date;index;not null" json:"date"`
	StartTime     string    `gorm:"size:5;not null" json:"start_time"` // local "HH:MM"
	EndTime       string    `gorm:"size:5;not null" json:"end_time"`   // local "HH:MM"
	Capacity      int       `gorm:"not null" json:"capacity"`
	ReservedCount int       `gorm:"not null;default:0" json:"reserved_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SpotsLeft returns remaining capacity, never negative.
func (c *ClassSession) SpotsLeft() int {
	left := c.Capacity - c.ReservedCount
	if left < 0 {
		return 0
	}
	return left
}
