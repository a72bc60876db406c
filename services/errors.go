package services

import (
	"errors"
	"fmt"
	"time"
)

// Business-rule violations are returned as typed errors so the API layer can
// map each to a distinct response code. Store failures propagate wrapped and
// are never retried here.
var (
	ErrClassFull            = errors.New("class is full")
	ErrDuplicateReservation = errors.New("an active reservation for this class already exists")
	ErrAlreadyCheckedIn     = errors.New("reservation is already checked in")
	ErrClassNotFound        = errors.New("class session not found")
	ErrReservationNotFound  = errors.New("no active reservation for this class")
	ErrWODNotFound          = errors.New("no WOD scheduled for this date")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidInput         = errors.New("invalid input")
)

// CheckInWindowError rejects a check-in attempted outside the allowed window.
// Wait carries how long until the window opens (zero when the window has
// already closed).
type CheckInWindowError struct {
	OpensAt  time.Time
	ClosesAt time.Time
	Wait     time.Duration
}

func (e *CheckInWindowError) Error() string {
	if e.Wait > 0 {
		return fmt.Sprintf("check-in opens in %s", e.Wait.Round(time.Minute))
	}
	return "check-in window has closed"
}

// TooEarly reports whether the attempt happened before the window opened.
func (e *CheckInWindowError) TooEarly() bool {
	return e.Wait > 0
}
