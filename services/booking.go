package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crossbox/crossbox/models"
)

// Check-in opens this long before the scheduled class start and stays open
// through the scheduled end.
const checkInOpensBefore = 30 * time.Minute

// BookingService owns the reservation lifecycle: booking with capacity
// enforcement, cancellation, and the time-gated check-in that feeds the
// streak engine.
type BookingService struct {
	db      *gorm.DB
	streaks *StreakService
	loc     *time.Location

	// now is swappable so the check-in window can be tested.
	now func() time.Time
}

// NewBookingService creates a booking service. Class times are interpreted in
// loc; pass nil for the server's local timezone.
func NewBookingService(db *gorm.DB, streaks *StreakService, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{db: db, streaks: streaks, loc: loc, now: time.Now}
}

// CheckInOutcome bundles the updated reservation with the streak transition so
// the API layer can surface both in one response.
type CheckInOutcome struct {
	Reservation models.Reservation `json:"reservation"`
	Streak      CheckInResult      `json:"streak"`
}

// CreateReservation books a spot in a class. The class row is locked at the
// top of the transaction so concurrent bookings for the same class serialize;
// the duplicate check and the guarded capacity increment both run behind that
// lock, so neither invariant can be raced past.
func (b *BookingService) CreateReservation(userID, classID uint) (*models.Reservation, error) {
	if userID == 0 || classID == 0 {
		return nil, fmt.Errorf("%w: missing user or class id", ErrInvalidInput)
	}

	var reservation models.Reservation
	err := b.db.Transaction(func(tx *gorm.DB) error {
		var class models.ClassSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, classID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		if err != nil {
			return fmt.Errorf("load class %d: %w", classID, err)
		}

		var existing int64
		err = tx.Model(&models.Reservation{}).
			Where("user_id = ? AND class_id = ? AND status <> ?",
				userID, classID, models.ReservationCancelled).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("check existing reservation: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateReservation
		}

		res := tx.Model(&models.ClassSession{}).
			Where("id = ? AND reserved_count < capacity", classID).
			UpdateColumn("reserved_count", gorm.Expr("reserved_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("increment reserved count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrClassFull
		}

		reservation = models.Reservation{
			ID:         uuid.NewString(),
			UserID:     userID,
			ClassID:    classID,
			ClassTitle: class.Title,
			Instructor: class.Instructor,
			ClassDate:  DateOnly(class.Date),
			StartTime:  class.StartTime,
			EndTime:    class.EndTime,
			Status:     models.ReservationConfirmed,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation releases the member's spot. Cancelling twice is rejected;
// cancelled reservations are never resurrected.
func (b *BookingService) CancelReservation(userID, classID uint) error {
	if userID == 0 || classID == 0 {
		return fmt.Errorf("%w: missing user or class id", ErrInvalidInput)
	}

	return b.db.Transaction(func(tx *gorm.DB) error {
		reservation, err := activeReservation(tx, userID, classID)
		if err != nil {
			return err
		}

		err = tx.Model(reservation).UpdateColumn("status", models.ReservationCancelled).Error
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}

		res := tx.Model(&models.ClassSession{}).
			Where("id = ? AND reserved_count > 0", classID).
			UpdateColumn("reserved_count", gorm.Expr("reserved_count - 1"))
		if res.Error != nil {
			return fmt.Errorf("decrement reserved count: %w", res.Error)
		}
		return nil
	})
}

// CheckIn marks attendance for a booked class. Allowed from thirty minutes
// before the scheduled start through the scheduled end; outside that window a
// CheckInWindowError is returned and the streak engine is not touched. A
// second check-in on the same reservation is rejected outright, distinct from
// the streak engine's own same-day no-op.
func (b *BookingService) CheckIn(userID, classID uint) (CheckInOutcome, error) {
	if userID == 0 || classID == 0 {
		return CheckInOutcome{}, fmt.Errorf("%w: missing user or class id", ErrInvalidInput)
	}

	var out CheckInOutcome
	err := b.db.Transaction(func(tx *gorm.DB) error {
		reservation, err := activeReservation(tx, userID, classID)
		if err != nil {
			return err
		}
		if reservation.Status == models.ReservationCheckedIn {
			return ErrAlreadyCheckedIn
		}

		// Gate on the live class times: the booking snapshot goes stale when
		// an admin reschedules the session.
		classDate := reservation.ClassDate
		startTime := reservation.StartTime
		endTime := reservation.EndTime
		var class models.ClassSession
		if err := tx.First(&class, reservation.ClassID).Error; err == nil {
			classDate = DateOnly(class.Date)
			startTime = class.StartTime
			endTime = class.EndTime
		}

		opens, closes, err := b.checkInWindow(classDate, startTime, endTime)
		if err != nil {
			return err
		}
		now := b.now()
		if now.Before(opens) {
			return &CheckInWindowError{OpensAt: opens, ClosesAt: closes, Wait: opens.Sub(now)}
		}
		if now.After(closes) {
			return &CheckInWindowError{OpensAt: opens, ClosesAt: closes}
		}

		checkedInAt := now
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", reservation.ID, models.ReservationConfirmed).
			Updates(map[string]interface{}{
				"status":        models.ReservationCheckedIn,
				"checked_in_at": checkedInAt,
			})
		if res.Error != nil {
			return fmt.Errorf("mark checked in: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race against another check-in of the same reservation.
			return ErrAlreadyCheckedIn
		}

		streakTx := &StreakService{db: tx}
		streak, err := streakTx.RecordCheckIn(userID, classDate)
		if err != nil {
			return err
		}

		reservation.Status = models.ReservationCheckedIn
		reservation.CheckedInAt = &checkedInAt
		out = CheckInOutcome{Reservation: *reservation, Streak: streak}
		return nil
	})
	if err != nil {
		return CheckInOutcome{}, err
	}
	return out, nil
}

// UpcomingReservations lists the member's active reservations from the given
// day forward, soonest first.
func (b *BookingService) UpcomingReservations(userID uint, from time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := b.db.
		Where("user_id = ? AND status <> ? AND class_date >= ?",
			userID, models.ReservationCancelled, DateOnly(from)).
		Order("class_date, start_time").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

func (b *BookingService) checkInWindow(date time.Time, startTime, endTime string) (opens, closes time.Time, err error) {
	start, err := combineDateTime(date, startTime, b.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := combineDateTime(date, endTime, b.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.Add(-checkInOpensBefore), end, nil
}

func activeReservation(tx *gorm.DB, userID, classID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := tx.
		Where("user_id = ? AND class_id = ? AND status <> ?",
			userID, classID, models.ReservationCancelled).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return &reservation, nil
}
