package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crossbox/crossbox/models"
)

func TestCreateReservationEnforcesCapacity(t *testing.T) {
	db := newTestDB(t)
	streaks := NewStreakService(db)
	b := NewBookingService(db, streaks, time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", 2)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	u3 := seedUser(t, db, "u3")

	_, err := b.CreateReservation(u1.ID, class.ID)
	require.NoError(t, err)
	_, err = b.CreateReservation(u2.ID, class.ID)
	require.NoError(t, err)

	_, err = b.CreateReservation(u3.ID, class.ID)
	require.ErrorIs(t, err, ErrClassFull)

	var got models.ClassSession
	require.NoError(t, db.First(&got, class.ID).Error)
	require.Equal(t, 2, got.ReservedCount)
}

func TestCreateReservationRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", 10)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)
	_, err = b.CreateReservation(u.ID, class.ID)
	require.ErrorIs(t, err, ErrDuplicateReservation)

	var got models.ClassSession
	require.NoError(t, db.First(&got, class.ID).Error)
	require.Equal(t, 1, got.ReservedCount)
}

func TestCreateReservationUnknownClass(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, 999)
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestConcurrentBookingNeverOvershootsCapacity(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	const capacity = 5
	const contenders = 20
	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", capacity)

	users := make([]models.User, contenders)
	for i := range users {
		users[i] = seedUser(t, db, "u"+string(rune('a'+i)))
	}

	errs := make([]error, contenders)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.CreateReservation(users[i].ID, class.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrClassFull)
		}
	}
	require.Equal(t, capacity, succeeded)

	var got models.ClassSession
	require.NoError(t, db.First(&got, class.ID).Error)
	require.Equal(t, capacity, got.ReservedCount)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("class_id = ? AND status = ?", class.ID, models.ReservationConfirmed).
		Count(&count).Error)
	require.EqualValues(t, capacity, count)
}

func TestConcurrentSameUserBookingCreatesOneReservation(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", 10)
	u := seedUser(t, db, "u1")

	// A double-tapped book button must yield one reservation and one rejection,
	// never two confirmed rows.
	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.CreateReservation(u.ID, class.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrDuplicateReservation)
		}
	}
	require.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("user_id = ? AND class_id = ? AND status <> ?",
			u.ID, class.ID, models.ReservationCancelled).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	var got models.ClassSession
	require.NoError(t, db.First(&got, class.ID).Error)
	require.Equal(t, 1, got.ReservedCount)
}

func TestCancelReservationReleasesSpot(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", 1)
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")

	_, err := b.CreateReservation(u1.ID, class.ID)
	require.NoError(t, err)
	_, err = b.CreateReservation(u2.ID, class.ID)
	require.ErrorIs(t, err, ErrClassFull)

	require.NoError(t, b.CancelReservation(u1.ID, class.ID))

	// The freed spot is immediately bookable again.
	_, err = b.CreateReservation(u2.ID, class.ID)
	require.NoError(t, err)

	// Cancelling twice finds no active reservation.
	err = b.CancelReservation(u1.ID, class.ID)
	require.ErrorIs(t, err, ErrReservationNotFound)

	var got models.ClassSession
	require.NoError(t, db.First(&got, class.ID).Error)
	require.Equal(t, 1, got.ReservedCount)
}

func TestCancelledMemberCannotRebookOwnCancelledRow(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "18:00", "19:00", 5)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)
	require.NoError(t, b.CancelReservation(u.ID, class.ID))

	// Re-booking creates a fresh reservation rather than reviving the old one.
	fresh, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReservationConfirmed, fresh.Status)

	var count int64
	require.NoError(t, db.Model(&models.Reservation{}).
		Where("user_id = ? AND class_id = ?", u.ID, class.ID).
		Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCheckInWindow(t *testing.T) {
	db := newTestDB(t)
	streaks := NewStreakService(db)
	b := NewBookingService(db, streaks, time.UTC)

	classDay := day(2024, time.May, 1)
	class := seedClass(t, db, classDay, "10:00", "11:00", 10)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)

	at := func(hhmm string) func() time.Time {
		parsed, perr := time.Parse("15:04", hhmm)
		require.NoError(t, perr)
		return func() time.Time {
			return classDay.Add(time.Duration(parsed.Hour())*time.Hour +
				time.Duration(parsed.Minute())*time.Minute)
		}
	}

	// 09:15 is fifteen minutes before the window opens.
	b.now = at("09:15")
	_, err = b.CheckIn(u.ID, class.ID)
	var winErr *CheckInWindowError
	require.ErrorAs(t, err, &winErr)
	require.True(t, winErr.TooEarly())
	require.Equal(t, 15*time.Minute, winErr.Wait)

	// 11:30 is past the scheduled end.
	b.now = at("11:30")
	_, err = b.CheckIn(u.ID, class.ID)
	winErr = nil
	require.ErrorAs(t, err, &winErr)
	require.False(t, winErr.TooEarly())

	// 09:30 opens the window exactly.
	b.now = at("09:30")
	out, err := b.CheckIn(u.ID, class.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReservationCheckedIn, out.Reservation.Status)
	require.NotNil(t, out.Reservation.CheckedInAt)
	require.Equal(t, 1, out.Streak.Current)
	require.True(t, out.Streak.Advanced)
}

func TestCheckInUsesRescheduledClassTimes(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	classDay := day(2024, time.May, 1)
	class := seedClass(t, db, classDay, "10:00", "11:00", 10)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)

	// Admin moves the session to the afternoon after the booking was made.
	require.NoError(t, db.Model(&class).
		Updates(map[string]interface{}{"start_time": "15:00", "end_time": "16:00"}).Error)

	// 10:30 was inside the original window but is hours before the new one.
	b.now = func() time.Time { return classDay.Add(10*time.Hour + 30*time.Minute) }
	_, err = b.CheckIn(u.ID, class.ID)
	var winErr *CheckInWindowError
	require.ErrorAs(t, err, &winErr)
	require.True(t, winErr.TooEarly())

	// 15:10 is inside the new window but after the original one closed.
	b.now = func() time.Time { return classDay.Add(15*time.Hour + 10*time.Minute) }
	out, err := b.CheckIn(u.ID, class.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReservationCheckedIn, out.Reservation.Status)
}

func TestCheckInTwiceRejected(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	classDay := day(2024, time.May, 1)
	class := seedClass(t, db, classDay, "10:00", "11:00", 10)
	u := seedUser(t, db, "u1")

	_, err := b.CreateReservation(u.ID, class.ID)
	require.NoError(t, err)
	b.now = func() time.Time { return classDay.Add(10 * time.Hour) }

	_, err = b.CheckIn(u.ID, class.ID)
	require.NoError(t, err)
	_, err = b.CheckIn(u.ID, class.ID)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInWithoutReservation(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)

	class := seedClass(t, db, day(2024, time.May, 1), "10:00", "11:00", 10)
	u := seedUser(t, db, "u1")

	_, err := b.CheckIn(u.ID, class.ID)
	require.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCheckInFeedsStreakAcrossDays(t *testing.T) {
	db := newTestDB(t)
	streaks := NewStreakService(db)
	b := NewBookingService(db, streaks, time.UTC)
	u := seedUser(t, db, "u1")

	// Attend class on two consecutive days through the real booking flow.
	for i := 0; i < 2; i++ {
		classDay := day(2024, time.May, 1+i)
		class := seedClass(t, db, classDay, "10:00", "11:00", 10)
		_, err := b.CreateReservation(u.ID, class.ID)
		require.NoError(t, err)

		b.now = func() time.Time { return classDay.Add(10 * time.Hour) }
		out, err := b.CheckIn(u.ID, class.ID)
		require.NoError(t, err)
		require.Equal(t, i+1, out.Streak.Current)
	}

	state, err := streaks.Status(u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, state.CurrentStreak)
}

func TestUpcomingReservationsSkipsCancelled(t *testing.T) {
	db := newTestDB(t)
	b := NewBookingService(db, NewStreakService(db), time.UTC)
	u := seedUser(t, db, "u1")

	early := seedClass(t, db, day(2024, time.May, 2), "09:00", "10:00", 10)
	late := seedClass(t, db, day(2024, time.May, 3), "18:00", "19:00", 10)
	dropped := seedClass(t, db, day(2024, time.May, 4), "18:00", "19:00", 10)

	for _, c := range []models.ClassSession{late, early, dropped} {
		_, err := b.CreateReservation(u.ID, c.ID)
		require.NoError(t, err)
	}
	require.NoError(t, b.CancelReservation(u.ID, dropped.ID))

	got, err := b.UpcomingReservations(u.ID, day(2024, time.May, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, early.ID, got[0].ClassID) // soonest first
	require.Equal(t, late.ID, got[1].ClassID)
}
