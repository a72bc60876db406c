package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
)

func TestStreakBonus(t *testing.T) {
	cases := []struct {
		streak int
		want   int
	}{
		{0, 0}, {4, 0}, {5, 5}, {9, 5}, {10, 15}, {30, 15},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StreakBonus(tc.streak), "streak %d", tc.streak)
	}
}

func TestPoints(t *testing.T) {
	// 12 check-ins, 8 WOD results, 7-day streak: 12 + 16 + 5.
	require.Equal(t, 33, Points(12, 8, 7))
	require.Equal(t, 0, Points(0, 0, 0))
	require.Equal(t, 15, Points(0, 0, 10))
	require.Equal(t, 1, Points(1, 0, 1))
}

func seedStreakState(t *testing.T, db *gorm.DB, userID uint, current int) {
	t.Helper()
	last := day(2024, time.January, 20)
	state := models.StreakState{
		UserID:          userID,
		CurrentStreak:   current,
		LongestStreak:   current,
		LastCheckInDate: &last,
	}
	require.NoError(t, db.Create(&state).Error)
}

func seedWODResult(t *testing.T, db *gorm.DB, userID uint, date time.Time) {
	t.Helper()
	wod := models.WOD{Date: DateOnly(date), Title: "Fran", ScoreType: models.WODScoreTime}
	err := db.Where("date = ?", DateOnly(date)).FirstOrCreate(&wod).Error
	require.NoError(t, err)
	result := models.WODResult{
		UserID:      userID,
		WODID:       wod.ID,
		Kind:        models.WODScoreTime,
		TimeSeconds: 300,
	}
	require.NoError(t, db.Create(&result).Error)
}

func TestComputeMonthlyRanking(t *testing.T) {
	db := newTestDB(t)
	r := NewRankingService(db)
	from, to := MonthBounds(day(2024, time.January, 15))

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	seedUser(t, db, "idle") // no activity, must not appear

	class := seedClass(t, db, day(2024, time.January, 10), "10:00", "11:00", 20)

	// alice: 3 check-ins, 1 WOD, 10-day streak = 3 + 2 + 15 = 20
	for i := 0; i < 3; i++ {
		seedCheckIn(t, db, alice.ID, class.ID, day(2024, time.January, 10+i))
	}
	seedWODResult(t, db, alice.ID, day(2024, time.January, 10))
	seedStreakState(t, db, alice.ID, 10)

	// bob: 4 check-ins, no WODs, no streak bonus = 4
	for i := 0; i < 4; i++ {
		seedCheckIn(t, db, bob.ID, class.ID, day(2024, time.January, 5+i))
	}
	seedStreakState(t, db, bob.ID, 2)

	// carol: 2 check-ins, 1 WOD = 4, ties with bob but enumerates after him
	for i := 0; i < 2; i++ {
		seedCheckIn(t, db, carol.ID, class.ID, day(2024, time.January, 8+i))
	}
	seedWODResult(t, db, carol.ID, day(2024, time.January, 8))

	ranked, err := r.ComputeMonthlyRanking(from, to)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	require.Equal(t, alice.ID, ranked[0].UserID)
	require.Equal(t, uint(1), ranked[0].Rank)
	require.Equal(t, 20, ranked[0].Points)
	require.Equal(t, 3, ranked[0].CheckIns)
	require.Equal(t, 1, ranked[0].WODs)

	// Stable tie-break: bob and carol both score 4, bob keeps the lower rank.
	require.Equal(t, bob.ID, ranked[1].UserID)
	require.Equal(t, uint(2), ranked[1].Rank)
	require.Equal(t, 4, ranked[1].Points)
	require.Equal(t, carol.ID, ranked[2].UserID)
	require.Equal(t, uint(3), ranked[2].Rank)
	require.Equal(t, 4, ranked[2].Points)
}

func TestComputeMonthlyRankingIgnoresOutOfMonthActivity(t *testing.T) {
	db := newTestDB(t)
	r := NewRankingService(db)
	from, to := MonthBounds(day(2024, time.February, 1))

	alice := seedUser(t, db, "alice")
	class := seedClass(t, db, day(2024, time.February, 5), "10:00", "11:00", 20)

	seedCheckIn(t, db, alice.ID, class.ID, day(2024, time.February, 5))
	// January and March activity must not leak into February's board.
	seedCheckIn(t, db, alice.ID, class.ID, day(2024, time.January, 31))
	seedCheckIn(t, db, alice.ID, class.ID, day(2024, time.March, 1))
	seedWODResult(t, db, alice.ID, day(2024, time.January, 15))

	ranked, err := r.ComputeMonthlyRanking(from, to)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.Equal(t, 1, ranked[0].CheckIns)
	require.Equal(t, 0, ranked[0].WODs)
	require.Equal(t, 1, ranked[0].Points)
}

func TestComputeMonthlyRankingIgnoresUnattendedReservations(t *testing.T) {
	db := newTestDB(t)
	r := NewRankingService(db)
	streaks := NewStreakService(db)
	bookings := NewBookingService(db, streaks, time.UTC)
	from, to := MonthBounds(day(2024, time.April, 1))

	alice := seedUser(t, db, "alice")
	class := seedClass(t, db, day(2024, time.April, 10), "10:00", "11:00", 20)

	// Booked but never checked in: zero points.
	_, err := bookings.CreateReservation(alice.ID, class.ID)
	require.NoError(t, err)

	ranked, err := r.ComputeMonthlyRanking(from, to)
	require.NoError(t, err)
	require.Empty(t, ranked)
}

func TestUserRankingData(t *testing.T) {
	db := newTestDB(t)
	r := NewRankingService(db)
	from, to := MonthBounds(day(2024, time.January, 1))

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	dave := seedUser(t, db, "dave")
	class := seedClass(t, db, day(2024, time.January, 10), "10:00", "11:00", 20)

	for i := 0; i < 5; i++ {
		seedCheckIn(t, db, alice.ID, class.ID, day(2024, time.January, 10+i))
	}
	seedCheckIn(t, db, bob.ID, class.ID, day(2024, time.January, 10))

	top, err := r.UserRankingData(alice.ID, from, to)
	require.NoError(t, err)
	require.True(t, top.Ranked)
	require.Equal(t, uint(1), top.Rank)
	require.Equal(t, 0, top.PointsToNextRank)
	require.Equal(t, 2, top.TotalRanked)

	second, err := r.UserRankingData(bob.ID, from, to)
	require.NoError(t, err)
	require.True(t, second.Ranked)
	require.Equal(t, uint(2), second.Rank)
	require.Equal(t, 5, second.PointsToNextRank) // 5 - 1 + 1

	// No activity: synthetic entry one past the end, with the points needed
	// to enter the board.
	unranked, err := r.UserRankingData(dave.ID, from, to)
	require.NoError(t, err)
	require.False(t, unranked.Ranked)
	require.Equal(t, uint(3), unranked.Rank)
	require.Equal(t, 0, unranked.Points)
	require.Equal(t, 2, unranked.PointsToNextRank) // lowest is 1
	require.Equal(t, 2, unranked.TotalRanked)
}
