package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crossbox/crossbox/models"
)

// newTestDB opens a throwaway sqlite database and migrates the full schema.
// The pool is pinned to a single connection so concurrent test transactions
// serialize instead of tripping over sqlite's writer lock.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.ClassSession{},
		&models.Reservation{},
		&models.StreakState{},
		&models.WOD{},
		&models.WODResult{},
		&models.News{},
	)
	if err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Active: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedClass(t *testing.T, db *gorm.DB, date time.Time, start, end string, capacity int) models.ClassSession {
	t.Helper()
	c := models.ClassSession{
		Title:      "WOD Class",
		Discipline: "crossfit",
		Instructor: "Alex",
		Date:       DateOnly(date),
		StartTime:  start,
		EndTime:    end,
		Capacity:   capacity,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return c
}

// seedCheckIn inserts an already checked-in reservation, bypassing the booking
// flow, for tests that only care about downstream aggregation.
func seedCheckIn(t *testing.T, db *gorm.DB, userID, classID uint, date time.Time) {
	t.Helper()
	at := date.Add(10 * time.Hour)
	r := models.Reservation{
		ID:          uuid.NewString(),
		UserID:      userID,
		ClassID:     classID,
		ClassDate:   DateOnly(date),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      models.ReservationCheckedIn,
		CheckedInAt: &at,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
