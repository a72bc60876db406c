package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crossbox/crossbox/models"
)

// StreakService maintains the consecutive-day training counter. Two update
// paths exist: an event-driven increment on check-in, and a reconciliation
// pass on app open that catches decay (nothing writes on a day the member
// skips, so decay can only be detected lazily).
type StreakService struct {
	db *gorm.DB
}

// NewStreakService creates a streak service backed by the given database.
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{db: db}
}

// CheckInResult reports the old-to-new streak transition caused by a check-in.
// Advanced is false only for the same-day no-op.
type CheckInResult struct {
	Previous int  `json:"previous"`
	Current  int  `json:"current"`
	Longest  int  `json:"longest"`
	Advanced bool `json:"advanced"`
}

// Milestone returns the highest threshold newly reached by this transition:
// 10 when a multiple of ten was crossed, 5 for a multiple of five, 0 otherwise.
// Mapping thresholds to celebratory copy is the API layer's concern.
func (r CheckInResult) Milestone() int {
	if !r.Advanced || r.Current <= r.Previous {
		return 0
	}
	switch {
	case r.Current%10 == 0:
		return 10
	case r.Current%5 == 0:
		return 5
	}
	return 0
}

// RecordCheckIn advances the streak for a check-in on the given calendar day.
// A member can advance at most once per day no matter how many classes they
// attend; repeated calls for the same day are no-ops. The read-modify-write
// runs inside a transaction so concurrent check-ins cannot double-increment.
func (s *StreakService) RecordCheckIn(userID uint, day time.Time) (CheckInResult, error) {
	if userID == 0 {
		return CheckInResult{}, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	day = DateOnly(day)

	var out CheckInResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadStreakForUpdate(tx, userID)
		if err != nil {
			return err
		}
		out.Previous = state.CurrentStreak

		if state.LastCheckInDate != nil {
			switch daysBetween(*state.LastCheckInDate, day) {
			case 0:
				// Already counted today.
				out.Current = state.CurrentStreak
				out.Longest = state.LongestStreak
				out.Advanced = false
				return nil
			case 1:
				state.CurrentStreak++
			default:
				// Missed a day (or clock went backwards): streak restarts at 1.
				state.CurrentStreak = 1
			}
		} else {
			state.CurrentStreak = 1
		}

		if state.CurrentStreak > state.LongestStreak {
			state.LongestStreak = state.CurrentStreak
		}
		state.LastCheckInDate = &day
		if err := saveStreak(tx, state); err != nil {
			return err
		}

		out.Current = state.CurrentStreak
		out.Longest = state.LongestStreak
		out.Advanced = true
		return nil
	})
	if err != nil {
		return CheckInResult{}, err
	}
	return out, nil
}

// ReconcileOnOpen resets a decayed streak. Called once per app foreground.
// A gap of one day means "yesterday" and is still a valid continuation
// window; the streak only breaks once a full day passed with no check-in.
func (s *StreakService) ReconcileOnOpen(userID uint, today time.Time) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	today = DateOnly(today)

	current := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := loadStreakForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if state.LastCheckInDate == nil {
			current = state.CurrentStreak
			return nil
		}
		if daysBetween(*state.LastCheckInDate, today) >= 2 && state.CurrentStreak != 0 {
			state.CurrentStreak = 0
			if err := saveStreak(tx, state); err != nil {
				return err
			}
		}
		current = state.CurrentStreak
		return nil
	})
	if err != nil {
		return 0, err
	}
	return current, nil
}

// Status returns the member's streak state, zero-valued when none exists yet.
func (s *StreakService) Status(userID uint) (models.StreakState, error) {
	state, err := loadStreak(s.db, userID)
	if err != nil {
		return models.StreakState{}, err
	}
	return *state, nil
}

func loadStreak(tx *gorm.DB, userID uint) (*models.StreakState, error) {
	var state models.StreakState
	err := tx.Where("user_id = ?", userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.StreakState{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streak state: %w", err)
	}
	return &state, nil
}

// loadStreakForUpdate row-locks the read so the transactional update paths are
// a serialized read-modify-write.
func loadStreakForUpdate(tx *gorm.DB, userID uint) (*models.StreakState, error) {
	return loadStreak(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

// saveStreak upserts the per-user row; the conflict target makes concurrent
// first-time check-ins converge on a single record.
func saveStreak(tx *gorm.DB, state *models.StreakState) error {
	state.UpdatedAt = time.Now()
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak", "longest_streak", "last_check_in_date", "updated_at",
		}),
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("save streak state: %w", err)
	}
	return nil
}
