package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crossbox/crossbox/models"
)

// WODService serves the workout of the day and records member scores.
type WODService struct {
	db *gorm.DB
}

// NewWODService creates a WOD service backed by the given database.
func NewWODService(db *gorm.DB) *WODService {
	return &WODService{db: db}
}

// WODScore is the tagged-union score payload of a submission. Kind selects
// which value fields apply; exactly one interpretation is valid per result.
type WODScore struct {
	Kind        string `json:"kind" binding:"required"`
	TimeSeconds int    `json:"time_seconds"`
	Rounds      int    `json:"rounds"`
	Reps        int    `json:"reps"`
	Rx          bool   `json:"rx"`
}

// Validate rejects payloads that mix score interpretations or leave the
// selected one empty.
func (s WODScore) Validate() error {
	switch s.Kind {
	case models.WODScoreTime:
		if s.TimeSeconds <= 0 {
			return fmt.Errorf("%w: time result requires time_seconds", ErrInvalidInput)
		}
		if s.Rounds != 0 || s.Reps != 0 {
			return fmt.Errorf("%w: time result must not carry rounds or reps", ErrInvalidInput)
		}
	case models.WODScoreRoundsReps:
		if s.Rounds <= 0 && s.Reps <= 0 {
			return fmt.Errorf("%w: rounds_reps result requires rounds or reps", ErrInvalidInput)
		}
		if s.TimeSeconds != 0 {
			return fmt.Errorf("%w: rounds_reps result must not carry time_seconds", ErrInvalidInput)
		}
	case models.WODScoreReps:
		if s.Reps <= 0 {
			return fmt.Errorf("%w: reps result requires reps", ErrInvalidInput)
		}
		if s.TimeSeconds != 0 || s.Rounds != 0 {
			return fmt.Errorf("%w: reps result must not carry time or rounds", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown score kind %q", ErrInvalidInput, s.Kind)
	}
	return nil
}

// ByDate returns the WOD scheduled for the given calendar day.
func (w *WODService) ByDate(day time.Time) (models.WOD, error) {
	day = DateOnly(day)
	var wod models.WOD
	err := w.db.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).First(&wod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.WOD{}, ErrWODNotFound
	}
	if err != nil {
		return models.WOD{}, fmt.Errorf("load wod: %w", err)
	}
	return wod, nil
}

// SubmitResult records a member's score for a WOD. There is at most one
// result per (user, wod); submitting again overwrites the previous score.
func (w *WODService) SubmitResult(userID, wodID uint, displayName string, score WODScore) (models.WODResult, error) {
	if userID == 0 || wodID == 0 {
		return models.WODResult{}, fmt.Errorf("%w: missing user or wod id", ErrInvalidInput)
	}
	if err := score.Validate(); err != nil {
		return models.WODResult{}, err
	}

	var wod models.WOD
	if err := w.db.First(&wod, wodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.WODResult{}, ErrWODNotFound
		}
		return models.WODResult{}, fmt.Errorf("load wod %d: %w", wodID, err)
	}

	result := models.WODResult{
		WODID:       wodID,
		UserID:      userID,
		DisplayName: displayName,
		Kind:        score.Kind,
		TimeSeconds: score.TimeSeconds,
		Rounds:      score.Rounds,
		Reps:        score.Reps,
		Rx:          score.Rx,
	}
	err := w.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wod_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "kind", "time_seconds", "rounds", "reps", "rx", "updated_at",
		}),
	}).Create(&result).Error
	if err != nil {
		return models.WODResult{}, fmt.Errorf("save wod result: %w", err)
	}
	return result, nil
}

// Results lists all scores logged for one WOD.
func (w *WODService) Results(wodID uint) ([]models.WODResult, error) {
	var results []models.WODResult
	err := w.db.Where("wod_id = ?", wodID).Order("created_at").Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list wod results: %w", err)
	}
	return results, nil
}

// UserResults lists one member's score history, newest first.
func (w *WODService) UserResults(userID uint, limit int) ([]models.WODResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var results []models.WODResult
	err := w.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list user wod results: %w", err)
	}
	return results, nil
}
