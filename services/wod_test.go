package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crossbox/crossbox/models"
)

func TestWODScoreValidate(t *testing.T) {
	cases := []struct {
		name  string
		score WODScore
		valid bool
	}{
		{"time ok", WODScore{Kind: models.WODScoreTime, TimeSeconds: 315}, true},
		{"time missing seconds", WODScore{Kind: models.WODScoreTime}, false},
		{"time with reps", WODScore{Kind: models.WODScoreTime, TimeSeconds: 315, Reps: 10}, false},
		{"rounds_reps ok", WODScore{Kind: models.WODScoreRoundsReps, Rounds: 12, Reps: 7}, true},
		{"rounds only ok", WODScore{Kind: models.WODScoreRoundsReps, Rounds: 12}, true},
		{"rounds_reps empty", WODScore{Kind: models.WODScoreRoundsReps}, false},
		{"rounds_reps with time", WODScore{Kind: models.WODScoreRoundsReps, Rounds: 12, TimeSeconds: 60}, false},
		{"reps ok", WODScore{Kind: models.WODScoreReps, Reps: 150}, true},
		{"reps empty", WODScore{Kind: models.WODScoreReps}, false},
		{"reps with rounds", WODScore{Kind: models.WODScoreReps, Reps: 150, Rounds: 3}, false},
		{"unknown kind", WODScore{Kind: "calories", Reps: 10}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.score.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestByDate(t *testing.T) {
	db := newTestDB(t)
	w := NewWODService(db)

	wod := models.WOD{
		Date:      day(2024, time.July, 4),
		Title:     "Murph",
		ScoreType: models.WODScoreTime,
	}
	require.NoError(t, db.Create(&wod).Error)

	got, err := w.ByDate(day(2024, time.July, 4).Add(15 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, "Murph", got.Title)

	_, err = w.ByDate(day(2024, time.July, 5))
	require.ErrorIs(t, err, ErrWODNotFound)
}

func TestSubmitResultOverwrites(t *testing.T) {
	db := newTestDB(t)
	w := NewWODService(db)
	u := seedUser(t, db, "maria")

	wod := models.WOD{Date: day(2024, time.July, 4), Title: "Murph", ScoreType: models.WODScoreTime}
	require.NoError(t, db.Create(&wod).Error)

	_, err := w.SubmitResult(u.ID, wod.ID, "maria", WODScore{Kind: models.WODScoreTime, TimeSeconds: 2400})
	require.NoError(t, err)

	// Resubmission replaces the previous score instead of adding a row.
	_, err = w.SubmitResult(u.ID, wod.ID, "maria", WODScore{Kind: models.WODScoreTime, TimeSeconds: 2250, Rx: true})
	require.NoError(t, err)

	results, err := w.Results(wod.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 2250, results[0].TimeSeconds)
	require.True(t, results[0].Rx)
}

func TestSubmitResultUnknownWOD(t *testing.T) {
	db := newTestDB(t)
	w := NewWODService(db)
	u := seedUser(t, db, "maria")

	_, err := w.SubmitResult(u.ID, 42, "maria", WODScore{Kind: models.WODScoreReps, Reps: 100})
	require.ErrorIs(t, err, ErrWODNotFound)
}

func TestUserResultsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	w := NewWODService(db)
	u := seedUser(t, db, "maria")

	for i := 0; i < 3; i++ {
		wod := models.WOD{Date: day(2024, time.July, 1+i), Title: "Daily", ScoreType: models.WODScoreReps}
		require.NoError(t, db.Create(&wod).Error)
		result := models.WODResult{
			UserID:    u.ID,
			WODID:     wod.ID,
			Kind:      models.WODScoreReps,
			Reps:      100 + i,
			CreatedAt: day(2024, time.July, 1+i),
		}
		require.NoError(t, db.Create(&result).Error)
	}

	results, err := w.UserResults(u.ID, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 102, results[0].Reps)
	require.Equal(t, 101, results[1].Reps)
}
