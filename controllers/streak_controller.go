package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// StreakController exposes streak state and the app-open reconciliation.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController creates a new controller instance.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// Status returns the member's current and longest streak.
func (s *StreakController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	state, err := s.streaks.Status(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"current_streak":     state.CurrentStreak,
		"longest_streak":     state.LongestStreak,
		"last_check_in_date": state.LastCheckInDate,
	})
}

// Reconcile is called once when the app comes to the foreground. It detects
// streaks that decayed while the app was closed and returns the value to show.
func (s *StreakController) Reconcile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	current, err := s.streaks.ReconcileOnOpen(userID, time.Now())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"current_streak": current})
}
