package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// StatsController provides studio statistics for the admin console.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the studio: member count, today's
// bookings and check-ins, and how many members hold an active streak.
// Individual query failures fall back to zero instead of failing the endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var memberCount int64
	var reservationsToday int64
	var checkInsToday int64
	var activeStreaks int64

	today := services.DateOnly(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	if err := s.db.Model(&models.User{}).Where("active = ?", true).Count(&memberCount).Error; err != nil {
		memberCount = 0
	}

	if err := s.db.Model(&models.Reservation{}).
		Where("class_date >= ? AND class_date < ? AND status <> ?",
			today, tomorrow, models.ReservationCancelled).
		Count(&reservationsToday).Error; err != nil {
		reservationsToday = 0
	}

	if err := s.db.Model(&models.Reservation{}).
		Where("class_date >= ? AND class_date < ? AND status = ?",
			today, tomorrow, models.ReservationCheckedIn).
		Count(&checkInsToday).Error; err != nil {
		checkInsToday = 0
	}

	if err := s.db.Model(&models.StreakState{}).
		Where("current_streak > 0").
		Count(&activeStreaks).Error; err != nil {
		activeStreaks = 0
	}

	utils.Success(ctx, gin.H{
		"member_count":       memberCount,
		"reservations_today": reservationsToday,
		"check_ins_today":    checkInsToday,
		"active_streaks":     activeStreaks,
	})
}

// ListMembers returns the member roster for the admin console.
func (s *StatsController) ListMembers(ctx *gin.Context) {
	var members []models.User
	if err := s.db.Order("id").Limit(500).Find(&members).Error; err != nil {
		utils.Error(ctx, 500, 50018, "failed to load members")
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	utils.Success(ctx, gin.H{"members": out})
}
