package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// BookingController exposes the reservation lifecycle to the app.
type BookingController struct {
	db       *gorm.DB
	bookings *services.BookingService
}

// NewBookingController creates a new controller instance.
func NewBookingController(db *gorm.DB, bookings *services.BookingService) *BookingController {
	return &BookingController{db: db, bookings: bookings}
}

// Book reserves a spot in a class for the authenticated member.
func (b *BookingController) Book(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	classID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	reservation, err := b.bookings.CreateReservation(userID, classID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(classCachePrefix)
	go b.sendConfirmation(userID, reservation)

	utils.Success(ctx, gin.H{"reservation": reservation})
}

// Cancel releases the member's reservation for a class.
func (b *BookingController) Cancel(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	classID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	if err := b.bookings.CancelReservation(userID, classID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(classCachePrefix)
	utils.Success(ctx, gin.H{"message": "reservation cancelled"})
}

// CheckIn marks attendance and reports the streak transition. A milestone
// number (5 or 10 tier) is mapped to congratulatory copy here, not in the
// streak engine.
func (b *BookingController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	classID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	outcome, err := b.bookings.CheckIn(userID, classID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"reservation": outcome.Reservation,
		"streak":      outcome.Streak,
		"message":     milestoneMessage(outcome.Streak),
	})
}

// MyReservations lists the member's upcoming bookings.
func (b *BookingController) MyReservations(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	reservations, err := b.bookings.UpcomingReservations(userID, time.Now())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"reservations": reservations})
}

func milestoneMessage(r services.CheckInResult) string {
	switch r.Milestone() {
	case 10:
		return fmt.Sprintf("%d days straight, you're unstoppable!", r.Current)
	case 5:
		return fmt.Sprintf("%d-day streak, keep showing up!", r.Current)
	default:
		if r.Advanced && r.Current > r.Previous {
			return fmt.Sprintf("Day %d of your streak.", r.Current)
		}
		return ""
	}
}

// sendConfirmation emails the booking summary. Best-effort; failures are only logged.
func (b *BookingController) sendConfirmation(userID uint, r *models.Reservation) {
	var user models.User
	if err := b.db.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}
	body := fmt.Sprintf("You're booked for %s on %s at %s. See you there!",
		r.ClassTitle, r.ClassDate.Format("Mon, 2 Jan"), r.StartTime)
	if err := utils.SendMail(user.Email, "Booking confirmed", body); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Debugf("booking confirmation mail failed user=%d err=%v", userID, err)
		}
	}
}
