package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// WODController serves the workout of the day and score logging.
type WODController struct {
	db   *gorm.DB
	wods *services.WODService
}

// NewWODController creates a new controller instance.
func NewWODController(db *gorm.DB, wods *services.WODService) *WODController {
	return &WODController{db: db, wods: wods}
}

// Today returns the WOD for today, or for ?date=YYYY-MM-DD.
func (w *WODController) Today(ctx *gin.Context) {
	day := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40008, "invalid date, want YYYY-MM-DD")
			return
		}
		day = parsed
	}

	wod, err := w.wods.ByDate(day)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"wod": wod})
}

// SubmitResult logs the member's score for a WOD. Resubmitting replaces the
// previous score.
func (w *WODController) SubmitResult(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	wodID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid wod id")
		return
	}

	var score services.WODScore
	if err := ctx.ShouldBindJSON(&score); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	result, err := w.wods.SubmitResult(userID, wodID, getUserName(ctx), score)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"result": result})
}

// Results lists all scores logged for one WOD, the whiteboard view.
func (w *WODController) Results(ctx *gin.Context) {
	wodID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid wod id")
		return
	}

	results, err := w.wods.Results(wodID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"results": results})
}

// MyResults lists the member's score history.
func (w *WODController) MyResults(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	results, err := w.wods.UserResults(userID, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"results": results})
}

type wodRequest struct {
	Date        string `json:"date" binding:"required"`
	Title       string `json:"title" binding:"required,min=1,max=128"`
	Description string `json:"description"`
	ScoreType   string `json:"score_type" binding:"required"`
}

func (r wodRequest) parse() (models.WOD, bool) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return models.WOD{}, false
	}
	switch r.ScoreType {
	case models.WODScoreTime, models.WODScoreRoundsReps, models.WODScoreReps:
	default:
		return models.WOD{}, false
	}
	return models.WOD{
		Date:        services.DateOnly(date),
		Title:       r.Title,
		Description: r.Description,
		ScoreType:   r.ScoreType,
	}, true
}

// CreateWOD programs the workout for a date. Admin only; one WOD per day.
func (w *WODController) CreateWOD(ctx *gin.Context) {
	var req wodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}
	wod, ok := req.parse()
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid date or score type")
		return
	}

	if err := w.db.Create(&wod).Error; err != nil {
		utils.Error(ctx, http.StatusConflict, 40908, "a WOD already exists for this date")
		return
	}

	utils.Success(ctx, gin.H{"wod": wod})
}

// UpdateWOD edits a programmed workout. Admin only.
func (w *WODController) UpdateWOD(ctx *gin.Context) {
	wodID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid wod id")
		return
	}

	var req wodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}
	updated, ok := req.parse()
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid date or score type")
		return
	}

	var wod models.WOD
	if err := w.db.First(&wod, wodID).Error; err != nil {
		respondServiceError(ctx, services.ErrWODNotFound)
		return
	}

	wod.Date = updated.Date
	wod.Title = updated.Title
	wod.Description = updated.Description
	wod.ScoreType = updated.ScoreType

	if err := w.db.Save(&wod).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update WOD")
		return
	}

	utils.Success(ctx, gin.H{"wod": wod})
}

// DeleteWOD removes a programmed workout and its results. Admin only.
func (w *WODController) DeleteWOD(ctx *gin.Context) {
	wodID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid wod id")
		return
	}

	var wod models.WOD
	if err := w.db.First(&wod, wodID).Error; err != nil {
		respondServiceError(ctx, services.ErrWODNotFound)
		return
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wod_id = ?", wodID).Delete(&models.WODResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&wod).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to delete WOD")
		return
	}

	utils.Success(ctx, gin.H{"message": "wod deleted"})
}
