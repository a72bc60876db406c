package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

const classCachePrefix = "cache:classes:day:"

// ClassController serves the class timetable and the admin CRUD behind it.
type ClassController struct {
	db *gorm.DB
}

// NewClassController creates a new controller instance.
func NewClassController(db *gorm.DB) *ClassController {
	return &ClassController{db: db}
}

// ListClasses returns the timetable for one day (default today). The day's
// list is cached briefly; reservation counts trade a little staleness for a
// cheap hot path.
func (c *ClassController) ListClasses(ctx *gin.Context) {
	day := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40008, "invalid date, want YYYY-MM-DD")
			return
		}
		day = parsed
	}
	dayStart := services.DateOnly(day)

	cacheKey := classCachePrefix + dayStart.Format("2006-01-02")
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var classes []models.ClassSession
	err := c.db.
		Where("date >= ? AND date < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Order("start_time").
		Find(&classes).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to load timetable")
		return
	}

	body := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"classes": classes}}
	utils.CacheSetJSON(cacheKey, body, 30*time.Second)
	ctx.JSON(http.StatusOK, body)
}

// GetClass returns one session with its live reservation count.
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	var class models.ClassSession
	if err := c.db.First(&class, id).Error; err != nil {
		respondServiceError(ctx, services.ErrClassNotFound)
		return
	}

	utils.Success(ctx, gin.H{"class": class, "spots_left": class.SpotsLeft()})
}

type classRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=128"`
	Discipline string `json:"discipline"`
	Level      string `json:"level"`
	Instructor string `json:"instructor"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required,min=1"`
}

func (r classRequest) parse() (models.ClassSession, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return models.ClassSession{}, err
	}
	for _, hhmm := range []string{r.StartTime, r.EndTime} {
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return models.ClassSession{}, err
		}
	}
	return models.ClassSession{
		Title:      strings.TrimSpace(r.Title),
		Discipline: r.Discipline,
		Level:      r.Level,
		Instructor: r.Instructor,
		Date:       services.DateOnly(date),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Capacity:   r.Capacity,
	}, nil
}

// CreateClass adds a session to the timetable. Admin only.
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req classRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}
	class, err := req.parse()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid date or time format")
		return
	}

	if err := c.db.Create(&class).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50009, "failed to create class")
		return
	}

	utils.InvalidateByPrefix(classCachePrefix)
	utils.Success(ctx, gin.H{"class": class})
}

// UpdateClass edits a session. Capacity may not drop below the spots already
// reserved. Admin only.
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	var req classRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}
	updated, err := req.parse()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid date or time format")
		return
	}

	var class models.ClassSession
	if err := c.db.First(&class, id).Error; err != nil {
		respondServiceError(ctx, services.ErrClassNotFound)
		return
	}
	if updated.Capacity < class.ReservedCount {
		utils.Error(ctx, http.StatusConflict, 40906, "capacity below current reservations")
		return
	}

	class.Title = updated.Title
	class.Discipline = updated.Discipline
	class.Level = updated.Level
	class.Instructor = updated.Instructor
	class.Date = updated.Date
	class.StartTime = updated.StartTime
	class.EndTime = updated.EndTime
	class.Capacity = updated.Capacity

	if err := c.db.Save(&class).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to update class")
		return
	}

	utils.InvalidateByPrefix(classCachePrefix)
	utils.Success(ctx, gin.H{"class": class})
}

// DeleteClass removes a session that has no active reservations. Admin only.
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid class id")
		return
	}

	var class models.ClassSession
	if err := c.db.First(&class, id).Error; err != nil {
		respondServiceError(ctx, services.ErrClassNotFound)
		return
	}
	if class.ReservedCount > 0 {
		utils.Error(ctx, http.StatusConflict, 40907, "class has active reservations")
		return
	}

	if err := c.db.Delete(&class).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to delete class")
		return
	}

	utils.InvalidateByPrefix(classCachePrefix)
	utils.Success(ctx, gin.H{"message": "class deleted"})
}
