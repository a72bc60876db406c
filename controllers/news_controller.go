package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/utils"
)

const newsCacheKey = "cache:news:list"

// NewsController serves studio announcements and their admin CRUD.
type NewsController struct {
	db *gorm.DB
}

// NewNewsController creates a new controller instance.
func NewNewsController(db *gorm.DB) *NewsController {
	return &NewsController{db: db}
}

// List returns announcements, pinned first, newest after.
func (n *NewsController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(newsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var items []models.News
	err := n.db.Order("pinned DESC, created_at DESC").Limit(50).Find(&items).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load news")
		return
	}

	body := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"news": items}}
	utils.CacheSetJSON(newsCacheKey, body, 5*time.Minute)
	ctx.JSON(http.StatusOK, body)
}

// Get returns one announcement.
func (n *NewsController) Get(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid news id")
		return
	}

	var item models.News
	if err := n.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "news not found")
		return
	}

	utils.Success(ctx, gin.H{"news": item})
}

type newsRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Body     string `json:"body" binding:"required"`
	ImageURL string `json:"image_url"`
	Pinned   bool   `json:"pinned"`
}

// Create publishes an announcement. Body HTML is sanitized. Admin only.
func (n *NewsController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	item := models.News{
		AuthorID: userID,
		Title:    strings.TrimSpace(req.Title),
		Body:     utils.Sanitize(req.Body),
		ImageURL: strings.TrimSpace(req.ImageURL),
		Pinned:   req.Pinned,
	}
	if err := n.db.Create(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to create news")
		return
	}

	utils.InvalidateByPrefix(newsCacheKey)
	utils.Success(ctx, gin.H{"news": item})
}

// Update edits an announcement. Admin only.
func (n *NewsController) Update(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid news id")
		return
	}

	var req newsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	var item models.News
	if err := n.db.First(&item, id).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "news not found")
		return
	}

	item.Title = strings.TrimSpace(req.Title)
	item.Body = utils.Sanitize(req.Body)
	item.ImageURL = strings.TrimSpace(req.ImageURL)
	item.Pinned = req.Pinned

	if err := n.db.Save(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to update news")
		return
	}

	utils.InvalidateByPrefix(newsCacheKey)
	utils.Success(ctx, gin.H{"news": item})
}

// Delete removes an announcement. Admin only.
func (n *NewsController) Delete(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid news id")
		return
	}

	if err := n.db.Delete(&models.News{}, id).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to delete news")
		return
	}

	utils.InvalidateByPrefix(newsCacheKey)
	utils.Success(ctx, gin.H{"message": "news deleted"})
}
