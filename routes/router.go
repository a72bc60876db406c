package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crossbox/crossbox/config"
	"github.com/crossbox/crossbox/controllers"
	"github.com/crossbox/crossbox/middleware"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, loc *time.Location) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	streakService := services.NewStreakService(db)
	bookingService := services.NewBookingService(db, streakService, loc)
	rankingService := services.NewRankingService(db)
	wodService := services.NewWODService(db)

	authController := controllers.NewAuthController(db)
	classController := controllers.NewClassController(db)
	bookingController := controllers.NewBookingController(db, bookingService)
	streakController := controllers.NewStreakController(streakService)
	rankingController := controllers.NewRankingController(rankingService)
	wodController := controllers.NewWODController(db, wodService)
	newsController := controllers.NewNewsController(db)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/google/login", authController.GoogleRedirect)
	authGroup.GET("/google/callback", authController.GoogleCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public class schedule and news feed
	api.GET("/classes", classController.ListClasses)
	api.GET("/classes/:id", classController.GetClass)
	api.GET("/news", newsController.List)
	api.GET("/news/:id", newsController.Get)
	api.GET("/config/app", configController.GetAppConfig)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/classes/:id/reservations", bookingController.Book)
	protected.DELETE("/classes/:id/reservations", bookingController.Cancel)
	protected.POST("/classes/:id/check-in", bookingController.CheckIn)
	protected.GET("/reservations", bookingController.MyReservations)

	protected.GET("/streak", streakController.Status)
	protected.POST("/streak/reconcile", streakController.Reconcile)

	protected.GET("/ranking", rankingController.Leaderboard)
	protected.GET("/ranking/me", rankingController.MyRanking)

	protected.GET("/wod", wodController.Today)
	protected.POST("/wods/:id/results", wodController.SubmitResult)
	protected.GET("/wods/:id/results", wodController.Results)
	protected.GET("/users/me/wod-results", wodController.MyResults)

	admin := api.Group("")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())

	admin.POST("/classes", classController.CreateClass)
	admin.PUT("/classes/:id", classController.UpdateClass)
	admin.DELETE("/classes/:id", classController.DeleteClass)
	admin.POST("/wods", wodController.CreateWOD)
	admin.PUT("/wods/:id", wodController.UpdateWOD)
	admin.DELETE("/wods/:id", wodController.DeleteWOD)
	admin.POST("/news", newsController.Create)
	admin.PUT("/news/:id", newsController.Update)
	admin.DELETE("/news/:id", newsController.Delete)
	admin.GET("/stats", statsController.GetStats)
	admin.GET("/members", statsController.ListMembers)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
