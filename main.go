package main

import (
	"time"

	"github.com/crossbox/crossbox/config"
	"github.com/crossbox/crossbox/models"
	"github.com/crossbox/crossbox/routes"
	"github.com/crossbox/crossbox/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ClassSession{},
		&models.Reservation{},
		&models.StreakState{},
		&models.WOD{},
		&models.WODResult{},
		&models.News{},
	)

	// All class times are interpreted in the studio's timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		utils.Sugar.Warnf("invalid timezone %q, falling back to local: %v", cfg.Timezone, err)
		loc = time.Local
	}

	r := routes.SetupRouter(db, loc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
