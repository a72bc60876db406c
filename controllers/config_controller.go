package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/crossbox/crossbox/config"
	"github.com/crossbox/crossbox/utils"
)

// ConfigController exposes the public bootstrap configuration the mobile
// client reads on launch.
type ConfigController struct{}

// NewConfigController creates a new ConfigController instance.
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// GetAppConfig returns the public studio settings and booking rules.
func (c *ConfigController) GetAppConfig(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"studio_name":              cfg.StudioName,
		"studio_notice":            cfg.StudioNotice,
		"timezone":                 cfg.Timezone,
		"check_in_opens_min_early": 30,
		"google_login_enabled":     cfg.GoogleClientID != "",
	})
}
