package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crossbox/crossbox/middleware"
	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// getUserID extracts the authenticated member id set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func getUserName(ctx *gin.Context) string {
	if v, exists := ctx.Get(middleware.ContextNameKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps a service error onto the uniform JSON envelope.
// Business-rule violations get distinct codes; anything unrecognized is a 500.
func respondServiceError(ctx *gin.Context, err error) {
	var windowErr *services.CheckInWindowError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrClassNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, err.Error())
	case errors.Is(err, services.ErrReservationNotFound):
		utils.Error(ctx, http.StatusNotFound, 40403, err.Error())
	case errors.Is(err, services.ErrWODNotFound):
		utils.Error(ctx, http.StatusNotFound, 40404, err.Error())
	case errors.Is(err, services.ErrClassFull):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrDuplicateReservation):
		utils.Error(ctx, http.StatusConflict, 40902, err.Error())
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.Error(ctx, http.StatusConflict, 40903, err.Error())
	case errors.As(err, &windowErr):
		utils.Respond(ctx, http.StatusConflict, 40904, windowErr.Error(), gin.H{
			"opens_at":  windowErr.OpensAt,
			"closes_at": windowErr.ClosesAt,
		})
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("request failed: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
	}
}
