package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crossbox/crossbox/services"
	"github.com/crossbox/crossbox/utils"
)

// RankingController serves the monthly leaderboard. Results are derived from
// raw attendance rows on every request; nothing here is cached so the board
// always matches the stored events.
type RankingController struct {
	ranking *services.RankingService
}

// NewRankingController creates a new controller instance.
func NewRankingController(ranking *services.RankingService) *RankingController {
	return &RankingController{ranking: ranking}
}

// Leaderboard returns the current month's ranking. An explicit ?month=YYYY-MM
// selects a past month.
func (r *RankingController) Leaderboard(ctx *gin.Context) {
	from, to, ok := monthRange(ctx)
	if !ok {
		return
	}

	ranked, err := r.ranking.ComputeMonthlyRanking(from, to)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"month": from.Format("2006-01"), "ranking": ranked})
}

// MyRanking returns the authenticated member's leaderboard entry, including
// the points needed to climb one rank.
func (r *RankingController) MyRanking(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	from, to, ok := monthRange(ctx)
	if !ok {
		return
	}

	data, err := r.ranking.UserRankingData(userID, from, to)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"month": from.Format("2006-01"), "ranking": data})
}

func monthRange(ctx *gin.Context) (from, to time.Time, ok bool) {
	if raw := ctx.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid month, want YYYY-MM")
			return time.Time{}, time.Time{}, false
		}
		from, to = services.MonthBounds(parsed)
		return from, to, true
	}
	from, to = services.MonthBounds(time.Now())
	return from, to, true
}
