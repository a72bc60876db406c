package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/crossbox/crossbox/models"
)

// Scoring constants. Deliberately hardcoded business rules, not configuration.
const (
	pointsPerCheckIn    = 1
	pointsPerWOD        = 2
	streakBonusMinor    = 5  // awarded from 5 consecutive days
	streakBonusMajor    = 15 // awarded from 10 consecutive days
	minorBonusThreshold = 5
	majorBonusThreshold = 10
)

// StreakBonus maps the current streak to its monthly bonus points.
func StreakBonus(streak int) int {
	switch {
	case streak >= majorBonusThreshold:
		return streakBonusMajor
	case streak >= minorBonusThreshold:
		return streakBonusMinor
	default:
		return 0
	}
}

// Points computes a member's monthly score. Pure function.
func Points(checkIns, wods, streak int) int {
	return checkIns*pointsPerCheckIn + wods*pointsPerWOD + StreakBonus(streak)
}

// RankedUser is one leaderboard row. Derived on demand, never persisted.
type RankedUser struct {
	Rank      uint   `json:"rank"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Points    int    `json:"points"`
	CheckIns  int    `json:"check_ins"`
	WODs      int    `json:"wods"`
	Streak    int    `json:"streak"`
}

// UserRanking is one member's view of the leaderboard, including the gap to
// the next rank up.
type UserRanking struct {
	RankedUser
	TotalRanked      int  `json:"total_ranked"`
	PointsToNextRank int  `json:"points_to_next_rank"`
	Ranked           bool `json:"ranked"`
}

// RankingService derives the monthly leaderboard from raw reservation and WOD
// result rows. It recomputes from scratch on every call; correctness over
// cleverness at studio scale.
type RankingService struct {
	db *gorm.DB
}

// NewRankingService creates a ranking service backed by the given database.
func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{db: db}
}

// ComputeMonthlyRanking scores every active member over [from, to) and returns
// the leaderboard sorted by points. Month bounds are parameters so tests can
// pin the month. checkIns and wods are month-scoped; the streak is the
// member's current global streak. Members with no activity this month are
// excluded. The sort is stable: equal-point members keep enumeration order,
// and ranks are dense starting at 1.
func (r *RankingService) ComputeMonthlyRanking(from, to time.Time) ([]RankedUser, error) {
	var users []models.User
	if err := r.db.Where("active = ?", true).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	ranked := make([]RankedUser, 0, len(users))
	for _, u := range users {
		var checkIns int64
		err := r.db.Model(&models.Reservation{}).
			Where("user_id = ? AND status = ? AND class_date >= ? AND class_date < ?",
				u.ID, models.ReservationCheckedIn, from, to).
			Count(&checkIns).Error
		if err != nil {
			return nil, fmt.Errorf("count check-ins for user %d: %w", u.ID, err)
		}

		var wods int64
		err = r.db.Model(&models.WODResult{}).
			Joins("JOIN wods ON wods.id = wod_results.wod_id").
			Where("wod_results.user_id = ? AND wods.date >= ? AND wods.date < ?", u.ID, from, to).
			Count(&wods).Error
		if err != nil {
			return nil, fmt.Errorf("count wod results for user %d: %w", u.ID, err)
		}

		streak, err := currentStreak(r.db, u.ID)
		if err != nil {
			return nil, err
		}

		points := Points(int(checkIns), int(wods), streak)
		if points == 0 && checkIns == 0 {
			continue
		}

		ranked = append(ranked, RankedUser{
			UserID:    u.ID,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Points:    points,
			CheckIns:  int(checkIns),
			WODs:      int(wods),
			Streak:    streak,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	for i := range ranked {
		ranked[i].Rank = uint(i + 1)
	}
	return ranked, nil
}

// UserRankingData returns one member's leaderboard entry. A member with no
// activity this month gets a synthetic entry ranked one past the end of the
// list, with the points needed to enter the board.
func (r *RankingService) UserRankingData(userID uint, from, to time.Time) (UserRanking, error) {
	ranked, err := r.ComputeMonthlyRanking(from, to)
	if err != nil {
		return UserRanking{}, err
	}

	for i, entry := range ranked {
		if entry.UserID != userID {
			continue
		}
		toNext := 0
		if i > 0 {
			toNext = ranked[i-1].Points - entry.Points + 1
		}
		return UserRanking{
			RankedUser:       entry,
			TotalRanked:      len(ranked),
			PointsToNextRank: toNext,
			Ranked:           true,
		}, nil
	}

	toNext := 1
	if n := len(ranked); n > 0 {
		toNext = ranked[n-1].Points + 1
	}
	return UserRanking{
		RankedUser: RankedUser{
			Rank:   uint(len(ranked) + 1),
			UserID: userID,
			Points: Points(0, 0, 0),
		},
		TotalRanked:      len(ranked),
		PointsToNextRank: toNext,
		Ranked:           false,
	}, nil
}

func currentStreak(db *gorm.DB, userID uint) (int, error) {
	var state models.StreakState
	err := db.Where("user_id = ?", userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load streak for user %d: %w", userID, err)
	}
	return state.CurrentStreak, nil
}
