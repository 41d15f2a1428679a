package service

import (
	"context"
	"log"
	"strings"
	"time"

	"streetbite/internal/model"
	"streetbite/internal/repository"
)

// EngagementLedger derives XP, level and login streaks from user actions.
// It is the only writer of a user's engagement fields.
type EngagementLedger struct {
	userRepo repository.UserRepository
	loc      *time.Location // calendar days for streaks are counted here
	now      func() time.Time
}

func NewEngagementLedger(userRepo repository.UserRepository, loc *time.Location) *EngagementLedger {
	if loc == nil {
		loc = time.Local
	}
	return &EngagementLedger{
		userRepo: userRepo,
		loc:      loc,
		now:      time.Now,
	}
}

// AwardXP adds the action's points to the user and recomputes the level.
// A daily_login also advances the streak:
//   - last check-in yesterday: streak+1
//   - last check-in today: unchanged
//   - otherwise: reset to 1
func (l *EngagementLedger) AwardXP(ctx context.Context, userID int64, action string) (*model.User, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return nil, model.NewValidation("action", "is required")
	}
	points := model.XPForAction(action)
	today := model.CivilDate(l.now(), l.loc)

	user, err := l.userRepo.UpdateEngagement(ctx, userID, func(u *model.User) error {
		u.XP += points
		u.Level = model.CalculateLevel(u.XP)

		if action == model.ActionDailyLogin {
			u.Streak = model.NextStreak(u.Streak, u.LastCheckIn, today)
			u.LastCheckIn = &today
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[EngagementLedger] User %d +%d xp (%s): xp=%d level=%d streak=%d",
		user.ID, points, action, user.XP, user.Level, user.Streak)
	return user, nil
}

// Leaderboard returns the top ordinary users by XP.
func (l *EngagementLedger) Leaderboard(ctx context.Context) ([]model.User, error) {
	return l.userRepo.TopByXP(ctx, model.RoleUser, model.LeaderboardSize)
}

// Rank returns the user's 1-based position among all users by XP.
// Equal XP is ordered by user id.
func (l *EngagementLedger) Rank(ctx context.Context, userID int64) (int, error) {
	return l.userRepo.RankByXP(ctx, userID)
}

func (l *EngagementLedger) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank, err := l.userRepo.RankByXP(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.UserStats{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		XP:          user.XP,
		Level:       model.CalculateLevel(user.XP),
		Streak:      user.Streak,
		Rank:        rank,
		LastCheckIn: user.LastCheckIn,
	}, nil
}
