package model

import (
	"strings"
	"time"
)

// Engagement actions and their XP value
const (
	ActionDailyLogin        = "daily_login"
	ActionCompleteChallenge = "complete_challenge"
	ActionWinGame           = "win_game"

	XPDailyLogin        = 50
	XPCompleteChallenge = 50
	XPWinGame           = 100

	XPPerLevel = 1000

	LeaderboardSize = 10
)

// XPForAction returns the fixed reward for an action; unknown actions earn 0.
func XPForAction(action string) int {
	switch strings.ToLower(action) {
	case ActionDailyLogin:
		return XPDailyLogin
	case ActionCompleteChallenge:
		return XPCompleteChallenge
	case ActionWinGame:
		return XPWinGame
	default:
		return 0
	}
}

// CalculateLevel derives the level from accumulated XP: floor(xp/1000)+1.
func CalculateLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// CivilDate strips t to its calendar date in loc, expressed as UTC midnight
// so that it compares equal to a DATE column scanned by the driver.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak computes the login streak after a check-in on today.
// today must already be a CivilDate.
func NextStreak(current int, lastCheckIn *time.Time, today time.Time) int {
	if lastCheckIn == nil {
		return 1
	}
	last := CivilDate(*lastCheckIn, time.UTC)
	switch {
	case last.Equal(today):
		return current
	case last.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

// AwardXPRequest is the request body for POST /users/{id}/xp.
type AwardXPRequest struct {
	Action string `json:"action"`
}
