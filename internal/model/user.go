package model

import (
	"time"
)

// Role separates ordinary customers from vendor owners and admins.
type Role string

const (
	RoleUser   Role = "USER"
	RoleVendor Role = "VENDOR"
	RoleAdmin  Role = "ADMIN"
)

// User represents a user in the system, including their engagement state.
type User struct {
	ID          int64      `db:"id" json:"id"`
	Email       string     `db:"email" json:"email"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Role        Role       `db:"role" json:"role"`
	XP          int        `db:"xp" json:"xp"`
	Level       int        `db:"level" json:"level"`
	Streak      int        `db:"streak" json:"streak"`
	LastCheckIn *time.Time `db:"last_check_in" json:"last_check_in"` // calendar date, stored as DATE
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// UserStats is the engagement summary shown on profile pages.
type UserStats struct {
	UserID      int64      `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	XP          int        `json:"xp"`
	Level       int        `json:"level"`
	Streak      int        `json:"streak"`
	Rank        int        `json:"rank"`
	LastCheckIn *time.Time `json:"last_check_in"`
}
