package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"streetbite/internal/model"
)

const userColumns = `id, email, display_name, role, xp, level, streak, last_check_in, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// UpdateEngagement runs fn against the row locked with SELECT ... FOR UPDATE
// and writes back xp, level, streak and last_check_in before committing.
// If fn returns an error nothing is written.
func (r *userRepository) UpdateEngagement(ctx context.Context, id int64, fn func(u *model.User) error) (*model.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var u model.User
	err = tx.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	if err := fn(&u); err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET xp = $1, level = $2, streak = $3, last_check_in = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	if err := tx.QueryRowxContext(ctx, query, u.XP, u.Level, u.Streak, u.LastCheckIn, u.ID).Scan(&u.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update engagement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &u, nil
}

func (r *userRepository) TopByXP(ctx context.Context, role model.Role, limit int) ([]model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
		ORDER BY xp DESC, id ASC
		LIMIT $2
	`

	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, query, role, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}

// RankByXP counts the users ahead of id: higher XP, or equal XP and a lower id.
func (r *userRepository) RankByXP(ctx context.Context, id int64) (int, error) {
	query := `
		SELECT COUNT(*) + 1
		FROM users o, users u
		WHERE u.id = $1
		  AND (o.xp > u.xp OR (o.xp = u.xp AND o.id < u.id))
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return 0, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return 0, model.NewNotFound("user", id)
	}

	var rank int
	if err := r.db.GetContext(ctx, &rank, query, id); err != nil {
		return 0, fmt.Errorf("failed to rank user: %w", err)
	}
	return rank, nil
}
