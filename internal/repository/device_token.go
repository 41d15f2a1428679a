package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"streetbite/internal/model"
)

type deviceTokenRepository struct {
	db *sqlx.DB
}

func NewDeviceTokenRepository(db *sqlx.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// Upsert creates or updates a device token for a user.
// If the token already exists, it is re-pointed to userID and platform,
// so a token is never owned by two users at once.
func (r *deviceTokenRepository) Upsert(ctx context.Context, userID int64, token, platform string) error {
	query := `
		INSERT INTO device_tokens (user_id, token, platform, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, token, platform)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return model.NewNotFound("user", userID)
		}
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

// GetByUserID returns all device tokens for a user.
func (r *deviceTokenRepository) GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, platform, created_at, updated_at
		FROM device_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	var tokens []model.DeviceToken
	err := r.db.SelectContext(ctx, &tokens, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get device tokens: %w", err)
	}
	return tokens, nil
}

// Delete removes token when it belongs to userID. A token that is unknown or
// owned by someone else matches no row, which is not an error.
func (r *deviceTokenRepository) Delete(ctx context.Context, userID int64, token string) (int64, error) {
	query := `DELETE FROM device_tokens WHERE token = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, token, userID)
	if err != nil {
		return 0, fmt.Errorf("delete device token: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *deviceTokenRepository) DeleteMany(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	query := `DELETE FROM device_tokens WHERE token = ANY($1)`
	res, err := r.db.ExecContext(ctx, query, pq.Array(tokens))
	if err != nil {
		return 0, fmt.Errorf("delete device tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *deviceTokenRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	query := `DELETE FROM device_tokens WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user device tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
