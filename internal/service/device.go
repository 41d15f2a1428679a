package service

import (
	"context"
	"log"
	"strings"

	"streetbite/internal/metrics"
	"streetbite/internal/model"
	"streetbite/internal/repository"
)

// DeviceRegistry maps users to their push device tokens.
// A token belongs to at most one user; registering it again re-parents it.
type DeviceRegistry struct {
	tokenRepo repository.DeviceTokenRepository
}

func NewDeviceRegistry(tokenRepo repository.DeviceTokenRepository) *DeviceRegistry {
	return &DeviceRegistry{tokenRepo: tokenRepo}
}

// Register stores token for userID. This is called when:
// - a user signs in on a new device
// - the client app refreshes its push token
func (r *DeviceRegistry) Register(ctx context.Context, userID int64, token, platform string) error {
	if userID <= 0 {
		return model.NewValidation("user_id", "must be positive")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return model.NewValidation("token", "is required")
	}

	platform, err := model.NormalizePlatform(platform)
	if err != nil {
		return err
	}

	return r.tokenRepo.Upsert(ctx, userID, token, platform)
}

// TokensFor returns the raw tokens registered for userID, possibly none.
func (r *DeviceRegistry) TokensFor(ctx context.Context, userID int64) ([]string, error) {
	devices, err := r.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}
	return tokens, nil
}

// Devices returns the full registrations for userID.
func (r *DeviceRegistry) Devices(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
	devices, err := r.tokenRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []model.DeviceToken{}
	}
	return devices, nil
}

// Revoke removes one of userID's tokens (e.g. on logout). Unknown tokens and
// tokens owned by another user are ignored.
func (r *DeviceRegistry) Revoke(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.NewValidation("token", "is required")
	}
	n, err := r.tokenRepo.Delete(ctx, userID, token)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Printf("[DeviceRegistry] Token %s not owned by user %d, nothing revoked", model.ShortToken(token), userID)
	}
	return nil
}

// RevokeAll removes every token userID owns.
func (r *DeviceRegistry) RevokeAll(ctx context.Context, userID int64) error {
	n, err := r.tokenRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return err
	}
	log.Printf("[DeviceRegistry] Revoked %d tokens for user %d", n, userID)
	return nil
}

// PruneTokens deletes tokens the push provider no longer accepts.
// It runs after a send, so failures are only logged.
func (r *DeviceRegistry) PruneTokens(ctx context.Context, tokens []string) {
	n, err := r.tokenRepo.DeleteMany(ctx, tokens)
	if err != nil {
		log.Printf("[DeviceRegistry] Failed to prune %d stale tokens: %v", len(tokens), err)
		return
	}
	metrics.StaleTokensPrunedTotal.Add(float64(n))
	log.Printf("[DeviceRegistry] Pruned %d stale tokens", n)
}
