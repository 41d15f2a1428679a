package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetbite/internal/model"
)

func TestDeviceRegistry_Register(t *testing.T) {
	tests := []struct {
		name         string
		userID       int64
		token        string
		platform     string
		wantErr      bool
		wantPlatform string
	}{
		{"defaults to web", 1, "tok", "", false, model.PlatformWeb},
		{"platform is normalized", 1, "tok", " Android ", false, model.PlatformAndroid},
		{"expo", 1, "ExponentPushToken[abc]", "expo", false, model.PlatformExpo},
		{"token is trimmed", 1, "  tok  ", "ios", false, model.PlatformIOS},
		{"empty token", 1, "  ", "web", true, ""},
		{"non-positive user", 0, "tok", "web", true, ""},
		{"unknown platform", 1, "tok", "blackberry", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDeviceTokenRepository{}
			registry := NewDeviceRegistry(repo)

			err := registry.Register(context.Background(), tt.userID, tt.token, tt.platform)
			if tt.wantErr {
				assert.True(t, model.IsValidation(err))
				assert.Empty(t, repo.upsertCalls)
				return
			}

			require.NoError(t, err)
			require.Len(t, repo.upsertCalls, 1)
			assert.Equal(t, tt.userID, repo.upsertCalls[0].UserID)
			assert.Equal(t, tt.wantPlatform, repo.upsertCalls[0].Platform)
			assert.NotContains(t, repo.upsertCalls[0].Token, " ")
		})
	}
}

// Registering a token already owned by someone else hands it to the new
// owner; the store keeps a single row per token.
func TestDeviceRegistry_Register_ReparentsToken(t *testing.T) {
	owners := map[string]int64{}
	repo := &mockDeviceTokenRepository{
		upsertFn: func(ctx context.Context, userID int64, token, platform string) error {
			owners[token] = userID
			return nil
		},
		getByUserIDFn: func(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
			var out []model.DeviceToken
			for token, owner := range owners {
				if owner == userID {
					out = append(out, model.DeviceToken{UserID: owner, Token: token})
				}
			}
			return out, nil
		},
	}
	registry := NewDeviceRegistry(repo)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, 1, "shared", "android"))
	require.NoError(t, registry.Register(ctx, 2, "shared", "android"))

	assert.Len(t, owners, 1)
	first, err := registry.TokensFor(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := registry.TokensFor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, second)
}

func TestDeviceRegistry_TokensFor(t *testing.T) {
	repo := &mockDeviceTokenRepository{
		getByUserIDFn: func(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
			return []model.DeviceToken{{Token: "a"}, {Token: "b"}}, nil
		},
	}
	registry := NewDeviceRegistry(repo)

	tokens, err := registry.TokensFor(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, tokens)

	repo.getByUserIDFn = func(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
		return nil, errors.New("db down")
	}
	_, err = registry.TokensFor(context.Background(), 1)
	assert.Error(t, err)
}

func TestDeviceRegistry_Devices_NeverNil(t *testing.T) {
	registry := NewDeviceRegistry(&mockDeviceTokenRepository{})

	devices, err := registry.Devices(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, devices)
}

func TestDeviceRegistry_Revoke(t *testing.T) {
	owners := map[string]int64{"tok": 1}
	var deleted []string
	repo := &mockDeviceTokenRepository{
		deleteFn: func(ctx context.Context, userID int64, token string) (int64, error) {
			if owners[token] != userID {
				return 0, nil
			}
			delete(owners, token)
			deleted = append(deleted, token)
			return 1, nil
		},
	}
	registry := NewDeviceRegistry(repo)

	// Another user's revoke leaves the token in place
	require.NoError(t, registry.Revoke(context.Background(), 2, "tok"))
	assert.Empty(t, deleted)

	require.NoError(t, registry.Revoke(context.Background(), 1, "tok"))
	require.NoError(t, registry.Revoke(context.Background(), 1, "tok"))
	assert.Equal(t, []string{"tok"}, deleted)

	assert.True(t, model.IsValidation(registry.Revoke(context.Background(), 1, "")))
}

func TestDeviceRegistry_RevokeAll(t *testing.T) {
	var gotUser int64
	repo := &mockDeviceTokenRepository{
		deleteByUserIDFn: func(ctx context.Context, userID int64) (int64, error) {
			gotUser = userID
			return 0, nil
		},
	}
	registry := NewDeviceRegistry(repo)

	require.NoError(t, registry.RevokeAll(context.Background(), 9))
	assert.Equal(t, int64(9), gotUser)
}

func TestDeviceRegistry_PruneTokens(t *testing.T) {
	var got []string
	repo := &mockDeviceTokenRepository{
		deleteManyFn: func(ctx context.Context, tokens []string) (int64, error) {
			got = tokens
			return int64(len(tokens)), nil
		},
	}
	registry := NewDeviceRegistry(repo)

	registry.PruneTokens(context.Background(), []string{"x", "y"})
	assert.Equal(t, []string{"x", "y"}, got)

	// Errors stay inside
	repo.deleteManyFn = func(ctx context.Context, tokens []string) (int64, error) {
		return 0, errors.New("db down")
	}
	registry.PruneTokens(context.Background(), []string{"z"})
}
