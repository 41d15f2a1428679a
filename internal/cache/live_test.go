package cache_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetbite/internal/cache"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// DB 2 keeps this package clear of the worker tests on DB 1
	opts.DB = 2

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestRedisLiveStore_PutMergesFields(t *testing.T) {
	client := setupTestRedis(t)
	store := cache.NewRedisLiveStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "live_vendors", "3", map[string]any{
		"status":      "BUSY",
		"lastUpdated": int64(1715342400000),
	}))
	require.NoError(t, store.Put(ctx, "live_vendors", "3", map[string]any{
		"latitude":    10.77,
		"longitude":   106.7,
		"address":     nil,
		"lastUpdated": int64(1715342401000),
	}))

	got, err := store.Get(ctx, "live_vendors", "3")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"status":      "BUSY",
		"latitude":    "10.77",
		"longitude":   "106.7",
		"lastUpdated": "1715342401000",
	}, got)

	ttl, err := client.TTL(ctx, "live:live_vendors:3").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, cache.LiveTTL)
}

func TestRedisLiveStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	store := cache.NewRedisLiveStore(client)

	got, err := store.Get(context.Background(), "live_menu_items", "404")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisLiveStore_PublishesUpdates(t *testing.T) {
	client := setupTestRedis(t)
	store := cache.NewRedisLiveStore(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, cache.LiveChannel("live_menu_items"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "live_menu_items", "7", map[string]any{"isAvailable": false}))

	select {
	case msg := <-sub.Channel():
		var update cache.LiveUpdate
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &update))
		assert.Equal(t, "7", update.ID)
		assert.Equal(t, false, update.Fields["isAvailable"])
	case <-time.After(2 * time.Second):
		t.Fatal("no live update published")
	}
}
