package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// LiveKeyPrefix is the key prefix for live projection hashes: live:<collection>:<id>
	LiveKeyPrefix = "live:"

	// LiveTTL bounds how long an untouched projection survives
	LiveTTL = 7 * 24 * time.Hour
)

// LiveUpdate is the message published on live:<collection> after each write.
type LiveUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RedisLiveStore keeps live projections as Redis hashes and announces every
// write on a pub/sub channel per collection, so web clients can subscribe
// instead of polling.
type RedisLiveStore struct {
	client *redis.Client
}

// NewRedisLiveStore creates a live store backed by Redis.
func NewRedisLiveStore(client *redis.Client) *RedisLiveStore {
	return &RedisLiveStore{client: client}
}

func liveKey(collection, docID string) string {
	return LiveKeyPrefix + collection + ":" + docID
}

// LiveChannel returns the pub/sub channel for a collection.
func LiveChannel(collection string) string {
	return LiveKeyPrefix + collection
}

// Put merges fields into the projection and publishes the change.
// Pipeline: HSET + EXPIRE + PUBLISH
func (s *RedisLiveStore) Put(ctx context.Context, collection, docID string, fields map[string]any) error {
	key := liveKey(collection, docID)
	startTime := time.Now()

	msg, err := json.Marshal(LiveUpdate{ID: docID, Fields: fields})
	if err != nil {
		return fmt.Errorf("marshal live update: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, hashValues(fields))
	pipe.Expire(ctx, key, LiveTTL)
	pipe.Publish(ctx, LiveChannel(collection), msg)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[LiveStore] Put FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("put live document: %w", err)
	}

	log.Printf("[LiveStore] Put OK: key=%s fields=%d duration=%v", key, len(fields), time.Since(startTime))
	return nil
}

// Get returns the stored projection fields as strings.
func (s *RedisLiveStore) Get(ctx context.Context, collection, docID string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, liveKey(collection, docID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get live document: %w", err)
	}
	return fields, nil
}

// hashValues drops nil values, which HSET cannot store.
func hashValues(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
