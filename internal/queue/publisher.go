package queue

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// StreamMaxLen caps the engagement stream. Trimming is approximate (MAXLEN ~).
const StreamMaxLen = 100_000

// Publisher appends engagement events to a stream.
type Publisher interface {
	Publish(ctx context.Context, stream string, event EngagementEvent) (messageID string, err error)
	PublishAwardXP(ctx context.Context, userID int64, action string) (messageID string, err error)
}

// RedisPublisher implements Publisher with XADD.
type RedisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream string, event EngagementEvent) (string, error) {
	values, err := event.ToMap()
	if err != nil {
		return "", err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: StreamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", stream, err)
	}

	log.Printf("[Publisher] %s queued on %s as %s (user=%d action=%s)", event.Type, stream, id, event.UserID, event.Action)
	return id, nil
}

// PublishAwardXP queues an XP award for the engagement workers.
func (p *RedisPublisher) PublishAwardXP(ctx context.Context, userID int64, action string) (string, error) {
	return p.Publish(ctx, StreamEngagement, NewAwardXPEvent(userID, action))
}
