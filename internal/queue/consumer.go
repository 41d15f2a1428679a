package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one decoded entry of the engagement stream.
type Message struct {
	ID    string // e.g. "1702000000000-0"
	Event EngagementEvent
}

// Consumer reads one stream on behalf of one consumer group.
type Consumer interface {
	// EnsureGroup creates the group (and the stream) if missing.
	EnsureGroup(ctx context.Context) error

	// Read returns entries never delivered to the group, blocking up to block.
	Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending returns entries delivered to consumer but never acked.
	ReadPending(ctx context.Context, consumer string, count int64) ([]Message, error)

	Ack(ctx context.Context, ids ...string) error

	// Pending counts entries delivered to the group and not yet acked.
	Pending(ctx context.Context) (int64, error)
}

// StreamConsumer implements Consumer with XREADGROUP.
// Entries that cannot be decoded are acked on read so they never block the group.
type StreamConsumer struct {
	client *redis.Client
	stream string
	group  string
}

func NewConsumer(client *redis.Client, stream, group string) *StreamConsumer {
	return &StreamConsumer{client: client, stream: stream, group: group}
}

// NewEngagementConsumer reads award_xp events for the engagement workers.
func NewEngagementConsumer(client *redis.Client) *StreamConsumer {
	return NewConsumer(client, StreamEngagement, ConsumerGroupEngagement)
}

// EnsureGroup starts a new group at "0" so events queued before the first
// worker came up are still applied.
func (c *StreamConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	switch {
	case err == nil:
		log.Printf("[Consumer] Created group %s on %s", c.group, c.stream)
		return nil
	case strings.HasPrefix(err.Error(), "BUSYGROUP"):
		return nil
	default:
		return fmt.Errorf("create consumer group %s: %w", c.group, err)
	}
}

func (c *StreamConsumer) Read(ctx context.Context, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.readGroup(ctx, consumer, ">", count, block)
}

func (c *StreamConsumer) ReadPending(ctx context.Context, consumer string, count int64) ([]Message, error) {
	// A non-blocking read from "0" replays this consumer's pending list
	return c.readGroup(ctx, consumer, "0", count, -1)
}

func (c *StreamConsumer) readGroup(ctx context.Context, consumer, start string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: consumer,
		Streams:  []string{c.stream, start},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s from %s: %w", c.stream, start, err)
	}

	var (
		messages []Message
		poison   []string
	)
	for _, s := range streams {
		for _, entry := range s.Messages {
			event, err := ParseEngagementEvent(entry.Values)
			if err != nil {
				log.Printf("[Consumer] Dropping malformed entry %s: %v", entry.ID, err)
				poison = append(poison, entry.ID)
				continue
			}
			messages = append(messages, Message{ID: entry.ID, Event: event})
		}
	}

	if len(poison) > 0 {
		if err := c.Ack(ctx, poison...); err != nil {
			log.Printf("[Consumer] %v", err)
		}
	}
	return messages, nil
}

func (c *StreamConsumer) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, c.stream, c.group, ids...).Err(); err != nil {
		return fmt.Errorf("xack %v: %w", ids, err)
	}
	return nil
}

func (c *StreamConsumer) Pending(ctx context.Context) (int64, error) {
	info, err := c.client.XPending(ctx, c.stream, c.group).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending %s: %w", c.stream, err)
	}
	return info.Count, nil
}
