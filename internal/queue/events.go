package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the engagement stream
const (
	EventAwardXP = "award_xp"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for engagement workers
const (
	ConsumerGroupEngagement = "engagement_workers"
)

// EngagementEvent is an action a user performed that may earn XP.
type EngagementEvent struct {
	Type      string `json:"type"`      // EventAwardXP
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	UserID int64  `json:"user_id"`
	Action string `json:"action"` // daily_login, complete_challenge, win_game
}

// NewAwardXPEvent creates an event asking the worker to award XP for action.
func NewAwardXPEvent(userID int64, action string) EngagementEvent {
	return EngagementEvent{
		Type:      EventAwardXP,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Action:    action,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an EngagementEvent from Redis stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
