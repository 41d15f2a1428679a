package service

import (
	"context"
	"errors"

	"streetbite/internal/model"
)

// TopicAction selects subscribe or unsubscribe for ManageTopic.
type TopicAction int

const (
	TopicSubscribe TopicAction = iota
	TopicUnsubscribe
)

func (a TopicAction) String() string {
	if a == TopicUnsubscribe {
		return "unsubscribe"
	}
	return "subscribe"
}

// ErrTopicsUnsupported is returned by providers without a topic mechanism.
var ErrTopicsUnsupported = errors.New("push provider does not support topics")

// PushProvider is the push delivery backend (FCM, Expo).
// The process creates one at startup and hands it to the Dispatcher.
type PushProvider interface {
	// Send delivers msg to msg.Token or msg.Topic and returns the provider's delivery id.
	Send(ctx context.Context, msg *model.PushMessage) (string, error)
	// SendMulticast delivers msg to every entry of msg.Tokens independently.
	// A non-nil error means the whole batch failed; per-token failures are in the result.
	SendMulticast(ctx context.Context, msg *model.PushMessage) (*model.BatchResult, error)
	// ManageTopic adds or removes tokens from a topic.
	ManageTopic(ctx context.Context, tokens []string, topic string, action TopicAction) (*model.TopicResult, error)
}
