package model

// Notification types carried in the "type" data key
const (
	NotificationTypeNewOrder    = "new_order"
	NotificationTypeOrderUpdate = "order_update"
)

// PushMessage is a single push payload. Exactly one of Token, Tokens or Topic
// is set. It is built per send and never persisted.
type PushMessage struct {
	Token  string
	Tokens []string
	Topic  string

	Title string
	Body  string
	Data  map[string]string
}

// Recipient describes the target for logging.
func (m *PushMessage) Recipient() string {
	switch {
	case m.Token != "":
		return "token:" + ShortToken(m.Token)
	case m.Topic != "":
		return "topic:" + m.Topic
	default:
		return "tokens"
	}
}

// TokenFailure is a per-token failure inside a multicast.
type TokenFailure struct {
	Token        string
	Err          error
	Unregistered bool // provider reports the token as no longer valid
}

// BatchResult is the provider's answer to a multicast.
type BatchResult struct {
	SuccessCount int
	FailureCount int
	Failures     []TokenFailure
}

// TopicResult is the provider's answer to a topic membership change.
type TopicResult struct {
	SuccessCount int
	FailureCount int
}

// DeliveryReport summarises a fan-out for the caller.
type DeliveryReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// TopicMessageRequest is the request body for POST /notifications/topics/{topic}.
type TopicMessageRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// TopicMembershipRequest is the request body for topic subscribe/unsubscribe.
type TopicMembershipRequest struct {
	Tokens []string `json:"tokens"`
}

// ShortToken trims a device token for log output.
func ShortToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
