package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"streetbite/internal/metrics"
	"streetbite/internal/model"
)

const defaultPushTimeout = 10 * time.Second

var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9_.~%-]+$`)

// TokenPruner removes tokens the push provider reports as unregistered.
type TokenPruner interface {
	PruneTokens(ctx context.Context, tokens []string)
}

// Dispatcher formats and sends push messages through a PushProvider.
//
// Provider failures never reach the caller: every send goes through settle,
// which logs the DeliveryError and drops it. Only malformed input (empty
// token, bad topic name) is returned, before the provider is called.
//
// A nil provider disables push; sends are logged and skipped.
type Dispatcher struct {
	provider PushProvider
	timeout  time.Duration
	pruner   TokenPruner
}

func NewDispatcher(provider PushProvider, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &Dispatcher{
		provider: provider,
		timeout:  timeout,
	}
}

// SetTokenPruner wires stale-token cleanup. Tokens the provider reports as
// unregistered are pruned after single sends and multicasts alike.
func (d *Dispatcher) SetTokenPruner(p TokenPruner) {
	d.pruner = p
}

// Enabled reports whether a push provider is configured.
func (d *Dispatcher) Enabled() bool {
	return d.provider != nil
}

// SendToOne sends a message to a single device token.
func (d *Dispatcher) SendToOne(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return model.NewValidation("token", "must not be empty")
	}
	msg := &model.PushMessage{Token: token, Title: title, Body: body, Data: data}
	if !d.Enabled() {
		log.Printf("[Dispatcher] Push disabled, skipping %s", msg.Recipient())
		return nil
	}

	err := d.call(ctx, "send", func(ctx context.Context) error {
		_, err := d.provider.Send(ctx, msg)
		return err
	})
	d.settle("send", msg.Recipient(), err)
	if errors.Is(err, model.ErrTokenUnregistered) {
		d.prune(ctx, []string{token})
	}
	return nil
}

// SendToMany sends the same message to every token. Each token is delivered
// independently and the report carries aggregate counts.
func (d *Dispatcher) SendToMany(ctx context.Context, tokens []string, title, body string, data map[string]string) (model.DeliveryReport, error) {
	tokens = compactTokens(tokens)
	report := model.DeliveryReport{Attempted: len(tokens)}
	if len(tokens) == 0 {
		return report, nil
	}
	if !d.Enabled() {
		log.Printf("[Dispatcher] Push disabled, skipping %d tokens", len(tokens))
		report.Failed = len(tokens)
		return report, nil
	}

	msg := &model.PushMessage{Tokens: tokens, Title: title, Body: body, Data: data}

	var result *model.BatchResult
	err := d.call(ctx, "multicast", func(ctx context.Context) error {
		var err error
		result, err = d.provider.SendMulticast(ctx, msg)
		return err
	})

	if result == nil {
		result = &model.BatchResult{FailureCount: len(tokens)}
	}
	report.Succeeded = result.SuccessCount
	report.Failed = result.FailureCount

	metrics.PushDeliveriesTotal.WithLabelValues("multicast", metrics.ResultSuccess).Add(float64(result.SuccessCount))
	metrics.PushDeliveriesTotal.WithLabelValues("multicast", metrics.ResultFailure).Add(float64(result.FailureCount))

	var stale []string
	for _, f := range result.Failures {
		if f.Unregistered {
			stale = append(stale, f.Token)
			continue
		}
		if err == nil {
			d.discard("multicast", "token:"+model.ShortToken(f.Token), f.Err)
		}
	}
	if err != nil {
		d.discard("multicast", msg.Recipient(), err)
	}

	d.prune(ctx, stale)

	log.Printf("[Dispatcher] Multicast done: attempted=%d succeeded=%d failed=%d",
		report.Attempted, report.Succeeded, report.Failed)
	return report, nil
}

// SendToTopic sends one message that the provider fans out to every
// subscriber of topic.
func (d *Dispatcher) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if err := validateTopic(topic); err != nil {
		return err
	}
	msg := &model.PushMessage{Topic: topic, Title: title, Body: body, Data: data}
	if !d.Enabled() {
		log.Printf("[Dispatcher] Push disabled, skipping %s", msg.Recipient())
		return nil
	}

	err := d.call(ctx, "topic", func(ctx context.Context) error {
		_, err := d.provider.Send(ctx, msg)
		return err
	})
	d.settle("topic", msg.Recipient(), err)
	return nil
}

// Subscribe adds tokens to topic and returns how many the provider accepted.
func (d *Dispatcher) Subscribe(ctx context.Context, tokens []string, topic string) (int, error) {
	return d.manageTopic(ctx, tokens, topic, TopicSubscribe)
}

// Unsubscribe removes tokens from topic and returns how many the provider accepted.
func (d *Dispatcher) Unsubscribe(ctx context.Context, tokens []string, topic string) (int, error) {
	return d.manageTopic(ctx, tokens, topic, TopicUnsubscribe)
}

func (d *Dispatcher) manageTopic(ctx context.Context, tokens []string, topic string, action TopicAction) (int, error) {
	if err := validateTopic(topic); err != nil {
		return 0, err
	}
	tokens = compactTokens(tokens)
	if len(tokens) == 0 || !d.Enabled() {
		return 0, nil
	}

	var result *model.TopicResult
	err := d.call(ctx, action.String(), func(ctx context.Context) error {
		var err error
		result, err = d.provider.ManageTopic(ctx, tokens, topic, action)
		return err
	})
	d.settle(action.String(), "topic:"+topic, err)

	if result == nil {
		return 0, nil
	}
	return result.SuccessCount, nil
}

func (d *Dispatcher) prune(ctx context.Context, stale []string) {
	if len(stale) == 0 || d.pruner == nil {
		return
	}
	d.pruner.PruneTokens(context.WithoutCancel(ctx), stale)
}

// call runs one provider request under the push timeout and records its duration.
func (d *Dispatcher) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.PushProviderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

// settle is where provider errors end. They are counted, logged and dropped.
func (d *Dispatcher) settle(op, recipient string, err error) {
	if err == nil {
		metrics.PushDeliveriesTotal.WithLabelValues(op, metrics.ResultSuccess).Inc()
		return
	}
	metrics.PushDeliveriesTotal.WithLabelValues(op, metrics.ResultFailure).Inc()
	d.discard(op, recipient, err)
}

func (d *Dispatcher) discard(op, recipient string, err error) {
	var derr *model.DeliveryError
	if !errors.As(err, &derr) {
		derr = &model.DeliveryError{Op: op, Recipient: recipient, Err: err}
	}
	log.Printf("[Dispatcher] %v", derr)
}

func validateTopic(topic string) error {
	if !topicPattern.MatchString(topic) {
		return model.NewValidation("topic", "must match "+topicPattern.String())
	}
	return nil
}

func compactTokens(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// OrderUpdateMessage returns the title and body sent to a customer when
// their order moves to status.
func OrderUpdateMessage(status model.OrderStatus) (title, body string) {
	switch status {
	case model.OrderStatusAccepted:
		return "✅ Order Accepted!", "Your order has been accepted by the vendor."
	case model.OrderStatusReady:
		return "🎉 Order Ready!", "Your order is ready for pickup! Come and collect it."
	case model.OrderStatusCompleted:
		return "✨ Order Completed", "Thank you! Hope you enjoyed your meal."
	case model.OrderStatusCancelled:
		return "❌ Order Cancelled", "Your order has been cancelled."
	default:
		return "📦 Order Update", "Your order status has been updated."
	}
}

// NewOrderMessage returns the title and body sent to a vendor owner when a
// customer places an order.
func NewOrderMessage(customerName string) (title, body string) {
	if customerName == "" {
		customerName = "A customer"
	}
	return "🆕 New Order!", customerName + " placed an order. Tap to view details."
}
