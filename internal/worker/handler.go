package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"streetbite/internal/metrics"
	"streetbite/internal/model"
	"streetbite/internal/queue"
)

// XPAwarder applies an XP award. It abstracts the engagement ledger so
// workers don't depend on the service package.
type XPAwarder interface {
	AwardXP(ctx context.Context, userID int64, action string) (*model.User, error)
}

// Handler processes engagement events from the queue.
type Handler struct {
	awarder XPAwarder
}

// NewHandler creates a new event handler.
func NewHandler(awarder XPAwarder) *Handler {
	return &Handler{awarder: awarder}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventAwardXP:
		err = h.handleAwardXP(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		metrics.EngagementEventsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		metrics.EngagementEventsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	metrics.EngagementEventsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

func (h *Handler) handleAwardXP(ctx context.Context, event queue.EngagementEvent) error {
	if event.UserID <= 0 {
		return fmt.Errorf("award_xp: missing user_id")
	}

	user, err := h.awarder.AwardXP(ctx, event.UserID, event.Action)
	if err != nil {
		return fmt.Errorf("award xp to user %d: %w", event.UserID, err)
	}

	log.Printf("[Worker] AwardXP: user=%d action=%s xp=%d level=%d", user.ID, event.Action, user.XP, user.Level)
	return nil
}
