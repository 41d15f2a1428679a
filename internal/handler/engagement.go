package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"streetbite/internal/httputil"
	"streetbite/internal/model"
)

// EngagementLedger awards XP and reports standings.
type EngagementLedger interface {
	AwardXP(ctx context.Context, userID int64, action string) (*model.User, error)
	Leaderboard(ctx context.Context) ([]model.User, error)
	Stats(ctx context.Context, userID int64) (*model.UserStats, error)
}

// EventPublisher queues XP awards for the engagement workers.
type EventPublisher interface {
	PublishAwardXP(ctx context.Context, userID int64, action string) (string, error)
}

type EngagementHandler struct {
	ledger    EngagementLedger
	publisher EventPublisher // nil when Redis is not configured
}

func NewEngagementHandler(ledger EngagementLedger, publisher EventPublisher) *EngagementHandler {
	return &EngagementHandler{
		ledger:    ledger,
		publisher: publisher,
	}
}

// AwardXP handles POST /users/{id}/xp
func (h *EngagementHandler) AwardXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req model.AwardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.ledger.AwardXP(r.Context(), userID, req.Action)
	if err != nil {
		httputil.WriteServiceError(w, "award xp", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// QueueXP handles POST /users/{id}/xp/events
// The award is applied later by an engagement worker.
func (h *EngagementHandler) QueueXP(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		httputil.WriteUnavailable(w, "Engagement queue is not configured")
		return
	}

	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req model.AwardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Action == "" {
		httputil.WriteBadRequest(w, "action is required")
		return
	}

	msgID, err := h.publisher.PublishAwardXP(r.Context(), userID, req.Action)
	if err != nil {
		httputil.WriteServiceError(w, "queue xp award", err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"event_id": msgID,
	})
}

// Stats handles GET /users/{id}/stats
func (h *EngagementHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	stats, err := h.ledger.Stats(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, "get user stats", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// Leaderboard handles GET /leaderboard
func (h *EngagementHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.ledger.Leaderboard(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, "get leaderboard", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}
