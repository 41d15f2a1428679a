package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"streetbite/internal/httputil"
	"streetbite/internal/model"
	"streetbite/internal/transport/http/middleware"
)

// DeviceRegistry manages the caller's push tokens.
type DeviceRegistry interface {
	Register(ctx context.Context, userID int64, token, platform string) error
	Devices(ctx context.Context, userID int64) ([]model.DeviceToken, error)
	Revoke(ctx context.Context, userID int64, token string) error
	RevokeAll(ctx context.Context, userID int64) error
}

// TopicDispatcher sends topic messages and manages topic membership.
type TopicDispatcher interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
	Subscribe(ctx context.Context, tokens []string, topic string) (int, error)
	Unsubscribe(ctx context.Context, tokens []string, topic string) (int, error)
}

type NotificationHandler struct {
	registry   DeviceRegistry
	dispatcher TopicDispatcher
}

func NewNotificationHandler(registry DeviceRegistry, dispatcher TopicDispatcher) *NotificationHandler {
	return &NotificationHandler{
		registry:   registry,
		dispatcher: dispatcher,
	}
}

// RegisterToken handles POST /devices/token
// Registers a device token for push notifications.
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.registry.Register(r.Context(), userID, req.Token, req.Platform); err != nil {
		httputil.WriteServiceError(w, "register device token", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Device token registered",
	})
}

// ListDevices handles GET /devices
func (h *NotificationHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	devices, err := h.registry.Devices(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, "list devices", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, devices)
}

// RemoveToken handles DELETE /devices/token
// Removes one of the caller's device tokens (e.g., on logout).
func (h *NotificationHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.registry.Revoke(r.Context(), userID, req.Token); err != nil {
		httputil.WriteServiceError(w, "remove device token", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Device token removed",
	})
}

// RemoveAllTokens handles DELETE /devices
// Signs the caller out of push on every device.
func (h *NotificationHandler) RemoveAllTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.registry.RevokeAll(r.Context(), userID); err != nil {
		httputil.WriteServiceError(w, "remove device tokens", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "All device tokens removed",
	})
}

// SendToTopic handles POST /notifications/topics/{topic}
// Delivery is best-effort, so 202 only means the message was handed off.
func (h *NotificationHandler) SendToTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	var req model.TopicMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" && req.Body == "" {
		httputil.WriteBadRequest(w, "title or body is required")
		return
	}

	if err := h.dispatcher.SendToTopic(r.Context(), topic, req.Title, req.Body, req.Data); err != nil {
		httputil.WriteServiceError(w, "send topic message", err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "Topic message sent",
	})
}

// Subscribe handles POST /notifications/topics/{topic}/subscribe
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.manageTopic(w, r, h.dispatcher.Subscribe)
}

// Unsubscribe handles POST /notifications/topics/{topic}/unsubscribe
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.manageTopic(w, r, h.dispatcher.Unsubscribe)
}

func (h *NotificationHandler) manageTopic(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, tokens []string, topic string) (int, error),
) {
	topic := chi.URLParam(r, "topic")

	var req model.TopicMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	n, err := fn(r.Context(), req.Tokens, topic)
	if err != nil {
		httputil.WriteServiceError(w, "update topic membership", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"success_count": n,
	})
}
