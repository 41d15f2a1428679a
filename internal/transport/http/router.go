package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streetbite/internal/handler"
	"streetbite/internal/httputil"
	authmw "streetbite/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	OrderHandler        *handler.OrderHandler
	NotificationHandler *handler.NotificationHandler
	VendorHandler       *handler.VendorHandler
	EngagementHandler   *handler.EngagementHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public read endpoints
	r.Get("/leaderboard", cfg.EngagementHandler.Leaderboard)
	r.Get("/users/{id}/stats", cfg.EngagementHandler.Stats)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.OrderHandler.Create)
			r.Get("/{id}", cfg.OrderHandler.GetByID)
			r.Put("/{id}/status", cfg.OrderHandler.UpdateStatus)
			r.Get("/user/{userId}", cfg.OrderHandler.ListByUser)
			r.Get("/vendor/{vendorId}", cfg.OrderHandler.ListByVendor)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.ListDevices)
			r.Delete("/", cfg.NotificationHandler.RemoveAllTokens)
			r.Post("/token", cfg.NotificationHandler.RegisterToken)
			r.Delete("/token", cfg.NotificationHandler.RemoveToken)
		})

		r.Route("/notifications/topics/{topic}", func(r chi.Router) {
			r.Post("/", cfg.NotificationHandler.SendToTopic)
			r.Post("/subscribe", cfg.NotificationHandler.Subscribe)
			r.Post("/unsubscribe", cfg.NotificationHandler.Unsubscribe)
		})

		r.Put("/vendors/{id}/status", cfg.VendorHandler.UpdateStatus)
		r.Put("/vendors/{id}/location", cfg.VendorHandler.UpdateLocation)
		r.Put("/menu-items/{id}/availability", cfg.VendorHandler.SetAvailability)

		r.Post("/users/{id}/xp", cfg.EngagementHandler.AwardXP)
		r.Post("/users/{id}/xp/events", cfg.EngagementHandler.QueueXP)
	})

	return r
}
