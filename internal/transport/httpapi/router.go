package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/barretobrock/ff-relay/internal/transport/httpapi/handler"
	"github.com/barretobrock/ff-relay/internal/transport/httpapi/middleware"
	"github.com/barretobrock/ff-relay/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	WebhookHandler *handler.WebhookHandler
	HealthHandler  *handler.HealthHandler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.RateLimit())

	// Health check endpoints
	r.Get("/health", handler.GetHealth)
	if cfg.HealthHandler != nil {
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// Webhook entry points
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/transactions/created", cfg.WebhookHandler.TransactionCreated)
		r.Post("/transactions/updated", cfg.WebhookHandler.TransactionUpdated)
	})

	return r
}
