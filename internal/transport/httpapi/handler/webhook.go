package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/barretobrock/ff-relay/internal/infra/firefly"
	"github.com/barretobrock/ff-relay/internal/relay"
	"github.com/barretobrock/ff-relay/pkg/logger"
)

// maxBodyBytes caps webhook payload size. Firefly deliveries are a few KB;
// anything near this limit is not a transaction event.
const maxBodyBytes = 1 << 20

// ReconciliationEngine defines the interface for processing webhook events.
type ReconciliationEngine interface {
	HandleCreated(ctx context.Context, ev *relay.TransactionEvent) (*relay.Result, error)
	HandleUpdated(ctx context.Context, ev *relay.TransactionEvent) (*relay.Result, error)
}

// WebhookHandler handles inbound ledger webhook deliveries.
type WebhookHandler struct {
	engine ReconciliationEngine
	log    *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(engine ReconciliationEngine, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		engine: engine,
		log:    log.WithField("component", "webhook"),
	}
}

// WebhookResponse reports what a delivery did. Replays and no-match
// deliveries still answer 200 so the sender stops redelivering.
type WebhookResponse struct {
	Status  string   `json:"status"`
	Created []string `json:"created,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

// TransactionCreated handles POST /webhooks/transactions/created
func (h *WebhookHandler) TransactionCreated(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, relay.EventCreated)
}

// TransactionUpdated handles POST /webhooks/transactions/updated
func (h *WebhookHandler) TransactionUpdated(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, relay.EventUpdated)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, kind relay.EventKind) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	ev, err := relay.ParseEvent(kind, body)
	if err != nil {
		h.log.Warn("rejecting webhook delivery", "kind", kind, "error", err)
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	deliveryID := ev.UUID
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	ctx := context.WithValue(r.Context(), logger.DeliveryIDKey, deliveryID)

	var res *relay.Result
	switch kind {
	case relay.EventCreated:
		res, err = h.engine.HandleCreated(ctx, ev)
	default:
		res, err = h.engine.HandleUpdated(ctx, ev)
	}
	if err != nil {
		var apiErr *firefly.APIError
		if errors.As(err, &apiErr) {
			respondError(w, err.Error(), http.StatusBadGateway)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, WebhookResponse{
		Status:  string(res.Outcome),
		Created: res.Created,
		Updated: res.Updated,
		Skipped: res.Skipped,
	}, http.StatusOK)
}
