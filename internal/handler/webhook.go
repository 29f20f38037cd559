// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/service"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/logger"
)

// maxWebhookBody bounds the size of an inbound webhook payload.
const maxWebhookBody = 1 << 20

// WebhookProcessor applies one webhook event.
type WebhookProcessor interface {
	Process(ctx context.Context, event *model.WebhookEvent) (*model.WebhookResult, error)
}

// WebhookHandler handles the Umbler webhook endpoint.
type WebhookHandler struct {
	processor WebhookProcessor
	logger    *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(processor WebhookProcessor, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    log,
	}
}

// Receive handles POST /api/webhook/umbler
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)

	var event model.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.processor.Process(r.Context(), &event)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}

		h.logger.Error("failed to process webhook",
			zap.String("correlation_id", logger.CorrelationID(r.Context())),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal server error",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Info handles GET /api/webhook/umbler
func (h *WebhookHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Umbler webhook endpoint is running",
		"timestamp": time.Now().UTC(),
		"expected_format": map[string]any{
			"Type":      "Message | ChatClosed | MemberTransfer",
			"EventDate": "2024-02-07T18:44:01.3135533Z",
			"Payload": map[string]string{
				"Type":    model.PayloadTypeChat,
				"Content": "BasicChatModel object",
			},
			"EventId": "ZcPPcWpimiD3EiER",
		},
	})
}
