package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/middleware"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/service"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/logger"
)

// AnalyticsReader serves the dashboard read models.
type AnalyticsReader interface {
	SystemMetrics(ctx context.Context) (*model.SystemMetrics, error)
	PendingConversations(ctx context.Context, filter service.PendingFilter) ([]model.PendingConversation, error)
	AgentPerformance(ctx context.Context, agent string) (*model.AgentPerformance, error)
}

// AnalyticsHandler handles dashboard endpoints.
type AnalyticsHandler struct {
	reader AnalyticsReader
	logger *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(reader AnalyticsReader, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		reader: reader,
		logger: log,
	}
}

// Metrics handles GET /api/v1/metrics
func (h *AnalyticsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.reader.SystemMetrics(r.Context())
	if err != nil {
		h.logger.Error("failed to load system metrics", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// Pending handles GET /api/v1/conversations/pending
func (h *AnalyticsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	agent := q.Get("agent")
	if agent != "" {
		if err := middleware.ValidateAgentName(agent); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	raw := q.Get("min_wait")
	if raw == "" {
		raw = q.Get("minWaitTime")
	}
	minWait, err := middleware.ParseMinWait(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	businessHours, err := middleware.ParseFlag(q.Get("business_hours"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := h.reader.PendingConversations(r.Context(), service.PendingFilter{
		Agent:         agent,
		MinWait:       minWait,
		BusinessHours: businessHours,
	})
	if err != nil {
		h.logger.Error("failed to load pending conversations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load pending conversations")
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

// AgentPerformance handles GET /api/v1/agents/{agentName}/performance
func (h *AnalyticsHandler) AgentPerformance(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agentName")
	if err := middleware.ValidateAgentName(agent); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reader.AgentPerformance(r.Context(), agent)
	if errors.Is(err, service.ErrAgentNotFound) {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load agent performance", zap.String("agent", agent), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load agent performance")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
