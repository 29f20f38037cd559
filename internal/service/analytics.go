package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/businesshours"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/logger"
)

// RecentConversationsLimit bounds the recent conversations of an agent report.
const RecentConversationsLimit = 10

// ErrAgentNotFound is returned when an agent owns no conversation.
var ErrAgentNotFound = errors.New("agent not found")

// AnalyticsStore provides the read-only aggregations behind the dashboard.
type AnalyticsStore interface {
	SystemMetrics(ctx context.Context) (*model.SystemMetrics, error)
	// AwaitingReply returns active conversations whose last stored message
	// came from the customer, optionally restricted to one agent. Wait
	// fields are left for the caller to fill.
	AwaitingReply(ctx context.Context, agent string) ([]model.PendingConversation, error)
	// AgentStats returns nil, nil for an agent without conversations.
	AgentStats(ctx context.Context, agent string) (*model.AgentStats, error)
	RecentConversations(ctx context.Context, agent string, limit int) ([]model.ConversationSummary, error)
}

// PendingFilter narrows a pending conversation listing.
type PendingFilter struct {
	Agent         string
	MinWait       time.Duration
	BusinessHours bool
}

// AnalyticsService builds the dashboard read models.
type AnalyticsService struct {
	store    AnalyticsStore
	calendar businesshours.Calendar
	logger   *logger.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store AnalyticsStore, calendar businesshours.Calendar, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:    store,
		calendar: calendar,
		logger:   log,
		now:      time.Now,
	}
}

// SystemMetrics returns the dashboard overview.
func (s *AnalyticsService) SystemMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	m, err := s.store.SystemMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load system metrics: %w", err)
	}
	if m.Agents == nil {
		m.Agents = []model.AgentMetrics{}
	}
	if m.RecentActivity == nil {
		m.RecentActivity = []model.Message{}
	}
	return m, nil
}

// PendingConversations lists conversations waiting for an agent reply,
// longest wait first.
func (s *AnalyticsService) PendingConversations(ctx context.Context, filter PendingFilter) ([]model.PendingConversation, error) {
	rows, err := s.store.AwaitingReply(ctx, filter.Agent)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending conversations: %w", err)
	}

	now := s.now()
	pending := make([]model.PendingConversation, 0, len(rows))
	for _, row := range rows {
		var wait time.Duration
		if filter.BusinessHours {
			wait = s.calendar.Elapsed(row.LastMessageTime, now)
		} else {
			wait = now.Sub(row.LastMessageTime)
		}
		if wait < 0 {
			wait = 0
		}
		if wait < filter.MinWait {
			continue
		}

		minutes := int(wait.Round(time.Minute) / time.Minute)
		row.WaitTimeMinutes = minutes
		row.WaitTimeCategory = WaitCategory(minutes)
		row.WaitTimeFormatted = FormatWait(minutes)
		pending = append(pending, row)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].WaitTimeMinutes > pending[j].WaitTimeMinutes
	})

	s.logger.Debug("pending conversations computed",
		zap.String("agent", filter.Agent),
		zap.Bool("business_hours", filter.BusinessHours),
		zap.Int("count", len(pending)),
	)
	return pending, nil
}

// AgentPerformance returns the detail report of one agent, or
// ErrAgentNotFound.
func (s *AnalyticsService) AgentPerformance(ctx context.Context, agent string) (*model.AgentPerformance, error) {
	stats, err := s.store.AgentStats(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent stats: %w", err)
	}
	if stats == nil {
		return nil, ErrAgentNotFound
	}

	pending, err := s.PendingConversations(ctx, PendingFilter{Agent: agent})
	if err != nil {
		return nil, err
	}

	recent, err := s.store.RecentConversations(ctx, agent, RecentConversationsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent conversations: %w", err)
	}
	if recent == nil {
		recent = []model.ConversationSummary{}
	}

	return &model.AgentPerformance{
		AgentStats:           *stats,
		PendingConversations: pending,
		RecentConversations:  recent,
	}, nil
}

// WaitCategory buckets a wait in minutes.
func WaitCategory(minutes int) string {
	switch {
	case minutes <= 10:
		return model.WaitNormal
	case minutes <= 30:
		return model.WaitAttention
	default:
		return model.WaitUrgent
	}
}

// FormatWait renders minutes as "45min" or "2h 5min".
func FormatWait(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}
