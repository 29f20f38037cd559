package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

const conversationColumns = `c.id, c.conversation_id, c.customer_name, c.customer_phone, c.customer_email,
	c.agent_name, c.agent_id, c.is_site_customer, c.status, c.tags, c.created_at, c.updated_at`

// scanConversation scans conversationColumns followed by extra.
func scanConversation(row rowScanner, c *model.Conversation, extra ...any) error {
	var (
		phone, email, agentID sql.NullString
		status                string
	)
	dest := []any{
		&c.ID, &c.ConversationID, &c.CustomerName, &phone, &email,
		&c.AgentName, &agentID, &c.IsSiteCustomer, &status, pq.Array(&c.Tags), &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	c.CustomerPhone = stringPtr(phone)
	c.CustomerEmail = stringPtr(email)
	c.AgentID = stringPtr(agentID)
	c.Status = model.ConversationStatus(status)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return nil
}

// SystemMetrics aggregates the dashboard overview.
func (p *Postgres) SystemMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	m := &model.SystemMetrics{
		Agents:         []model.AgentMetrics{},
		RecentActivity: []model.Message{},
	}

	err := p.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM conversations),
			(SELECT COUNT(*) FROM conversations WHERE status = 'active'),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM response_times),
			(SELECT COALESCE(AVG(response_time_seconds), 0) FROM response_times)`,
	).Scan(&m.TotalConversations, &m.ActiveConversations, &m.TotalMessages, &m.TotalResponseTimes, &m.OverallAvgResponseTime)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT
			c.agent_name,
			COUNT(*),
			COUNT(*) FILTER (WHERE c.status = 'active'),
			COUNT(*) FILTER (WHERE c.status = 'closed'),
			COALESCE(SUM(mc.total), 0),
			COUNT(*) FILTER (WHERE c.is_site_customer),
			COALESCE(SUM(rc.total_seconds) / NULLIF(SUM(rc.total), 0), 0),
			COALESCE(SUM(rc.total), 0)
		FROM conversations c
		LEFT JOIN (
			SELECT conversation_id, COUNT(*) AS total
			FROM messages WHERE sender_type = 'agent'
			GROUP BY conversation_id
		) mc ON mc.conversation_id = c.conversation_id
		LEFT JOIN (
			SELECT conversation_id, COUNT(*) AS total, SUM(response_time_seconds) AS total_seconds
			FROM response_times
			GROUP BY conversation_id
		) rc ON rc.conversation_id = c.conversation_id
		WHERE c.agent_name <> ''
		GROUP BY c.agent_name
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query agent metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.AgentMetrics
		err := rows.Scan(&a.AgentName, &a.TotalConversations, &a.ActiveConversations, &a.ClosedConversations,
			&a.TotalMessages, &a.SiteCustomers, &a.AvgResponseTime, &a.ResponseCount)
		if err != nil {
			return nil, fmt.Errorf("scan agent metrics: %w", err)
		}
		m.Agents = append(m.Agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent metrics: %w", err)
	}

	recent, err := p.db.QueryContext(ctx, `
		SELECT id, conversation_id, message_id, sender_type, sender_name, message_text, message_type, timestamp
		FROM messages
		ORDER BY timestamp DESC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}
	defer recent.Close()

	for recent.Next() {
		msg, err := scanMessage(recent)
		if err != nil {
			return nil, fmt.Errorf("scan recent activity: %w", err)
		}
		m.RecentActivity = append(m.RecentActivity, *msg)
	}
	if err := recent.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent activity: %w", err)
	}

	return m, nil
}

// AwaitingReply returns the active conversations whose latest message came
// from the customer. An empty agent matches every agent.
func (p *Postgres) AwaitingReply(ctx context.Context, agent string) ([]model.PendingConversation, error) {
	query := `
		WITH last_messages AS (
			SELECT DISTINCT ON (conversation_id)
				conversation_id, sender_type, sender_name, message_text, timestamp
			FROM messages
			ORDER BY conversation_id, timestamp DESC
		)
		SELECT ` + conversationColumns + `, lm.timestamp, lm.sender_name, lm.message_text
		FROM conversations c
		JOIN last_messages lm ON lm.conversation_id = c.conversation_id
		WHERE lm.sender_type = 'customer'
		  AND c.status = 'active'
		  AND ($1 = '' OR c.agent_name = $1)
		ORDER BY lm.timestamp ASC`

	rows, err := p.db.QueryContext(ctx, query, agent)
	if err != nil {
		return nil, fmt.Errorf("query pending conversations: %w", err)
	}
	defer rows.Close()

	pending := []model.PendingConversation{}
	for rows.Next() {
		var pc model.PendingConversation
		if err := scanConversation(rows, &pc.Conversation, &pc.LastMessageTime, &pc.LastSender, &pc.LastMessageText); err != nil {
			return nil, fmt.Errorf("scan pending conversation: %w", err)
		}
		pending = append(pending, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending conversations: %w", err)
	}
	return pending, nil
}

// AgentStats aggregates one agent's conversations, or returns nil when the
// agent owns none.
func (p *Postgres) AgentStats(ctx context.Context, agent string) (*model.AgentStats, error) {
	const query = `
		SELECT
			c.agent_name,
			COUNT(*),
			COALESCE(SUM(mc.total), 0),
			COALESCE(SUM(rc.total_seconds) / NULLIF(SUM(rc.total), 0), 0),
			COALESCE(MIN(rc.min_seconds), 0),
			COALESCE(MAX(rc.max_seconds), 0),
			COALESCE(SUM(rc.total), 0),
			COUNT(*) FILTER (WHERE c.status = 'active'),
			COUNT(*) FILTER (WHERE c.status = 'closed')
		FROM conversations c
		LEFT JOIN (
			SELECT conversation_id, COUNT(*) AS total
			FROM messages WHERE sender_type = 'agent'
			GROUP BY conversation_id
		) mc ON mc.conversation_id = c.conversation_id
		LEFT JOIN (
			SELECT conversation_id, COUNT(*) AS total, SUM(response_time_seconds) AS total_seconds,
				MIN(response_time_seconds) AS min_seconds, MAX(response_time_seconds) AS max_seconds
			FROM response_times
			GROUP BY conversation_id
		) rc ON rc.conversation_id = c.conversation_id
		WHERE c.agent_name = $1
		GROUP BY c.agent_name`

	var s model.AgentStats
	err := p.db.QueryRowContext(ctx, query, agent).Scan(
		&s.AgentName, &s.TotalConversations, &s.TotalMessages, &s.AvgResponseTime,
		&s.MinResponseTime, &s.MaxResponseTime, &s.ResponseCount,
		&s.ActiveConversations, &s.ClosedConversations,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query agent stats for %s: %w", agent, err)
	}
	return &s, nil
}

// RecentConversations returns the agent's most recently updated
// conversations with their message count and average response time.
func (p *Postgres) RecentConversations(ctx context.Context, agent string, limit int) ([]model.ConversationSummary, error) {
	query := `
		SELECT ` + conversationColumns + `,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.conversation_id),
			(SELECT COALESCE(AVG(rt.response_time_seconds), 0) FROM response_times rt WHERE rt.conversation_id = c.conversation_id)
		FROM conversations c
		WHERE c.agent_name = $1
		ORDER BY c.updated_at DESC
		LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, agent, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent conversations: %w", err)
	}
	defer rows.Close()

	summaries := []model.ConversationSummary{}
	for rows.Next() {
		var cs model.ConversationSummary
		if err := scanConversation(rows, &cs.Conversation, &cs.TotalMessages, &cs.AvgResponseTime); err != nil {
			return nil, fmt.Errorf("scan recent conversation: %w", err)
		}
		summaries = append(summaries, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent conversations: %w", err)
	}
	return summaries, nil
}
