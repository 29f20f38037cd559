package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

// CreateMessage stores a chat message. Redelivered messages with an already
// stored message id are ignored.
func (p *Postgres) CreateMessage(ctx context.Context, m *model.Message) error {
	const query = `
		INSERT INTO messages (conversation_id, message_id, sender_type, sender_name, message_text, message_type, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (message_id) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query,
		m.ConversationID,
		m.MessageID,
		string(m.SenderType),
		m.SenderName,
		m.Text,
		string(m.Kind),
		m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", m.MessageID, err)
	}
	return nil
}

// LastUnansweredCustomerMessage returns the latest customer message of the
// conversation that has no response time yet and was sent after the previous
// public agent reply, or nil. agentMessageID is the reply being paired and is
// not counted as a previous reply.
func (p *Postgres) LastUnansweredCustomerMessage(ctx context.Context, conversationID, agentMessageID string) (*model.Message, error) {
	const query = `
		SELECT m.id, m.conversation_id, m.message_id, m.sender_type, m.sender_name, m.message_text, m.message_type, m.timestamp
		FROM messages m
		WHERE m.conversation_id = $1
		  AND m.sender_type = 'customer'
		  AND NOT EXISTS (
			SELECT 1 FROM response_times rt WHERE rt.customer_message_id = m.message_id
		  )
		  AND m.timestamp > COALESCE((
			SELECT MAX(a.timestamp) FROM messages a
			WHERE a.conversation_id = $1
			  AND a.sender_type = 'agent'
			  AND a.message_type = 'message'
			  AND a.message_id <> $2
		  ), '-infinity'::timestamptz)
		ORDER BY m.timestamp DESC
		LIMIT 1`

	msg, err := scanMessage(p.db.QueryRowContext(ctx, query, conversationID, agentMessageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last customer message of %s: %w", conversationID, err)
	}
	return msg, nil
}

// SaveResponseTime stores a response time. A customer message is answered
// at most once; a concurrent duplicate is ignored.
func (p *Postgres) SaveResponseTime(ctx context.Context, rt *model.ResponseTime) error {
	const query = `
		INSERT INTO response_times (conversation_id, customer_message_id, agent_message_id, response_time_seconds, customer_message_time, agent_response_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_message_id) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query,
		rt.ConversationID,
		rt.CustomerMessageID,
		rt.AgentMessageID,
		rt.Seconds,
		rt.CustomerMessageTime,
		rt.AgentResponseTime,
	)
	if err != nil {
		return fmt.Errorf("insert response time for %s: %w", rt.CustomerMessageID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		m          model.Message
		senderType string
		kind       string
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.MessageID, &senderType, &m.SenderName, &m.Text, &kind, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	m.SenderType = model.SenderType(senderType)
	m.Kind = model.MessageKind(kind)
	return &m, nil
}
