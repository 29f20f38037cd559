package store

import (
	"context"
	"fmt"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

// UpsertConversation inserts the conversation or refreshes its customer and
// agent fields. Status and tags are left untouched; the site flag only ever
// goes from false to true, and known contact details are not erased.
func (p *Postgres) UpsertConversation(ctx context.Context, c *model.ConversationUpsert) error {
	const query = `
		INSERT INTO conversations (conversation_id, customer_name, customer_phone, customer_email, agent_name, agent_id, is_site_customer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (conversation_id) DO UPDATE SET
			customer_name    = EXCLUDED.customer_name,
			customer_phone   = COALESCE(EXCLUDED.customer_phone, conversations.customer_phone),
			customer_email   = COALESCE(EXCLUDED.customer_email, conversations.customer_email),
			agent_name       = EXCLUDED.agent_name,
			agent_id         = EXCLUDED.agent_id,
			is_site_customer = conversations.is_site_customer OR EXCLUDED.is_site_customer,
			updated_at       = NOW()`

	_, err := p.db.ExecContext(ctx, query,
		c.ConversationID,
		c.CustomerName,
		nullString(c.CustomerPhone),
		nullString(c.CustomerEmail),
		c.AgentName,
		nullString(c.AgentID),
		c.IsSiteCustomer,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation %s: %w", c.ConversationID, err)
	}
	return nil
}

// UpdateConversationStatus sets the lifecycle status, creating a bare
// conversation row when the id has not been seen yet.
func (p *Postgres) UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	const query = `
		INSERT INTO conversations (conversation_id, status)
		VALUES ($1, $2)
		ON CONFLICT (conversation_id) DO UPDATE SET
			status     = EXCLUDED.status,
			updated_at = NOW()`

	if _, err := p.db.ExecContext(ctx, query, conversationID, string(status)); err != nil {
		return fmt.Errorf("update status of %s: %w", conversationID, err)
	}
	return nil
}

// UpdateConversationAgent reassigns the conversation to another agent.
func (p *Postgres) UpdateConversationAgent(ctx context.Context, conversationID, agentName string, agentID *string) error {
	const query = `
		UPDATE conversations
		SET agent_name = $2, agent_id = $3, updated_at = NOW()
		WHERE conversation_id = $1`

	if _, err := p.db.ExecContext(ctx, query, conversationID, agentName, nullString(agentID)); err != nil {
		return fmt.Errorf("update agent of %s: %w", conversationID, err)
	}
	return nil
}

// AddTag adds tag to the conversation unless already present.
func (p *Postgres) AddTag(ctx context.Context, conversationID, tag string) error {
	const query = `
		UPDATE conversations
		SET tags = array_append(tags, $2), updated_at = NOW()
		WHERE conversation_id = $1 AND NOT ($2 = ANY(tags))`

	if _, err := p.db.ExecContext(ctx, query, conversationID, tag); err != nil {
		return fmt.Errorf("add tag %q to %s: %w", tag, conversationID, err)
	}
	return nil
}

// RemoveTag removes every occurrence of tag from the conversation.
func (p *Postgres) RemoveTag(ctx context.Context, conversationID, tag string) error {
	const query = `
		UPDATE conversations
		SET tags = array_remove(tags, $2), updated_at = NOW()
		WHERE conversation_id = $1 AND $2 = ANY(tags)`

	if _, err := p.db.ExecContext(ctx, query, conversationID, tag); err != nil {
		return fmt.Errorf("remove tag %q from %s: %w", tag, conversationID, err)
	}
	return nil
}
