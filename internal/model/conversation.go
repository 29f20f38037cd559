// Package model defines data structures for the support analytics service.
package model

import (
	"time"
)

// ConversationStatus is the lifecycle status of a conversation.
type ConversationStatus string

const (
	StatusActive ConversationStatus = "active"
	StatusClosed ConversationStatus = "closed"
)

// Conversation is a customer-agent chat thread identified by the chat
// platform's own id.
type Conversation struct {
	ID             int64              `json:"id"`
	ConversationID string             `json:"conversation_id"`
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  *string            `json:"customer_phone"`
	CustomerEmail  *string            `json:"customer_email"`
	AgentName      string             `json:"agent_name"`
	AgentID        *string            `json:"agent_id"`
	IsSiteCustomer bool               `json:"is_site_customer"`
	Status         ConversationStatus `json:"status"`
	Tags           []string           `json:"tags"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ConversationUpsert carries the fields written on every Message event.
// Status and tags are not part of it; they are mutated separately.
type ConversationUpsert struct {
	ConversationID string
	CustomerName   string
	CustomerPhone  *string
	CustomerEmail  *string
	AgentName      string
	AgentID        *string
	IsSiteCustomer bool
}

// HasTag reports whether the conversation carries tag.
func (c *Conversation) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
