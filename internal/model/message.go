package model

import (
	"time"
)

// SenderType classifies the author of a chat message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAgent    SenderType = "agent"
	SenderSystem   SenderType = "system"
)

// MessageKind distinguishes regular messages from internal notes.
type MessageKind string

const (
	KindMessage     MessageKind = "message"
	KindPrivateNote MessageKind = "private_note"
)

// Message is a persisted chat message. System messages are never stored.
type Message struct {
	ID             int64       `json:"id,omitempty"`
	ConversationID string      `json:"conversation_id"`
	MessageID      string      `json:"message_id"`
	SenderType     SenderType  `json:"sender_type"`
	SenderName     string      `json:"sender_name"`
	Text           string      `json:"message_text"`
	Kind           MessageKind `json:"message_type"`
	Timestamp      time.Time   `json:"timestamp"`
}

// ResponseTime links a customer message to the agent message that answered it.
type ResponseTime struct {
	ID                  int64     `json:"id,omitempty"`
	ConversationID      string    `json:"conversation_id"`
	CustomerMessageID   string    `json:"customer_message_id"`
	AgentMessageID      string    `json:"agent_message_id"`
	Seconds             int64     `json:"response_time_seconds"`
	CustomerMessageTime time.Time `json:"customer_message_time"`
	AgentResponseTime   time.Time `json:"agent_response_time"`
}
