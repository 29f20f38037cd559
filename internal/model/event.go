package model

import (
	"time"
)

// EventKind is the kind of conversation event published downstream.
type EventKind string

const (
	EventKindMessage  EventKind = "message"
	EventKindClosed   EventKind = "closed"
	EventKindTransfer EventKind = "transfer"
)

// ConversationEvent is published after a webhook event has been persisted.
type ConversationEvent struct {
	ID                  string     `json:"id"`
	EventID             string     `json:"event_id"`
	ConversationID      string     `json:"conversation_id"`
	Kind                EventKind  `json:"kind"`
	SenderType          SenderType `json:"sender_type,omitempty"`
	AgentName           string     `json:"agent_name,omitempty"`
	AgentID             *string    `json:"agent_id,omitempty"`
	TagChanges          []string   `json:"tag_changes,omitempty"`
	Closed              bool       `json:"closed"`
	ClosedBy            *string    `json:"closed_by,omitempty"`
	ResponseTimeSeconds *int64     `json:"response_time_seconds,omitempty"`
	OccurredAt          time.Time  `json:"occurred_at"`
}
