package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Umbler webhook event types.
const (
	WebhookMessage        = "Message"
	WebhookChatClosed     = "ChatClosed"
	WebhookMemberTransfer = "MemberTransfer"

	PayloadTypeChat = "Chat"
)

// WebhookEvent is the envelope of every inbound Umbler webhook call.
type WebhookEvent struct {
	Type      string          `json:"Type"`
	EventDate string          `json:"EventDate"`
	EventID   string          `json:"EventId"`
	Payload   *WebhookPayload `json:"Payload"`
}

// WebhookPayload wraps the event content. Content is decoded lazily because
// its shape depends on the payload type.
type WebhookPayload struct {
	Type    string          `json:"Type"`
	Content json.RawMessage `json:"Content"`
}

// OccurredAt parses EventDate, falling back to now when absent or invalid.
func (e *WebhookEvent) OccurredAt(now time.Time) time.Time {
	if e.EventDate == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339Nano, e.EventDate)
	if err != nil {
		return now
	}
	return t
}

// Chat is the Umbler chat object. Every field is optional in practice; the
// vendor has shipped several overlapping shapes for the same information.
type Chat struct {
	ID                     string       `json:"Id"`
	Contact                *Contact     `json:"Contact"`
	LastMessage            *ChatMessage `json:"LastMessage"`
	LastOrganizationMember *Member      `json:"LastOrganizationMember"`
	OrganizationMembers    []Member     `json:"OrganizationMembers"`
	OrganizationMember     *Member      `json:"OrganizationMember"`
	Setor                  Text         `json:"Setor"`
	Tags                   []Text       `json:"Tags"`
}

// Contact is the customer side of a chat.
type Contact struct {
	Name        string `json:"Name"`
	PhoneNumber string `json:"PhoneNumber"`
	Phone       string `json:"Phone"`
	Email       string `json:"Email"`
}

// ChatMessage is the message that triggered a Message event.
type ChatMessage struct {
	ID        string  `json:"Id"`
	Content   string  `json:"Content"`
	Source    string  `json:"Source"`
	IsPrivate bool    `json:"IsPrivate"`
	Sender    *Member `json:"Sender"`
	Member    *Member `json:"Member"`
}

// Member is an organization member reference or roster entry.
type Member struct {
	ID          string `json:"Id"`
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
}

// Text decodes a JSON value that should be a string but may arrive as
// anything else. Objects with a Name field (tag objects) yield that name;
// other non-string values decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler and never fails.
func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var named struct {
		Name string `json:"Name"`
	}
	if err := json.Unmarshal(b, &named); err == nil {
		*t = Text(named.Name)
		return nil
	}
	*t = ""
	return nil
}

// String returns the trimmed text.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// TagNames returns the trimmed, non-empty payload tags.
func (c *Chat) TagNames() []string {
	var tags []string
	for _, t := range c.Tags {
		if s := t.String(); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

// FindMember looks id up in the roster.
func (c *Chat) FindMember(id string) (Member, bool) {
	for _, m := range c.OrganizationMembers {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// SenderBlock returns the message author block. Older payloads carried it
// under Member instead of Sender.
func (m *ChatMessage) SenderBlock() *Member {
	if m == nil {
		return nil
	}
	if m.Sender != nil {
		return m.Sender
	}
	return m.Member
}

// Label returns the member's Name, falling back to DisplayName.
func (m Member) Label() string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	return strings.TrimSpace(m.DisplayName)
}

// WebhookResult is the JSON acknowledgment returned to the webhook caller.
type WebhookResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Processed      bool   `json:"processed"`
	EventType      string `json:"event_type"`
	EventID        string `json:"event_id"`
	ConversationID string `json:"conversation_id,omitempty"`

	*MessageOutcome

	NewAgent   string  `json:"new_agent,omitempty"`
	NewAgentID *string `json:"new_agent_id,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// MessageOutcome holds the attribution results of a Message event.
type MessageOutcome struct {
	SenderType          SenderType `json:"sender_type"`
	SenderName          string     `json:"sender_name"`
	AgentName           string     `json:"agent_name"`
	AgentID             *string    `json:"agent_id"`
	AgentChannel        string     `json:"agent_channel,omitempty"`
	AgentAttendant      string     `json:"agent_attendant,omitempty"`
	IsSiteCustomer      bool       `json:"is_site_customer"`
	DetectedTags        []string   `json:"detected_tags"`
	ChatClosed          bool       `json:"chat_closed"`
	ClosedBy            *string    `json:"closed_by"`
	ResponseTimeSeconds *int64     `json:"response_time_seconds,omitempty"`
}
