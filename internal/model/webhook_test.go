package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatDecodesLooseFields(t *testing.T) {
	raw := `{
		"Id": "chat-1",
		"Setor": 42,
		"Tags": ["VIP", {"Name": "site"}, 7, "  ", null],
		"LastMessage": {"Id": "m1", "Content": "oi", "Member": {"Name": "Ana"}}
	}`

	var chat Chat
	require.NoError(t, json.Unmarshal([]byte(raw), &chat))

	assert.Equal(t, "chat-1", chat.ID)
	assert.Equal(t, "", chat.Setor.String())
	assert.Equal(t, []string{"VIP", "site"}, chat.TagNames())
	require.NotNil(t, chat.LastMessage.SenderBlock())
	assert.Equal(t, "Ana", chat.LastMessage.SenderBlock().Name)
}

func TestSenderBlockPrefersSender(t *testing.T) {
	msg := &ChatMessage{
		Sender: &Member{Name: "Sender"},
		Member: &Member{Name: "Member"},
	}
	assert.Equal(t, "Sender", msg.SenderBlock().Name)

	var nilMsg *ChatMessage
	assert.Nil(t, nilMsg.SenderBlock())
}

func TestMemberLabel(t *testing.T) {
	assert.Equal(t, "Ana", Member{Name: " Ana ", DisplayName: "A."}.Label())
	assert.Equal(t, "A.", Member{DisplayName: "A."}.Label())
	assert.Equal(t, "", Member{ID: "x"}.Label())
}

func TestOccurredAt(t *testing.T) {
	now := time.Date(2024, 2, 7, 12, 0, 0, 0, time.UTC)

	e := &WebhookEvent{EventDate: "2024-02-07T18:44:01.3135533Z"}
	got := e.OccurredAt(now)
	assert.Equal(t, 18, got.Hour())
	assert.Equal(t, 44, got.Minute())

	assert.Equal(t, now, (&WebhookEvent{}).OccurredAt(now))
	assert.Equal(t, now, (&WebhookEvent{EventDate: "yesterday"}).OccurredAt(now))
}

func TestWebhookResultOmitsMessageOutcome(t *testing.T) {
	b, err := json.Marshal(&WebhookResult{Success: true, EventType: WebhookChatClosed, ConversationID: "X"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "sender_type")

	b, err = json.Marshal(&WebhookResult{
		Success:        true,
		MessageOutcome: &MessageOutcome{SenderType: SenderAgent, DetectedTags: []string{}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"sender_type":"agent"`)
	assert.Contains(t, string(b), `"detected_tags":[]`)
}

func TestConversationHasTag(t *testing.T) {
	conv := &Conversation{Tags: []string{"VIP", "site"}}
	assert.True(t, conv.HasTag("VIP"))
	assert.True(t, conv.HasTag("site"))
	assert.False(t, conv.HasTag("vip"))
	assert.False(t, (&Conversation{}).HasTag("VIP"))
}
