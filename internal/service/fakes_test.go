package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

// memoryStore is an in-memory Store recording every call.
type memoryStore struct {
	mu            sync.Mutex
	calls         []string
	conversations map[string]*model.Conversation
	messages      []model.Message
	responseTimes []model.ResponseTime
	failOn        string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{conversations: make(map[string]*model.Conversation)}
}

var errStoreDown = errors.New("store down")

func (m *memoryStore) record(call string) error {
	m.calls = append(m.calls, call)
	if m.failOn == call {
		return errStoreDown
	}
	return nil
}

func (m *memoryStore) conversation(id string) *model.Conversation {
	conv, ok := m.conversations[id]
	if !ok {
		conv = &model.Conversation{ConversationID: id, Status: model.StatusActive}
		m.conversations[id] = conv
	}
	return conv
}

func (m *memoryStore) UpsertConversation(_ context.Context, up *model.ConversationUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpsertConversation"); err != nil {
		return err
	}
	conv := m.conversation(up.ConversationID)
	conv.CustomerName = up.CustomerName
	conv.CustomerPhone = up.CustomerPhone
	conv.CustomerEmail = up.CustomerEmail
	conv.AgentName = up.AgentName
	conv.AgentID = up.AgentID
	conv.IsSiteCustomer = conv.IsSiteCustomer || up.IsSiteCustomer
	return nil
}

func (m *memoryStore) CreateMessage(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateMessage"); err != nil {
		return err
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memoryStore) LastUnansweredCustomerMessage(_ context.Context, conversationID, agentMessageID string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("LastUnansweredCustomerMessage"); err != nil {
		return nil, err
	}

	answered := make(map[string]bool)
	for _, rt := range m.responseTimes {
		answered[rt.CustomerMessageID] = true
	}

	var lastReply *time.Time
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.ConversationID != conversationID || msg.SenderType != model.SenderAgent ||
			msg.Kind != model.KindMessage || msg.MessageID == agentMessageID {
			continue
		}
		if lastReply == nil || msg.Timestamp.After(*lastReply) {
			lastReply = &msg.Timestamp
		}
	}

	var last *model.Message
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.ConversationID != conversationID || msg.SenderType != model.SenderCustomer || answered[msg.MessageID] {
			continue
		}
		if lastReply != nil && !msg.Timestamp.After(*lastReply) {
			continue
		}
		if last == nil || msg.Timestamp.After(last.Timestamp) {
			last = msg
		}
	}
	if last == nil {
		return nil, nil
	}
	out := *last
	return &out, nil
}

func (m *memoryStore) SaveResponseTime(_ context.Context, rt *model.ResponseTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SaveResponseTime"); err != nil {
		return err
	}
	m.responseTimes = append(m.responseTimes, *rt)
	return nil
}

func (m *memoryStore) UpdateConversationStatus(_ context.Context, conversationID string, status model.ConversationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateConversationStatus"); err != nil {
		return err
	}
	m.conversation(conversationID).Status = status
	return nil
}

func (m *memoryStore) UpdateConversationAgent(_ context.Context, conversationID, agentName string, agentID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateConversationAgent"); err != nil {
		return err
	}
	conv := m.conversation(conversationID)
	conv.AgentName = agentName
	conv.AgentID = agentID
	return nil
}

func (m *memoryStore) AddTag(_ context.Context, conversationID, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddTag"); err != nil {
		return err
	}
	conv := m.conversation(conversationID)
	if !conv.HasTag(tag) {
		conv.Tags = append(conv.Tags, tag)
	}
	return nil
}

func (m *memoryStore) RemoveTag(_ context.Context, conversationID, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveTag"); err != nil {
		return err
	}
	conv := m.conversation(conversationID)
	kept := conv.Tags[:0]
	for _, t := range conv.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	conv.Tags = kept
	return nil
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*model.ConversationEvent
	err    error
}

func (p *capturePublisher) PublishEvent(_ context.Context, event *model.ConversationEvent) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.events = append(p.events, event)
	return uint64(len(p.events)), nil
}
