// Package service implements the webhook pipeline and the dashboard read
// models on top of the persistence collaborator.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/attribution"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/businesshours"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/logger"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/metrics"
)

const (
	// MediaPlaceholder replaces the body of messages without text content.
	MediaPlaceholder = "🎵 Mensagem de áudio ou arquivo"

	// SystemSenderName is stored as sender_name for system messages.
	SystemSenderName = "System"
	// CustomerSenderName is stored when the contact has no name.
	CustomerSenderName = "Customer"
)

// Store is the persistence collaborator used by the webhook pipeline. Every
// call is a single statement keyed by the external conversation id.
type Store interface {
	UpsertConversation(ctx context.Context, conv *model.ConversationUpsert) error
	CreateMessage(ctx context.Context, msg *model.Message) error
	// LastUnansweredCustomerMessage returns the latest customer message sent
	// after the previous public agent reply (other than agentMessageID) and
	// not yet paired, or nil, nil when there is none.
	LastUnansweredCustomerMessage(ctx context.Context, conversationID, agentMessageID string) (*model.Message, error)
	SaveResponseTime(ctx context.Context, rt *model.ResponseTime) error
	UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error
	UpdateConversationAgent(ctx context.Context, conversationID, agentName string, agentID *string) error
	AddTag(ctx context.Context, conversationID, tag string) error
	RemoveTag(ctx context.Context, conversationID, tag string) error
}

// EventPublisher publishes processed conversation events downstream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *model.ConversationEvent) (uint64, error)
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishEvent implements EventPublisher.
func (NopPublisher) PublishEvent(context.Context, *model.ConversationEvent) (uint64, error) {
	return 0, nil
}

// ValidationError reports a malformed webhook event. Nothing is persisted
// when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WebhookService turns Umbler webhook events into conversation state.
type WebhookService struct {
	store      Store
	publisher  EventPublisher
	classifier *attribution.Classifier
	resolver   *attribution.Resolver
	site       *attribution.SiteDetector
	calculator *businesshours.Calculator
	logger     *logger.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewWebhookService creates a new webhook service. A nil publisher disables
// event publishing.
func NewWebhookService(
	store Store,
	publisher EventPublisher,
	identities *attribution.IdentityMap,
	site *attribution.SiteDetector,
	calculator *businesshours.Calculator,
	log *logger.Logger,
) *WebhookService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &WebhookService{
		store:      store,
		publisher:  publisher,
		classifier: attribution.NewClassifier(identities),
		resolver:   attribution.NewResolver(identities),
		site:       site,
		calculator: calculator,
		logger:     log,
		tracer:     otel.Tracer("github.com/ArthurDS-tech/Umbler-sysystem/internal/service"),
		now:        time.Now,
	}
}

// Process validates and applies one webhook event. It returns a
// *ValidationError for malformed events; any other error comes from the
// store and leaves already applied writes in place.
func (s *WebhookService) Process(ctx context.Context, event *model.WebhookEvent) (*model.WebhookResult, error) {
	ctx, span := s.tracer.Start(ctx, "webhook.process")
	defer span.End()

	result, err := s.process(ctx, event)
	outcome := "processed"
	switch {
	case err != nil:
		outcome = "error"
		var verr *ValidationError
		if errors.As(err, &verr) {
			outcome = "invalid"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !result.Processed:
		outcome = "ignored"
	}

	eventType := "unknown"
	if event != nil && event.Type != "" {
		eventType = event.Type
	}
	metrics.RecordWebhookEvent(eventType, outcome)
	return result, err
}

func (s *WebhookService) process(ctx context.Context, event *model.WebhookEvent) (*model.WebhookResult, error) {
	if event == nil || event.Type == "" || event.Payload == nil || event.EventID == "" {
		return nil, invalid("invalid format: expected Type, EventDate, Payload, EventId")
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("webhook.event_type", event.Type),
		attribute.String("webhook.event_id", event.EventID),
	)

	log := s.logger.WithEvent(logger.CorrelationID(ctx), event.EventID, event.Type)

	switch event.Type {
	case model.WebhookMessage:
		if event.Payload.Type != model.PayloadTypeChat {
			return s.ignored(event, log), nil
		}
		chat, err := decodeChat(event.Payload.Content)
		if err != nil {
			return nil, err
		}
		if chat.ID == "" || chat.LastMessage == nil {
			return nil, invalid("missing chat or message data")
		}
		return s.handleMessage(ctx, event, chat, log)

	case model.WebhookChatClosed:
		chat, err := decodeChat(event.Payload.Content)
		if err != nil {
			return nil, err
		}
		if chat.ID == "" {
			return nil, invalid("missing chat id")
		}
		return s.handleChatClosed(ctx, event, chat, log)

	case model.WebhookMemberTransfer:
		chat, err := decodeChat(event.Payload.Content)
		if err != nil {
			return nil, err
		}
		if chat.ID == "" {
			return nil, invalid("missing chat id")
		}
		return s.handleMemberTransfer(ctx, event, chat, log)

	default:
		return s.ignored(event, log), nil
	}
}

func decodeChat(raw json.RawMessage) (*model.Chat, error) {
	chat := &model.Chat{}
	if len(raw) == 0 || string(raw) == "null" {
		return chat, nil
	}
	if err := json.Unmarshal(raw, chat); err != nil {
		return nil, invalid("invalid chat content: %v", err)
	}
	return chat, nil
}

func (s *WebhookService) ignored(event *model.WebhookEvent, log *logger.Logger) *model.WebhookResult {
	log.Info("webhook event received but not processed")
	return &model.WebhookResult{
		Success:     true,
		Message:     fmt.Sprintf("event %s received but not processed", event.Type),
		Processed:   false,
		EventType:   event.Type,
		EventID:     event.EventID,
		ProcessedAt: s.now().UTC(),
	}
}

func (s *WebhookService) handleMessage(ctx context.Context, event *model.WebhookEvent, chat *model.Chat, log *logger.Logger) (*model.WebhookResult, error) {
	msg := chat.LastMessage
	conversationID := chat.ID

	senderType := s.classifier.Classify(chat, msg)
	agent := s.resolver.Resolve(chat, msg)

	customerName := CustomerSenderName
	var customerPhone, customerEmail *string
	if c := chat.Contact; c != nil {
		if c.Name != "" {
			customerName = c.Name
		}
		customerPhone = firstNonEmpty(c.PhoneNumber, c.Phone)
		customerEmail = firstNonEmpty(c.Email)
	}

	var senderName string
	switch senderType {
	case model.SenderAgent:
		senderName = agent.Name
	case model.SenderSystem:
		senderName = SystemSenderName
	default:
		senderName = customerName
	}

	text := msg.Content
	if text == "" {
		text = MediaPlaceholder
	}

	tags := chat.TagNames()
	isSite := s.site.Detect(text, tags)
	closed, closedBy := attribution.DetectClosure(text)
	tagChanges := attribution.DetectTags(text, tags)

	log.Debug("message classified",
		zap.String("conversation_id", conversationID),
		zap.String("sender_type", string(senderType)),
		zap.String("agent_name", agent.Name),
		zap.Bool("is_site_customer", isSite),
		zap.Bool("chat_closed", closed),
		zap.Strings("tag_changes", tagChanges),
	)

	err := s.store.UpsertConversation(ctx, &model.ConversationUpsert{
		ConversationID: conversationID,
		CustomerName:   customerName,
		CustomerPhone:  customerPhone,
		CustomerEmail:  customerEmail,
		AgentName:      agent.Name,
		AgentID:        agent.ID,
		IsSiteCustomer: isSite,
	})
	if err != nil {
		return nil, s.storeFailure(log, "failed to upsert conversation", err)
	}

	if closed {
		if err := s.store.UpdateConversationStatus(ctx, conversationID, model.StatusClosed); err != nil {
			return nil, s.storeFailure(log, "failed to close conversation", err)
		}
		metrics.ChatClosuresTotal.WithLabelValues("message").Inc()
		log.Info("conversation closed by message", zap.String("conversation_id", conversationID), zap.String("closed_by", closedBy))
	}

	if err := s.applyTags(ctx, conversationID, tagChanges); err != nil {
		return nil, s.storeFailure(log, "failed to apply tag change", err)
	}

	messageID := msg.ID
	if messageID == "" {
		messageID = event.EventID
	}
	timestamp := event.OccurredAt(s.now())

	var responseSeconds *int64
	if senderType != model.SenderSystem {
		kind := model.KindMessage
		if msg.IsPrivate {
			kind = model.KindPrivateNote
		}
		err := s.store.CreateMessage(ctx, &model.Message{
			ConversationID: conversationID,
			MessageID:      messageID,
			SenderType:     senderType,
			SenderName:     senderName,
			Text:           text,
			Kind:           kind,
			Timestamp:      timestamp,
		})
		if err != nil {
			return nil, s.storeFailure(log, "failed to create message", err)
		}
		metrics.MessagesTotal.WithLabelValues(string(senderType)).Inc()

		if senderType == model.SenderAgent && !msg.IsPrivate {
			responseSeconds, err = s.recordResponseTime(ctx, conversationID, messageID, timestamp, log)
			if err != nil {
				return nil, err
			}
		}
	} else {
		metrics.MessagesTotal.WithLabelValues(string(senderType)).Inc()
		log.Debug("system message not persisted", zap.String("conversation_id", conversationID))
	}

	outcome := &model.MessageOutcome{
		SenderType:          senderType,
		SenderName:          senderName,
		AgentName:           agent.Name,
		AgentID:             agent.ID,
		AgentChannel:        agent.Channel,
		AgentAttendant:      agent.Attendant,
		IsSiteCustomer:      isSite,
		DetectedTags:        tagChanges,
		ChatClosed:          closed,
		ResponseTimeSeconds: responseSeconds,
	}
	if closed && closedBy != "" {
		outcome.ClosedBy = &closedBy
	}

	s.publish(ctx, log, &model.ConversationEvent{
		EventID:             event.EventID,
		ConversationID:      conversationID,
		Kind:                model.EventKindMessage,
		SenderType:          senderType,
		AgentName:           agent.Name,
		AgentID:             agent.ID,
		TagChanges:          tagChanges,
		Closed:              closed,
		ClosedBy:            outcome.ClosedBy,
		ResponseTimeSeconds: responseSeconds,
		OccurredAt:          timestamp,
	})

	log.Info("message event processed",
		zap.String("conversation_id", conversationID),
		zap.String("sender_type", string(senderType)),
	)

	return &model.WebhookResult{
		Success:        true,
		Message:        "webhook processed successfully",
		Processed:      true,
		EventType:      event.Type,
		EventID:        event.EventID,
		ConversationID: conversationID,
		MessageOutcome: outcome,
		ProcessedAt:    s.now().UTC(),
	}, nil
}

func (s *WebhookService) applyTags(ctx context.Context, conversationID string, changes []string) error {
	for _, raw := range changes {
		change, ok := attribution.ParseTagChange(raw)
		if !ok {
			continue
		}
		if change.Remove {
			if err := s.store.RemoveTag(ctx, conversationID, change.Tag); err != nil {
				return fmt.Errorf("remove %q: %w", change.Tag, err)
			}
			metrics.TagChangesTotal.WithLabelValues("remove").Inc()
			continue
		}
		if err := s.store.AddTag(ctx, conversationID, change.Tag); err != nil {
			return fmt.Errorf("add %q: %w", change.Tag, err)
		}
		metrics.TagChangesTotal.WithLabelValues("add").Inc()
	}
	return nil
}

// recordResponseTime pairs an agent reply with the last unanswered customer
// message. It returns the stored duration, or nil when nothing was stored.
func (s *WebhookService) recordResponseTime(ctx context.Context, conversationID, agentMessageID string, agentTime time.Time, log *logger.Logger) (*int64, error) {
	customer, err := s.store.LastUnansweredCustomerMessage(ctx, conversationID, agentMessageID)
	if err != nil {
		return nil, s.storeFailure(log, "failed to get last customer message", err)
	}
	if customer == nil {
		log.Debug("no unanswered customer message", zap.String("conversation_id", conversationID))
		return nil, nil
	}

	seconds := s.calculator.Seconds(customer.Timestamp, agentTime)
	if !s.calculator.Accept(seconds) {
		metrics.ResponseTimesDiscarded.Inc()
		log.Info("response time discarded",
			zap.String("conversation_id", conversationID),
			zap.Int64("seconds", seconds),
		)
		return nil, nil
	}

	err = s.store.SaveResponseTime(ctx, &model.ResponseTime{
		ConversationID:      conversationID,
		CustomerMessageID:   customer.MessageID,
		AgentMessageID:      agentMessageID,
		Seconds:             seconds,
		CustomerMessageTime: customer.Timestamp,
		AgentResponseTime:   agentTime,
	})
	if err != nil {
		return nil, s.storeFailure(log, "failed to save response time", err)
	}

	metrics.RecordResponseTime(s.calculator.Mode(), seconds)
	log.Info("response time recorded",
		zap.String("conversation_id", conversationID),
		zap.Int64("seconds", seconds),
		zap.String("mode", s.calculator.Mode()),
	)
	return &seconds, nil
}

func (s *WebhookService) handleChatClosed(ctx context.Context, event *model.WebhookEvent, chat *model.Chat, log *logger.Logger) (*model.WebhookResult, error) {
	if err := s.store.UpdateConversationStatus(ctx, chat.ID, model.StatusClosed); err != nil {
		return nil, s.storeFailure(log, "failed to close conversation", err)
	}
	metrics.ChatClosuresTotal.WithLabelValues("event").Inc()

	s.publish(ctx, log, &model.ConversationEvent{
		EventID:        event.EventID,
		ConversationID: chat.ID,
		Kind:           model.EventKindClosed,
		Closed:         true,
		OccurredAt:     event.OccurredAt(s.now()),
	})

	log.Info("conversation closed", zap.String("conversation_id", chat.ID))

	return &model.WebhookResult{
		Success:        true,
		Message:        "chat closed processed",
		Processed:      true,
		EventType:      event.Type,
		EventID:        event.EventID,
		ConversationID: chat.ID,
		ProcessedAt:    s.now().UTC(),
	}, nil
}

func (s *WebhookService) handleMemberTransfer(ctx context.Context, event *model.WebhookEvent, chat *model.Chat, log *logger.Logger) (*model.WebhookResult, error) {
	agent := s.resolver.Resolve(chat, nil)

	if err := s.store.UpdateConversationAgent(ctx, chat.ID, agent.Name, agent.ID); err != nil {
		return nil, s.storeFailure(log, "failed to update conversation agent", err)
	}

	s.publish(ctx, log, &model.ConversationEvent{
		EventID:        event.EventID,
		ConversationID: chat.ID,
		Kind:           model.EventKindTransfer,
		AgentName:      agent.Name,
		AgentID:        agent.ID,
		OccurredAt:     event.OccurredAt(s.now()),
	})

	log.Info("conversation transferred",
		zap.String("conversation_id", chat.ID),
		zap.String("new_agent", agent.Name),
	)

	return &model.WebhookResult{
		Success:        true,
		Message:        "transfer processed",
		Processed:      true,
		EventType:      event.Type,
		EventID:        event.EventID,
		ConversationID: chat.ID,
		NewAgent:       agent.Name,
		NewAgentID:     agent.ID,
		ProcessedAt:    s.now().UTC(),
	}, nil
}

func (s *WebhookService) storeFailure(log *logger.Logger, msg string, err error) error {
	log.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}

// publish sends the event downstream. Failures are logged and counted but
// never fail the webhook.
func (s *WebhookService) publish(ctx context.Context, log *logger.Logger, event *model.ConversationEvent) {
	event.ID = uuid.Must(uuid.NewV7()).String()
	if _, err := s.publisher.PublishEvent(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		log.Warn("failed to publish conversation event", zap.Error(err))
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}
