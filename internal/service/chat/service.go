package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// Turn outcomes reported to Metrics.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeStorageError   = "storage_error"
	OutcomeResponderError = "responder_error"
	OutcomeError          = "error"
)

// Service sequences conversation resolution, message persistence and the responder call.
type Service struct {
	conversations ConversationStore
	messages      MessageLog
	responder     Responder

	logger    *slog.Logger
	metrics   Metrics
	newTurnID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for turn-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports turns and responder latency to m.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewService wires the orchestrator to its three collaborators.
func NewService(conversations ConversationStore, messages MessageLog, responder Responder, opts ...Option) *Service {
	s := &Service{
		conversations: conversations,
		messages:      messages,
		responder:     responder,
		logger:        slog.Default(),
		metrics:       noopMetrics{},
		newTurnID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "chat")
	return s
}

// HandleMessage runs one request/response cycle: resolve the user, create or
// resume the conversation, persist the user turn, ask the responder, persist
// the reply. Nothing is rolled back when a later step fails.
func (s *Service) HandleMessage(ctx context.Context, req chat.Request) (resp chat.Response, err error) {
	defer func() {
		s.metrics.TurnFinished(outcomeOf(err))
	}()

	user, err := s.conversations.FindUser(ctx, req.UserID)
	if err != nil {
		return chat.Response{}, fmt.Errorf("resolve user %d: %w", req.UserID, err)
	}

	conv, err := s.resolveConversation(ctx, user, req)
	if err != nil {
		return chat.Response{}, err
	}

	turnID := s.newTurnID()
	if _, err := s.messages.Append(ctx, conv, chat.RoleUser, req.UserMessage, turnID); err != nil {
		return chat.Response{}, fmt.Errorf("append user message: %w", err)
	}

	started := time.Now()
	reply, err := s.responder.Reply(ctx, req.UserMessage)
	s.metrics.ObserveResponder(time.Since(started), err)
	if err != nil {
		s.logger.Warn("responder failed, user message left without reply",
			"conversation_id", conv.ID, "turn_id", turnID, "error", err)
		var re *chat.ResponderError
		if !errors.As(err, &re) {
			err = &chat.ResponderError{Err: err}
		}
		return chat.Response{}, err
	}

	if _, err := s.messages.Append(ctx, conv, chat.RoleAssistant, reply, turnID); err != nil {
		s.logger.Warn("assistant message not persisted",
			"conversation_id", conv.ID, "turn_id", turnID, "error", err)
		return chat.Response{}, fmt.Errorf("append assistant message: %w", err)
	}

	s.logger.Debug("turn completed",
		"conversation_id", conv.ID, "user_id", user.ID, "turn_id", turnID, "reply_length", len(reply))

	return chat.Response{
		ConversationID: conv.ID,
		UserMessage:    req.UserMessage,
		AIResponse:     reply,
	}, nil
}

func (s *Service) resolveConversation(ctx context.Context, user chat.User, req chat.Request) (chat.Conversation, error) {
	if req.ConversationID == nil {
		conv, err := s.conversations.CreateConversation(ctx, user, chat.TitleFrom(req.UserMessage))
		if err != nil {
			return chat.Conversation{}, fmt.Errorf("create conversation: %w", err)
		}
		s.metrics.ConversationCreated()
		s.logger.Info("conversation created", "conversation_id", conv.ID, "user_id", user.ID)
		return conv, nil
	}

	conv, err := s.conversations.FindConversation(ctx, *req.ConversationID)
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("load conversation %d: %w", *req.ConversationID, err)
	}
	return conv, nil
}

// Conversations lists the user's conversations, newest first.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]chat.Conversation, error) {
	return s.conversations.ListConversations(ctx, userID)
}

// Transcript returns the conversation's messages in insertion order.
func (s *Service) Transcript(ctx context.Context, conversationID int64) ([]chat.Message, error) {
	return s.messages.ListMessages(ctx, conversationID)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, chat.ErrNotFound):
		return OutcomeNotFound
	case chat.IsResponderError(err):
		return OutcomeResponderError
	case chat.IsStorageError(err):
		return OutcomeStorageError
	default:
		return OutcomeError
	}
}
