package chat

import (
	"context"
	"time"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// ConversationStore resolves users and owns conversation records.
type ConversationStore interface {
	FindUser(ctx context.Context, id int64) (chat.User, error)
	CreateConversation(ctx context.Context, owner chat.User, title string) (chat.Conversation, error)
	FindConversation(ctx context.Context, id int64) (chat.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]chat.Conversation, error)
}

// MessageLog is the append-only sequence of turns per conversation.
// A single Append is all-or-nothing.
type MessageLog interface {
	Append(ctx context.Context, conv chat.Conversation, role chat.Role, content, turnID string) (chat.Message, error)
	ListMessages(ctx context.Context, conversationID int64) ([]chat.Message, error)
}

// Responder turns the latest user text into reply text. No history is passed.
type Responder interface {
	Reply(ctx context.Context, text string) (string, error)
}

// Metrics receives orchestration events.
type Metrics interface {
	ConversationCreated()
	ObserveResponder(elapsed time.Duration, err error)
	TurnFinished(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ConversationCreated()                   {}
func (noopMetrics) ObserveResponder(time.Duration, error) {}
func (noopMetrics) TurnFinished(string)                    {}
