// Package memory keeps users, conversations and messages in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// Store implements both the conversation store and the message log.
type Store struct {
	mu            sync.RWMutex
	users         map[int64]chat.User
	conversations map[int64]chat.Conversation
	messages      map[int64][]chat.Message

	nextConversationID int64
	nextMessageID      int64
	now                func() time.Time
}

// New returns an empty Store holding the supplied users.
func New(users []chat.User) *Store {
	s := &Store{
		users:         make(map[int64]chat.User, len(users)),
		conversations: make(map[int64]chat.Conversation),
		messages:      make(map[int64][]chat.Message),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// FindUser retrieves a user by identifier.
func (s *Store) FindUser(_ context.Context, id int64) (chat.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return chat.User{}, chat.ErrUserNotFound
	}
	return user, nil
}

// CreateConversation assigns the next identifier and records owner as the conversation's user.
func (s *Store) CreateConversation(_ context.Context, owner chat.User, title string) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[owner.ID]; !ok {
		return chat.Conversation{}, chat.ErrUserNotFound
	}

	s.nextConversationID++
	conv := chat.Conversation{
		ID:        s.nextConversationID,
		UserID:    owner.ID,
		Title:     title,
		CreatedAt: s.now(),
	}
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = make([]chat.Message, 0, 16)
	return conv, nil
}

// FindConversation retrieves a conversation by identifier.
func (s *Store) FindConversation(_ context.Context, id int64) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return conv, nil
}

// ListConversations returns the user's conversations, newest first.
func (s *Store) ListConversations(_ context.Context, userID int64) ([]chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, chat.ErrUserNotFound
	}

	out := make([]chat.Conversation, 0)
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Append adds a message to the end of the conversation's log.
func (s *Store) Append(_ context.Context, conv chat.Conversation, role chat.Role, content, turnID string) (chat.Message, error) {
	if !role.Valid() {
		return chat.Message{}, chat.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conv.ID]; !ok {
		return chat.Message{}, chat.ErrConversationNotFound
	}

	s.nextMessageID++
	msg := chat.Message{
		ID:             s.nextMessageID,
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		TurnID:         turnID,
		CreatedAt:      s.now(),
	}
	s.messages[conv.ID] = append(s.messages[conv.ID], msg)
	return msg, nil
}

// ListMessages returns a copy of the conversation's messages in insertion order.
func (s *Store) ListMessages(_ context.Context, conversationID int64) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[conversationID]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
