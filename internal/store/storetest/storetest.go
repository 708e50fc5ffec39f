// Package storetest checks conversation store and message log implementations
// against the behaviour the chat service relies on.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/chatdesk/backend/internal/service/chat"
)

// Store is the combined surface a backend must provide.
type Store interface {
	chatservice.ConversationStore
	chatservice.MessageLog
}

// Factory returns a fresh store holding exactly the given users.
type Factory func(t *testing.T, users []chat.User) Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("FindUser", func(t *testing.T) { testFindUser(t, newStore) })
	t.Run("CreateAndFindConversation", func(t *testing.T) { testCreateAndFindConversation(t, newStore) })
	t.Run("ListConversations", func(t *testing.T) { testListConversations(t, newStore) })
	t.Run("AppendPreservesOrder", func(t *testing.T) { testAppendPreservesOrder(t, newStore) })
	t.Run("AppendRejectsInvalidRole", func(t *testing.T) { testAppendRejectsInvalidRole(t, newStore) })
	t.Run("AppendUnknownConversation", func(t *testing.T) { testAppendUnknownConversation(t, newStore) })
	t.Run("AppendLargeContent", func(t *testing.T) { testAppendLargeContent(t, newStore) })
	t.Run("ConcurrentAppends", func(t *testing.T) { testConcurrentAppends(t, newStore) })
}

func testFindUser(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())

	user, err := store.FindUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", user.Email)

	_, err = store.FindUser(ctx, 404)
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
	assert.ErrorIs(t, err, chat.ErrNotFound)
}

func testCreateAndFindConversation(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())
	owner := chat.SeedUsers()[0]

	first, err := store.CreateConversation(ctx, owner, "first")
	require.NoError(t, err)
	second, err := store.CreateConversation(ctx, owner, "second")
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, owner.ID, first.UserID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := store.FindConversation(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, owner.ID, got.UserID)
	assert.Equal(t, "first", got.Title)

	_, err = store.FindConversation(ctx, second.ID+1000)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func testListConversations(t *testing.T, newStore Factory) {
	ctx := context.Background()
	users := chat.SeedUsers()
	store := newStore(t, users)

	older, err := store.CreateConversation(ctx, users[0], "older")
	require.NoError(t, err)
	_, err = store.CreateConversation(ctx, users[1], "someone else")
	require.NoError(t, err)
	newer, err := store.CreateConversation(ctx, users[0], "newer")
	require.NoError(t, err)

	list, err := store.ListConversations(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	_, err = store.ListConversations(ctx, 404)
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
}

func testAppendPreservesOrder(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())
	conv, err := store.CreateConversation(ctx, chat.SeedUsers()[0], "order")
	require.NoError(t, err)

	empty, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	userMsg, err := store.Append(ctx, conv, chat.RoleUser, "hello", "turn-1")
	require.NoError(t, err)
	assistantMsg, err := store.Append(ctx, conv, chat.RoleAssistant, "", "turn-1")
	require.NoError(t, err)

	assert.Equal(t, conv.ID, userMsg.ConversationID)
	assert.Greater(t, assistantMsg.ID, userMsg.ID)
	assert.False(t, userMsg.CreatedAt.IsZero())

	messages, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "turn-1", messages[0].TurnID)
	assert.Equal(t, chat.RoleAssistant, messages[1].Role)
	assert.Equal(t, "", messages[1].Content)

	_, err = store.ListMessages(ctx, conv.ID+1000)
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func testAppendRejectsInvalidRole(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())
	conv, err := store.CreateConversation(ctx, chat.SeedUsers()[0], "roles")
	require.NoError(t, err)

	_, err = store.Append(ctx, conv, chat.Role("system"), "nope", "")
	assert.ErrorIs(t, err, chat.ErrInvalidRole)

	messages, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func testAppendUnknownConversation(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())

	_, err := store.Append(ctx, chat.Conversation{ID: 999, UserID: 1}, chat.RoleUser, "hi", "")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func testAppendLargeContent(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())
	conv, err := store.CreateConversation(ctx, chat.SeedUsers()[0], "large")
	require.NoError(t, err)

	content := strings.Repeat("0123456789abcdef", 8*1024)
	_, err = store.Append(ctx, conv, chat.RoleUser, content, "turn-large")
	require.NoError(t, err)

	messages, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Len(t, messages[0].Content, len(content))
	assert.Equal(t, content, messages[0].Content)
}

func testConcurrentAppends(t *testing.T, newStore Factory) {
	ctx := context.Background()
	store := newStore(t, chat.SeedUsers())
	conv, err := store.CreateConversation(ctx, chat.SeedUsers()[0], "busy")
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Append(ctx, conv, chat.RoleUser, fmt.Sprintf("msg-%d", i), ""); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	messages, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, writers)

	seen := make(map[int64]bool, writers)
	for _, msg := range messages {
		assert.False(t, seen[msg.ID], "duplicate message id %d", msg.ID)
		seen[msg.ID] = true
	}
}
