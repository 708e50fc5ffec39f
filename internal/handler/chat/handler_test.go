package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/chatdesk/backend/internal/service/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/store/memory"
)

type failingResponder struct{}

func (failingResponder) Reply(context.Context, string) (string, error) {
	return "", errors.New("upstream down")
}

func setupRouter(responder chatservice.Responder) (*chi.Mux, *memory.Store) {
	store := memory.New(chat.SeedUsers())
	svc := chatservice.NewService(store, store, responder)
	handler := New(svc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func postChat(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatCreatesConversation(t *testing.T) {
	r, _ := setupRouter(ai.NewRuleResponder())

	resp := postChat(r, `{"userId":1,"userMessage":"Where is my order?"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var got chat.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ConversationID == 0 {
		t.Fatal("expected a conversation id")
	}
	if got.UserMessage != "Where is my order?" {
		t.Fatalf("unexpected user message %q", got.UserMessage)
	}
	if got.AIResponse != ai.OrderPrompt {
		t.Fatalf("unexpected reply %q", got.AIResponse)
	}
}

func TestChatResponseShape(t *testing.T) {
	r, _ := setupRouter(ai.NewRuleResponder())

	resp := postChat(r, `{"userId":1,"userMessage":"hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"conversationId", "userMessage", "aiResponse"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("response missing %q: %v", key, raw)
		}
	}
	if len(raw) != 3 {
		t.Fatalf("unexpected extra fields: %v", raw)
	}
}

func TestChatResumesConversation(t *testing.T) {
	r, store := setupRouter(ai.NewRuleResponder())

	first := postChat(r, `{"userId":1,"userMessage":"hello"}`)
	var created chat.Response
	if err := json.Unmarshal(first.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"userId": 1, "conversationId": created.ConversationID, "userMessage": "again"})
	second := postChat(r, string(body))
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", second.Code)
	}

	messages, err := store.ListMessages(context.Background(), created.ConversationID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
}

func TestChatErrorStatuses(t *testing.T) {
	r, _ := setupRouter(ai.NewRuleResponder())

	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "invalid json", body: `{`, want: http.StatusBadRequest},
		{name: "missing user", body: `{"userMessage":"hi"}`, want: http.StatusBadRequest},
		{name: "unknown user", body: `{"userId":99,"userMessage":"hi"}`, want: http.StatusNotFound},
		{name: "unknown conversation", body: `{"userId":1,"conversationId":42,"userMessage":"hi"}`, want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postChat(r, tc.body)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestChatResponderFailure(t *testing.T) {
	r, store := setupRouter(failingResponder{})

	resp := postChat(r, `{"userId":1,"userMessage":"hi"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	convs, err := store.ListConversations(context.Background(), 1)
	if err != nil || len(convs) != 1 {
		t.Fatalf("expected one conversation, got %v (err %v)", convs, err)
	}
	messages, _ := store.ListMessages(context.Background(), convs[0].ID)
	if len(messages) != 1 || messages[0].Role != chat.RoleUser {
		t.Fatalf("expected only the user message to remain, got %+v", messages)
	}
}

func TestListEndpoints(t *testing.T) {
	r, _ := setupRouter(ai.NewRuleResponder())

	created := postChat(r, `{"userId":1,"userMessage":"hello"}`)
	var turn chat.Response
	if err := json.Unmarshal(created.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users/1/conversations", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var convs []chat.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &convs); err != nil {
		t.Fatalf("decode conversations: %v", err)
	}
	if len(convs) != 1 || convs[0].Title != "hello" {
		t.Fatalf("unexpected conversations %+v", convs)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/conversations/"+strconv.FormatInt(turn.ConversationID, 10)+"/messages", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var messages []chat.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 2 || messages[0].Role != chat.RoleUser || messages[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected transcript %+v", messages)
	}

	for path, want := range map[string]int{
		"/users/abc/conversations":   http.StatusBadRequest,
		"/users/99/conversations":    http.StatusNotFound,
		"/conversations/0/messages":  http.StatusBadRequest,
		"/conversations/99/messages": http.StatusNotFound,
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.Code)
		}
	}
}

func TestWebSocketTurns(t *testing.T) {
	r, _ := setupRouter(ai.NewRuleResponder())
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(chat.Request{UserID: 1, UserMessage: "hello"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var first chat.Response
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.AIResponse != "This is a mock AI response to: hello" {
		t.Fatalf("unexpected reply %q", first.AIResponse)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var bad wsError
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("read: %v", err)
	}
	if bad.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 frame, got %+v", bad)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"userId":1`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var truncated wsError
	if err := conn.ReadJSON(&truncated); err != nil {
		t.Fatalf("read after truncated frame: %v", err)
	}
	if truncated.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 frame for truncated json, got %+v", truncated)
	}

	id := first.ConversationID
	if err := conn.WriteJSON(chat.Request{UserID: 1, ConversationID: &id, UserMessage: "my order"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var second chat.Response
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read: %v", err)
	}
	if second.ConversationID != id || second.AIResponse != ai.OrderPrompt {
		t.Fatalf("unexpected second turn %+v", second)
	}

	if err := conn.WriteJSON(chat.Request{UserID: 77, UserMessage: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var missing wsError
	if err := conn.ReadJSON(&missing); err != nil {
		t.Fatalf("read: %v", err)
	}
	if missing.Status != http.StatusNotFound {
		t.Fatalf("expected 404 frame, got %+v", missing)
	}
}
