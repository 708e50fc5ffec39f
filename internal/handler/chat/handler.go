package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	"github.com/zhouzirui/chatdesk/backend/pkg/utils"
)

// Service is the chat orchestration surface the handlers need.
type Service interface {
	HandleMessage(ctx context.Context, req chat.Request) (chat.Response, error)
	Conversations(ctx context.Context, userID int64) ([]chat.Conversation, error)
	Transcript(ctx context.Context, conversationID int64) ([]chat.Message, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  Service
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New 创建聊天处理器
func New(chatSvc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger.With("component", "chat-handler"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
	r.Get("/users/{userID}/conversations", h.handleListConversations)
	r.Get("/conversations/{conversationID}/messages", h.handleListMessages)
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	resp, err := h.chatSvc.HandleMessage(r.Context(), req)
	if err != nil {
		status, message := h.describeError(err)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleListConversations 列出用户的会话
func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, chi.URLParam(r, "userID"), "userID")
	if !ok {
		return
	}

	convs, err := h.chatSvc.Conversations(r.Context(), userID)
	if err != nil {
		status, message := h.describeError(err)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, convs)
}

// handleListMessages 返回会话的消息记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := parseID(w, chi.URLParam(r, "conversationID"), "conversationID")
	if !ok {
		return
	}

	messages, err := h.chatSvc.Transcript(r.Context(), conversationID)
	if err != nil {
		status, message := h.describeError(err)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// describeError maps service errors to an HTTP status and a client-safe message.
func (h *Handler) describeError(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, chat.ErrInvalidRole):
		return http.StatusBadRequest, err.Error()
	case chat.IsResponderError(err):
		h.logger.Error("reply generation failed", "error", err)
		return http.StatusBadGateway, "reply generation failed"
	case chat.IsStorageError(err):
		h.logger.Error("storage failure", "error", err)
		return http.StatusInternalServerError, "storage failure"
	default:
		h.logger.Error("chat request failed", "error", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func parseID(w http.ResponseWriter, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
