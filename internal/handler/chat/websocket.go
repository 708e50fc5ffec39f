package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

type wsError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// handleWebSocket answers each inbound chat.Request frame with one chat.Response
// frame, or a wsError frame when the turn fails.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var req chat.Request
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				if writeErr := conn.WriteJSON(wsError{Error: "invalid request body", Status: http.StatusBadRequest}); writeErr != nil {
					return
				}
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket closed", "error", err)
			}
			return
		}

		if req.UserID <= 0 {
			if err := conn.WriteJSON(wsError{Error: "userId is required", Status: http.StatusBadRequest}); err != nil {
				return
			}
			continue
		}

		resp, err := h.chatSvc.HandleMessage(ctx, req)
		if err != nil {
			status, message := h.describeError(err)
			if err := conn.WriteJSON(wsError{Error: message, Status: status}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}
