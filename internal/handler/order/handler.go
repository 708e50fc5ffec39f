package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
	"github.com/zhouzirui/chatdesk/backend/pkg/utils"
)

// Handler 订单查询的HTTP处理器
type Handler struct {
	orders order.Store
}

// New 创建订单处理器
func New(orders order.Store) *Handler {
	return &Handler{
		orders: orders,
	}
}

// RegisterRoutes 注册订单相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{orderID}", h.handleGetOrder)
}

// handleListOrders 列出所有订单
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	item, err := h.orders.FindByID(r.Context(), chi.URLParam(r, "orderID"))
	if errors.Is(err, order.ErrOrderNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
