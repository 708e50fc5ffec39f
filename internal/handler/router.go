package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/chatdesk/backend/internal/handler/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/handler/order"
	middlewarePkg "github.com/zhouzirui/chatdesk/backend/internal/middleware"
	orderModel "github.com/zhouzirui/chatdesk/backend/internal/model/order"
	"github.com/zhouzirui/chatdesk/backend/pkg/utils"
)

// Deps carries what the router wires to routes. Everything but Chat is optional.
type Deps struct {
	Chat    chat.Service
	Orders  orderModel.Store
	Metrics http.Handler
	Limiter *middlewarePkg.KeyLimiter
	Logger  *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	chatHandler := chat.New(deps.Chat, deps.Logger)

	r.Route("/api", func(api chi.Router) {
		if deps.Orders != nil {
			order.New(deps.Orders).RegisterRoutes(api)
		}

		// chat routes share the per-client limiter
		api.Group(func(g chi.Router) {
			g.Use(middlewarePkg.RateLimit(deps.Limiter))
			chatHandler.RegisterRoutes(g)
		})
	})

	return r
}
