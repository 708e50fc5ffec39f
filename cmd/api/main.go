package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
	"github.com/zhouzirui/chatdesk/backend/internal/handler"
	"github.com/zhouzirui/chatdesk/backend/internal/logging"
	"github.com/zhouzirui/chatdesk/backend/internal/metrics"
	"github.com/zhouzirui/chatdesk/backend/internal/middleware"
	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
	"github.com/zhouzirui/chatdesk/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/chatdesk/backend/internal/service/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/store/memory"
	"github.com/zhouzirui/chatdesk/backend/internal/store/sqlstore"
)

// chatStore is satisfied by both the memory and the gorm store.
type chatStore interface {
	chatservice.ConversationStore
	chatservice.MessageLog
}

func main() {
	if err := run(); err != nil {
		slog.Error("chatdesk backend exited", "error", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup so that failures still close the store.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, continuing with system environment variables only", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	store, orders, closeStore, err := openStores(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	if cfg.Orders.CSVPath != "" {
		n, err := loadOrders(ctx, orders, cfg.Orders.CSVPath)
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		logger.Info("orders seeded", "path", cfg.Orders.CSVPath, "count", n)
	}

	responder, provider := newResponder(ctx, logger, cfg.AI)

	chatMetrics := metrics.New(provider)
	chatSvc := chatservice.NewService(store, store, responder,
		chatservice.WithLogger(logger),
		chatservice.WithMetrics(chatMetrics),
	)

	router := handler.NewRouter(handler.Deps{
		Chat:    chatSvc,
		Orders:  orders,
		Metrics: chatMetrics.Handler(),
		Limiter: middleware.NewKeyLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute),
		Logger:  logger,
	})

	return startServer(ctx, logger, cfg.Server, router)
}

// newResponder returns the configured responder and the provider actually serving replies.
func newResponder(ctx context.Context, logger *slog.Logger, cfg config.AIConfig) (ai.Responder, string) {
	responder, err := ai.NewResponder(ctx, cfg)
	if err != nil {
		logger.Warn("responder unavailable, falling back to rule responder", "provider", cfg.Provider, "error", err)
		return ai.NewRuleResponder(), config.ProviderRule
	}

	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderRule
	}
	logger.Info("responder initialized", "provider", provider)
	return responder, provider
}

func openStores(ctx context.Context, cfg config.StoreConfig) (chatStore, order.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		return memory.New(chat.SeedUsers()), order.NewMemoryStore(nil), func() {}, nil
	}

	db, err := sqlstore.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
	if err := db.Migrate(ctx); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	if err := db.SeedUsers(ctx, chat.SeedUsers()); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return db, db.Orders(), closeFn, nil
}

func loadOrders(ctx context.Context, orders order.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	items, err := order.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := orders.Upsert(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func startServer(ctx context.Context, logger *slog.Logger, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("chatdesk backend listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
