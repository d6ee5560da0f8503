// Chat Arena - anonymous two-party conversation server with AI stand-ins.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/s376930/Chat-Arena/internal/ai"
	"github.com/s376930/Chat-Arena/internal/catalog"
	"github.com/s376930/Chat-Arena/internal/chat"
	"github.com/s376930/Chat-Arena/internal/config"
	"github.com/s376930/Chat-Arena/internal/llm"
	"github.com/s376930/Chat-Arena/internal/middleware"
	"github.com/s376930/Chat-Arena/internal/pairing"
	"github.com/s376930/Chat-Arena/internal/store"
	"github.com/s376930/Chat-Arena/internal/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	transcripts, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcripts.Close(); closeErr != nil {
			slog.Error("Failed to close transcript store", "error", closeErr)
		}
	}()

	if err := transcripts.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	cat, err := catalog.Load(cfg.TopicsTasksFile, cfg.TopicPolicy)
	if err != nil {
		slog.Error("Failed to load topics and tasks", "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "topics", len(cat.Topics()), "tasks", len(cat.Tasks()))

	settings, err := llm.LoadSettings(cfg.LLMConfigFile)
	if err != nil {
		slog.Error("Failed to load llm config", "error", err)
		os.Exit(1)
	}

	personas, err := ai.LoadPersonas(cfg.PersonasFile)
	if err != nil {
		slog.Error("Failed to load personas", "error", err)
		os.Exit(1)
	}

	gateway := llm.NewGateway(settings)
	aiMgr := ai.NewManager(gateway, settings, personas)
	if settings.Enabled && gateway.HasProviders() {
		slog.Info("AI participants enabled", "providers", len(gateway.Providers()))
	} else {
		slog.Info("AI participants disabled")
	}

	engine := pairing.NewEngine(settings.ReassignDelay(), settings.Pairing.DelayEnabled)
	registry := ws.NewRegistry()

	chatMgr := chat.NewManager(registry, transcripts, cat, engine, aiMgr, settings, chat.Options{
		AllowDuplicateTask: cfg.AllowDuplicateTask,
		InactivityTimeout:  cfg.InactivityTimeout,
		InactivityInterval: cfg.InactivityCheckInterval,
	})
	aiMgr.SetOnMessage(chatMgr.HandleAIMessage)

	wsHandler := ws.NewHandler(registry, chatMgr, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	// WebSocket endpoint.
	r.Get("/ws", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// WebSocket connections stay open for the whole session.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatMgr.StartInactivityWatcher(ctx)
	slog.Info("Inactivity watcher started", "timeout", cfg.InactivityTimeout)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if err := chatMgr.Shutdown(shutdownCtx); err != nil {
		slog.Error("Session teardown incomplete", "error", err)
	}

	slog.Info("Server stopped")
}
