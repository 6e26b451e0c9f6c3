package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"drafthub/internal/adapter"
	"drafthub/internal/adapter/adapters"
	"drafthub/internal/bus"
	"drafthub/internal/capabilities"
	"drafthub/internal/config"
	"drafthub/internal/domain/repositories"
	"drafthub/internal/handler"
	"drafthub/internal/handler/sse"
	"drafthub/internal/middleware"
	"drafthub/internal/repository/memory"
	"drafthub/internal/repository/postgres"
	"drafthub/internal/service/inbox"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// Repository: Postgres when configured, in-memory otherwise
	ctx := context.Background()
	var draftRepo repositories.DraftRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		pgRepo := postgres.NewDraftRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure drafts schema: %v", err)
		}
		draftRepo = pgRepo
		logger.Info("database connected")
	} else {
		draftRepo = memory.NewDraftRepository()
		logger.Info("using in-memory draft store")
	}

	// Event bus and adapter registry
	events := bus.New(logger)
	registry := adapter.NewRegistry(logger)

	if cfg.Environment == "dev" {
		if err := adapters.RegisterDevAdapters(registry, logger); err != nil {
			log.Fatalf("Failed to register dev adapters: %v", err)
		}
		logger.Warn("DEV MODE: log-and-ack send adapters registered for email and chat")
	}

	// Capability manifest for the SSE handshake
	manifest, err := capabilities.Load()
	if err != nil {
		log.Fatalf("Failed to load capability manifest: %v", err)
	}

	// Inbox service
	inboxService := inbox.NewService(draftRepo, registry, events, cfg.RefreshAfterSeconds, logger)

	// Handlers
	draftHandler := handler.NewDraftHandler(inboxService, logger)
	dashboardHandler := handler.NewDashboardHandler(inboxService, logger)
	eventsHandler := handler.NewEventsHandler(events, manifest, sse.DefaultConfig(), logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Assistants command surface
	mux.HandleFunc("POST /assistants/draft", draftHandler.CreateDraft)
	mux.HandleFunc("POST /assistants/approve", draftHandler.Approve)
	mux.HandleFunc("POST /assistants/edit", draftHandler.Edit)
	mux.HandleFunc("POST /assistants/escalate", draftHandler.Escalate)
	mux.HandleFunc("POST /assistants/notes", draftHandler.AddNote)
	mux.HandleFunc("GET /assistants/drafts", draftHandler.ListDrafts)
	mux.HandleFunc("GET /assistants/drafts/{id}", draftHandler.GetDraft)

	// Dashboard read surface
	mux.HandleFunc("GET /dashboard/inbox", dashboardHandler.Inbox)
	mux.HandleFunc("GET /dashboard/inbox/stats", dashboardHandler.Stats) // Must come before {id} route
	mux.HandleFunc("GET /dashboard/inbox/{id}", dashboardHandler.Detail)

	// Event stream
	mux.HandleFunc("GET /assistants/events", eventsHandler.Stream)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
