package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/postgres"
	postgresEditor "inkwell/internal/repository/postgres/editor"
	serviceContent "inkwell/internal/service/content"
	serviceEditor "inkwell/internal/service/editor"
	serviceGen "inkwell/internal/service/generation"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresEditor.NewDocumentRepository(repoConfig)
	snapRepo := postgresEditor.NewSnapshotRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Setup generation providers and presets
	providerRegistry, err := serviceGen.SetupProviders(cfg.AnthropicAPIKey, logger)
	if err != nil {
		log.Fatalf("Failed to setup generation providers: %v", err)
	}
	presetRegistry, err := serviceGen.NewPresetRegistry()
	if err != nil {
		log.Fatalf("Failed to load generation presets: %v", err)
	}
	generator := serviceGen.NewService(providerRegistry, presetRegistry, cfg.DefaultModel, logger)

	// Create services
	docService := serviceContent.NewDocumentService(docRepo, snapRepo, txManager, logger)
	editorManager := serviceEditor.NewManager(
		docRepo,
		snapRepo,
		txManager,
		generator,
		clockwork.NewRealClock(),
		serviceEditor.Config{
			AutosaveInterval: cfg.AutosaveInterval,
			DebounceDelay:    cfg.DebounceDelay,
		},
		logger,
	)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	sessionHandler := handler.NewSessionHandler(editorManager, logger)
	suggestionHandler := handler.NewSuggestionHandler(editorManager, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/projects/{projectID}/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/projects/{projectID}/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/projects/{projectID}/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("DELETE /api/projects/{projectID}/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("GET /api/projects/{projectID}/documents/{id}/snapshots", docHandler.ListSnapshots)

	// Draft session routes
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session", sessionHandler.OpenSession)
	mux.HandleFunc("GET /api/projects/{projectID}/documents/{id}/session", sessionHandler.GetSession)
	mux.HandleFunc("DELETE /api/projects/{projectID}/documents/{id}/session", sessionHandler.CloseSession)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/edits", sessionHandler.Edit)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/save", sessionHandler.Save)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/restore", sessionHandler.Restore)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/primary", sessionHandler.ChoosePrimary)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/leave", sessionHandler.TryLeave)

	// Suggestion routes
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/suggestions", suggestionHandler.Propose)
	mux.HandleFunc("POST /api/projects/{projectID}/documents/{id}/session/suggestions/accept", suggestionHandler.Accept)
	mux.HandleFunc("DELETE /api/projects/{projectID}/documents/{id}/session/suggestions", suggestionHandler.Discard)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.AuthMiddleware(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
