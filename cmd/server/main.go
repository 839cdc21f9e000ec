package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cirrus/internal/config"
	"cirrus/internal/content"
	"cirrus/internal/handler"
	"cirrus/internal/middleware"
	"cirrus/internal/repository"
	"cirrus/internal/service/namespace"
	"cirrus/internal/service/transfer"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	slog.SetDefault(logger)

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server failed", "error", err)
	}
	// closed explicitly, os.Exit skips defers
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM. Resources it opens are released by its
// own defers before it returns.
func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"database_driver", cfg.DatabaseDriver,
		"table_prefix", cfg.TablePrefix,
	)

	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		return fmt.Errorf("load limits: %w", err)
	}

	ownerID, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid OWNER_ID %q: %w", cfg.OwnerID, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Namespace store
	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open namespace store: %w", err)
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		logger.Info("schema ensured")
	}

	// Content store
	contentStore, err := content.NewFilesystemStore(cfg.UploadDir, cfg.ContentCompression, logger)
	if err != nil {
		return fmt.Errorf("create content store: %w", err)
	}

	// Services
	manager := namespace.NewManager(store.Folders, store.Files, store.TxManager, contentStore, limits, logger)
	transferService := transfer.NewService(manager, contentStore, limits, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(manager, logger)
	fileHandler := handler.NewFileHandler(manager, transferService, logger)
	healthHandler := handler.NewHealthHandler(store.Ping)

	logger.Info("services initialized")

	mux := handler.NewRouter(folderHandler, fileHandler, healthHandler)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Owner → Routes
	h = middleware.Owner(ownerID)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - outermost so pre-flight requests never reach the routes
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Minute, // uploads stream through the handler
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
