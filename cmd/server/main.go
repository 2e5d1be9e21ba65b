/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the gift settlement service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and configure logging
  2. Parse command-line flags
  3. Initialize SQLite store
  4. Build the payment-gateway client and orchestrator
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: giftwell.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  STRIPE_API_KEY    Payment processor secret key (refunds fail 503 without it)
  STRIPE_BASE_URL   Override processor endpoint (tests/staging)
  LOG_LEVEL         debug, info, warn, error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - settlement/orchestrator.go: the engine
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giftwell/settlement-engine/api"
	"github.com/giftwell/settlement-engine/gateway/stripecard"
	"github.com/giftwell/settlement-engine/pkg/logging"
	"github.com/giftwell/settlement-engine/settlement"
	"github.com/giftwell/settlement-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "giftwell.db", "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", *dbPath)

	// Payment gateway
	gateway := stripecard.NewClient(os.Getenv("STRIPE_BASE_URL"), os.Getenv("STRIPE_API_KEY"))
	if !gateway.Configured() {
		slog.Warn("STRIPE_API_KEY not set; settlement requests will be rejected")
	}

	// Engine
	orchestrator := settlement.NewOrchestrator(store, gateway, store, store, slog.Default())

	// Router
	handler := api.NewHandler(store, orchestrator)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // settle requests wait on the gateway
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Server starting", "url", fmt.Sprintf("http://localhost:%d", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
