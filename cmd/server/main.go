// Package main runs the auction draft server: HTTP/WebSocket surface,
// PostgreSQL (or in-memory) storage, and the in-process event broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wins-pool/internal/auction"
	"wins-pool/internal/event"
	"wins-pool/internal/server"
	"wins-pool/internal/storage"
	"wins-pool/internal/storage/memory"
	"wins-pool/internal/storage/migrations"
	pgstore "wins-pool/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	shutdownTimeout := flag.Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, txManager, cleanup, err := createStores(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	broker := event.NewLocalBroker(log.New(os.Stdout, "[broker] ", log.LstdFlags|log.Lshortfile))
	events := auction.NewEventService(log.New(os.Stdout, "[events] ", log.LstdFlags|log.Lshortfile), stores.EventLog, broker)
	draft := auction.NewDraftService(log.New(os.Stdout, "[auction] ", log.LstdFlags|log.Lshortfile), stores, txManager, events)

	srv := &http.Server{
		Addr:    *listenAddr,
		Handler: server.New(logger, draft, events, broker).Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", *listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		logger.Fatalf("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown failed: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the store set, running migrations for postgres.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (storage.Stores, storage.TxManager, func(), error) {
	if useMemory {
		stores, txManager := memory.New()
		return stores, txManager, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return storage.Stores{}, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return storage.Stores{}, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewStores(pool), pgstore.NewTxManager(pool), pool.Close, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
