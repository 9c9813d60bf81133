// cmd/macro-factor/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Rahulcodess/macro-factor/internal/models"
	"github.com/Rahulcodess/macro-factor/internal/server"
)

var (
	transport = flag.String("transport", "http", "Transport mode: http")
	port      = flag.Int("port", 8011, "Port for HTTP transport")
	host      = flag.String("host", "0.0.0.0", "Host address")
	address   = flag.String("address", "", "Address (alias for host)")
	dbPath    = flag.String("db-path", "/data/macro-factor.db", "Database path")
	version   = flag.Bool("version", false, "Show version")

	defaultAge    = flag.Int("default-age", 30, "Profile age used when no profile exists")
	defaultWeight = flag.Float64("default-weight-kg", 70, "Profile weight (kg) used when no profile exists")
	defaultGoal   = flag.String("default-goal", "maintain", "Profile goal used when no profile exists")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("macro-factor version 1.0.0")
		os.Exit(0)
	}

	// Load API credentials from a .env file when present
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Use address if provided, otherwise use host
	hostAddr := *host
	if *address != "" {
		hostAddr = *address
	}

	config := &server.Config{
		Transport: *transport,
		Host:      hostAddr,
		Port:      *port,
		DBPath:    *dbPath,
		ProfileDefaults: models.ProfileDefaults{
			AgeYears: *defaultAge,
			WeightKg: *defaultWeight,
			Goal:     *defaultGoal,
		},
	}

	// Create server
	srv, err := server.NewEstimateServer(config)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting macro-factor server on %s:%d", hostAddr, *port)
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
