// Command steward keeps a running hexgrid service backed up.
// It observes the grid through the public API on a timer and requests a
// snapshot through the admin API whenever the grid changed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/hexgrid/internal/steward"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	// Configuration from environment.
	apiURL := envOrDefault("STEWARD_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("HEXGRID_API_ADMIN_KEY")
	intervalMin := envIntOrDefault("STEWARD_INTERVAL", 15)
	forceEvery := envIntOrDefault("STEWARD_FORCE_EVERY", 0)
	memoryPath := envOrDefault("STEWARD_MEMORY", "steward_memory.json")

	if adminKey == "" {
		slog.Error("HEXGRID_API_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalMin) * time.Minute

	slog.Info("hexgrid steward starting",
		"api_url", apiURL,
		"interval", interval,
		"force_every", forceEvery,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &steward.Steward{
		Observer:   steward.NewObserver(apiURL),
		Actor:      steward.NewActor(apiURL, adminKey),
		Memory:     steward.LoadMemory(memoryPath),
		ForceEvery: forceEvery,
	}

	// Process start does not mean the API is serving yet.
	slog.Info("waiting for hexgrid API...")
	if err := s.Observer.WaitReady(ctx, 5*time.Minute); err != nil {
		slog.Error("hexgrid API did not become ready", "error", err)
		os.Exit(1)
	}

	// Run first cycle immediately.
	runCycle(ctx, s)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, s)
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			fmt.Println("Steward stopped.")
			return
		}
	}
}

func runCycle(ctx context.Context, s *steward.Steward) {
	if _, err := s.RunCycle(ctx); err != nil {
		slog.Error("steward cycle failed", "error", err)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
