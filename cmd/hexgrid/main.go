// Command hexgrid builds or restores a hex grid, covers it with terrain and
// serves it over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talgya/hexgrid/internal/api"
	"github.com/talgya/hexgrid/internal/config"
	"github.com/talgya/hexgrid/internal/hexgrid"
	"github.com/talgya/hexgrid/internal/persistence"
	"github.com/talgya/hexgrid/internal/terrain"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (default ./hexgrid.yaml if present)")
	regenerate := flag.Bool("regenerate", false, "ignore saved state and build a fresh grid")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	closeLog := setupLogging(cfg.Log)
	defer closeLog()

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate Grid ─────────────────────────────────────────
	gridCfg, err := cfg.GridConfig()
	if err != nil {
		slog.Error("invalid grid config", "error", err)
		os.Exit(1)
	}
	layoutName := gridCfg.Layout.Name()

	var grid *hexgrid.Grid
	if db.HasGridState() && !*regenerate {
		slog.Info("found saved grid, loading...")
		grid, layoutName, err = restoreGrid(db, gridCfg)
		if err != nil {
			slog.Error("failed to restore grid", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no saved grid found, generating...",
			"layout", layoutName,
			"width", gridCfg.GridWidth,
			"height", gridCfg.GridHeight,
			"orientation", gridCfg.Orientation,
		)
		grid, err = generateGrid(db, gridCfg, cfg.GenConfig())
		if err != nil {
			slog.Error("failed to generate grid", "error", err)
			os.Exit(1)
		}
	}

	counts := terrain.Counts(grid)
	for t := terrain.Plains; t <= terrain.Ocean; t++ {
		if counts[t] > 0 {
			slog.Info("terrain", "type", t.String(), "count", humanize.Comma(int64(counts[t])))
		}
	}
	slog.Info("grid ready", "hexes", humanize.Comma(int64(grid.Len())), "layout", layoutName)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("HEXGRID_API_ADMIN_KEY not set, admin endpoints will be disabled")
	}
	apiServer := &api.Server{
		Grid:      grid,
		DB:        db,
		Layout:    layoutName,
		Port:      cfg.API.Port,
		AdminKey:  cfg.API.AdminKey,
		RateLimit: cfg.API.RateLimit,
	}
	httpServer, err := apiServer.Start()
	if err != nil {
		slog.Error("failed to start API", "error", err)
		os.Exit(1)
	}
	defer apiServer.Close()

	fmt.Printf("\nHex grid ready: %s cells.\n", humanize.Comma(int64(grid.Len())))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)

	// ── Wait ──────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	snap, err := db.SaveGrid(grid, layoutName)
	if err != nil {
		slog.Error("final save failed", "error", err)
		return
	}
	fmt.Printf("Stopped. Grid saved as snapshot %s (%s cells).\n", snap.ID, humanize.Comma(int64(snap.HexCount)))
}

// setupLogging installs the default slog logger. When a log file is
// configured, output goes to stdout and to a rotated file.
func setupLogging(cfg config.LogSettings) func() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	closer := func() {}
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out = io.MultiWriter(os.Stdout, rotated)
		closer = func() { rotated.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer
}

// restoreGrid rebuilds the saved grid. Geometry comes from the latest
// snapshot so that a changed config file cannot move saved cells.
func restoreGrid(db *persistence.DB, gridCfg hexgrid.GridConfig) (*hexgrid.Grid, string, error) {
	snap, err := db.LatestSnapshot()
	if err != nil {
		return nil, "", err
	}
	layout, err := db.LoadLayout(terrain.DecodeTile)
	if err != nil {
		return nil, "", err
	}
	layout.Source = snap.Layout

	o, err := hexgrid.ParseOrientation(snap.Orientation)
	if err != nil {
		return nil, "", err
	}
	gridCfg.Orientation = o
	gridCfg.Radius = snap.Radius
	gridCfg.Layout = layout

	grid, err := hexgrid.NewGrid(gridCfg)
	if err != nil {
		return nil, "", err
	}

	seed := "unknown"
	if s, err := db.Seed(); err == nil {
		seed = strconv.FormatInt(s, 10)
	}
	slog.Info("grid restored",
		"snapshot", snap.ID,
		"saved_at", snap.CreatedAt.Format(time.RFC3339),
		"hexes", grid.Len(),
		"seed", seed,
	)
	return grid, snap.Layout, nil
}

func generateGrid(db *persistence.DB, gridCfg hexgrid.GridConfig, genCfg terrain.GenConfig) (*hexgrid.Grid, error) {
	grid, err := hexgrid.NewGrid(gridCfg)
	if err != nil {
		return nil, err
	}
	seed := terrain.Generate(grid, genCfg)
	slog.Info("terrain generated", "seed", seed)

	if err := db.SaveSeed(seed); err != nil {
		return nil, err
	}
	if _, err := db.SaveGrid(grid, gridCfg.Layout.Name()); err != nil {
		return nil, fmt.Errorf("initial save: %w", err)
	}
	return grid, nil
}
