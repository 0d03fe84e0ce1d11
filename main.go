package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to a .yaml or .toml config (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and summary")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = use config)")
	assetDir := flag.String("assets", ".", "Directory textures are resolved against")
	snapshotPath := flag.String("snapshot", "", "Start from a saved snapshot_<tick>.json")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	err := run(config.Cfg(), opts, runOptions{
		headless:     *headless,
		maxTicks:     *maxTicks,
		metricsAddr:  *metricsAddr,
		assetDir:     *assetDir,
		snapshotPath: *snapshotPath,
	})
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	headless     bool
	maxTicks     int64
	metricsAddr  string
	assetDir     string
	snapshotPath string
}

// run builds the game, starts the optional metrics exporter and drives the
// game until it stops. Deferred cleanup runs before the error reaches main.
func run(cfg *config.Config, opts game.Options, ro runOptions) error {
	g, err := game.New(cfg, opts)
	if err != nil {
		return fmt.Errorf("starting simulation: %w", err)
	}
	defer closeGame(g)

	if ro.snapshotPath != "" {
		snap, err := telemetry.LoadSnapshot(ro.snapshotPath)
		if err != nil {
			return err
		}
		if err := g.Restore(snap); err != nil {
			return fmt.Errorf("restoring %s: %w", ro.snapshotPath, err)
		}
	}

	addr := cfg.Metrics.Addr
	if ro.metricsAddr != "" {
		addr = ro.metricsAddr
	}
	if addr != "" {
		srv := telemetry.NewMetricsServer(addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", "addr", addr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		slog.Info("metrics server listening", "addr", addr)
	}

	if ro.headless {
		runHeadless(g, opts.StepsPerUpdate, ro.maxTicks)
		return nil
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Critter Arena")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := ui.NewViewer(g, ro.assetDir)
	defer v.Unload()
	v.Run(ro.maxTicks)
	return nil
}

// runHeadless steps the simulation without raylib until maxTicks is reached
// or the process is interrupted.
func runHeadless(g *game.Game, stepsPerUpdate int, maxTicks int64) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"run_id", g.RunID(),
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	for ctx.Err() == nil {
		g.UpdateHeadless()

		if maxTicks > 0 && g.Ticks() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Ticks())
			return
		}
	}
	slog.Info("interrupted", "tick", g.Ticks())
}

func closeGame(g *game.Game) {
	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
