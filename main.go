package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/game"
	"github.com/pthm-cable/rails/level"
	"github.com/pthm-cable/rails/sim"
	"github.com/pthm-cable/rails/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelPath := flag.String("level", "levels/junction.lvl", "Path to a .lvl or .yaml level file")
	headless := flag.Bool("headless", false, "Run without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", -1, "Stop after N ticks (0 = until complete, -1 = use config)")
	tickInterval := flag.Float64("tick-interval", 0, "Seconds between ticks in graphical mode (0 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *maxTicks >= 0 {
		cfg.Simulation.MaxTicks = *maxTicks
	}
	if *tickInterval > 0 {
		cfg.Simulation.TickInterval = *tickInterval
		cfg.Derived.TickDuration = time.Duration(*tickInterval * float64(time.Second))
	}

	lvl, err := level.Load(*levelPath)
	if err != nil {
		slog.Error("failed to load level", "path", *levelPath, "error", err)
		os.Exit(1)
	}
	if err := lvl.Validate(cfg.Limits); err != nil {
		slog.Error("level rejected", "path", *levelPath, "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "dir", *outputDir, "error", err)
		os.Exit(1)
	}
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	recorder := telemetry.NewRecorder(runID, cfg.Telemetry.LogEvery, out, perf)

	logger.Info("starting simulation",
		"level", lvl.Name,
		"rows", lvl.Grid.Rows(),
		"cols", lvl.Grid.Cols(),
		"trains", len(lvl.Trains),
		"switches", len(lvl.Switches),
		"headless", *headless,
		"max_ticks", cfg.Simulation.MaxTicks,
	)

	var code int
	if *headless {
		code = runHeadless(logger, lvl, cfg, recorder, perf)
	} else {
		snapDir := "snapshots"
		if out != nil {
			snapDir = filepath.Join(out.Dir(), "snapshots")
		}
		code = runGraphical(logger, lvl, cfg, recorder, perf, runID, snapDir)
	}
	os.Exit(closeOutput(logger, out, code))
}

// closeOutput closes the run's output files. A close failure turns a clean
// exit code into 1.
func closeOutput(logger *slog.Logger, out *telemetry.OutputManager, code int) int {
	if err := out.Close(); err != nil {
		logger.Error("failed to close output files", "error", err)
		if code == 0 {
			return 1
		}
	}
	return code
}

// runHeadless steps the simulation as fast as possible until it completes,
// hits the tick limit, deadlocks or is interrupted.
func runHeadless(logger *slog.Logger, lvl *level.Level, cfg *config.Config, rec *telemetry.Recorder, perf *telemetry.PerfCollector) int {
	s, err := sim.New(lvl, sim.Options{Logger: logger, Timer: perf, OnTick: rec.OnTick})
	if err != nil {
		logger.Error("failed to build simulation", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := 0
	runErr := s.Run(ctx, cfg.Simulation.MaxTicks)
	switch {
	case runErr == nil && s.Complete():
		logger.Info("simulation complete", "tick", s.Tick())
	case runErr == nil:
		logger.Info("max ticks reached", "tick", s.Tick())
	case errors.Is(runErr, sim.ErrDeadlock):
		logger.Warn("simulation deadlocked", "tick", s.Tick(), "error", runErr)
		code = 2
	default:
		logger.Warn("simulation interrupted", "tick", s.Tick(), "error", runErr)
		code = 130
	}

	if _, err := rec.Finish(s); err != nil {
		code = 1
	}
	return code
}

// runGraphical opens the raylib window and drives the interactive frontend.
func runGraphical(logger *slog.Logger, lvl *level.Level, cfg *config.Config, rec *telemetry.Recorder, perf *telemetry.PerfCollector, runID, snapshotDir string) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Rails - "+lvl.Name)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(0) // Escape clears the selection

	g, err := game.New(game.Options{
		Level:       lvl,
		Config:      cfg,
		Recorder:    rec,
		Perf:        perf,
		Logger:      logger,
		MaxTicks:    cfg.Simulation.MaxTicks,
		RunID:       runID,
		SnapshotDir: snapshotDir,
	})
	if err != nil {
		logger.Error("failed to start game", "error", err)
		return 1
	}

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}

	if _, err := rec.Finish(g.Simulation()); err != nil {
		return 1
	}
	return 0
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
