// Package game is the interactive raylib frontend around a Simulation.
package game

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/rails/camera"
	"github.com/pthm-cable/rails/config"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/level"
	"github.com/pthm-cable/rails/sim"
	"github.com/pthm-cable/rails/systems"
	"github.com/pthm-cable/rails/telemetry"
	"github.com/pthm-cable/rails/ui"
)

// Options configures a Game.
type Options struct {
	Level       *level.Level
	Config      *config.Config
	Recorder    *telemetry.Recorder      // optional
	Perf        *telemetry.PerfCollector // optional
	Logger      *slog.Logger
	MaxTicks    int    // stop advancing after N ticks (0 = until complete)
	RunID       string // tags saved snapshots
	SnapshotDir string // where the B key saves snapshots
}

// Game holds the simulation and everything needed to show and drive it.
type Game struct {
	sim      *sim.Simulation
	pacer    *sim.Pacer
	camera   *camera.Camera
	recorder *telemetry.Recorder
	perf     *telemetry.PerfCollector
	log      *slog.Logger
	maxTicks int
	runID    string
	snapDir  string

	// UI
	overlays    *ui.OverlayRegistry
	hud         *ui.HUD
	controls    *ui.ControlsPanel
	simControls *ui.SimControls
	switchPanel *ui.SwitchPanel
	perfPanel   *ui.PerfPanel
	inspector   *ui.Inspector
	phases      *systems.PhaseRegistry

	// State
	paused   bool
	showPerf bool
	selected *grid.Point
	last     sim.Report
	snap     sim.Snapshot

	// Window dimensions
	screenWidth, screenHeight float32
	tileSize                  float32
}

// New builds the simulation for opts.Level and the UI around it.
// The raylib window must already be open.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	simOpts := sim.Options{Logger: log}
	if opts.Perf != nil {
		simOpts.Timer = opts.Perf
	}
	if opts.Recorder != nil {
		simOpts.OnTick = opts.Recorder.OnTick
	}
	s, err := sim.New(opts.Level, simOpts)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	tile := cfg.Derived.TileSize32

	g := &Game{
		sim:          s,
		pacer:        sim.NewPacer(cfg.Derived.TickDuration, cfg.Simulation.MaxSpeed),
		camera:       camera.ForGrid(w, h, s.Grid().Rows(), s.Grid().Cols(), tile),
		recorder:     opts.Recorder,
		perf:         opts.Perf,
		log:          log,
		maxTicks:     opts.MaxTicks,
		runID:        opts.RunID,
		snapDir:      opts.SnapshotDir,
		overlays:     ui.NewOverlayRegistry(),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, 100, 200),
		simControls:  ui.NewSimControls(10, int32(h)-40-ui.SimControlsHeight),
		switchPanel:  ui.NewSwitchPanel(int32(w)-330, 10, 320),
		perfPanel:    ui.NewPerfPanel(int32(w)-260, 10),
		inspector:    ui.NewInspector(10, 100, 300),
		phases:       systems.NewPhaseRegistry(),
		paused:       true,
		screenWidth:  w,
		screenHeight: h,
		tileSize:     tile,
	}
	g.overlays.SetEnabled(ui.OverlayGrid, cfg.Render.ShowGrid)
	g.overlays.SetEnabled(ui.OverlayPaths, cfg.Render.ShowPaths)
	g.snap = s.Snapshot()
	return g, nil
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int {
	return g.sim.Tick()
}

// Halted reports whether the run can make no further progress on its own.
func (g *Game) Halted() bool {
	return g.sim.Complete() || g.sim.Stalled() || g.limitReached()
}

func (g *Game) limitReached() bool {
	return g.maxTicks > 0 && g.sim.Tick() >= g.maxTicks
}

// Update processes input and advances the simulation by the ticks due
// this frame.
func (g *Game) Update() {
	g.handleInput()

	if g.paused || g.Halted() {
		g.pacer.Reset()
		return
	}

	elapsed := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	for n := g.pacer.Advance(elapsed); n > 0 && !g.Halted(); n-- {
		g.step()
	}
}

// step runs one tick and refreshes the cached snapshot.
func (g *Game) step() {
	g.last = g.sim.Step()
	g.snap = g.sim.Snapshot()

	switch {
	case g.sim.Stalled():
		g.log.Warn("simulation deadlocked", "tick", g.sim.Tick())
	case g.sim.Complete():
		g.log.Info("simulation complete", "tick", g.sim.Tick())
	}
}

// Reset rewinds the simulation to the level's initial state.
func (g *Game) Reset() {
	g.sim.Reset()
	if g.recorder != nil {
		g.recorder.Reset()
	}
	g.pacer.Reset()
	g.last = sim.Report{}
	g.snap = g.sim.Snapshot()
	g.paused = true
}

// SaveSnapshot writes the current state to the snapshot directory.
func (g *Game) SaveSnapshot() {
	dir := g.snapDir
	if dir == "" {
		dir = "snapshots"
	}
	path, err := telemetry.SaveSnapshot(telemetry.NewRunSnapshot(g.runID, g.sim, nil), dir)
	if err != nil {
		g.log.Error("failed to save snapshot", "error", err)
		return
	}
	g.log.Info("snapshot saved", "tick", g.sim.Tick(), "path", path)
}

// refresh re-reads the snapshot after an edit made between ticks.
func (g *Game) refresh() {
	g.snap = g.sim.Snapshot()
}
