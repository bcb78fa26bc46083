package telemetry

import (
	"github.com/pthm-cable/rails/sim"
	"github.com/pthm-cable/rails/systems"
)

// Totals are run-wide event counts.
type Totals struct {
	Spawns    int
	Waits     int
	Conflicts int
	Holds     int
	Moves     int
	Flips     int
	Arrivals  int
	Derails   int
}

// Collector accumulates tick reports within windows and produces WindowStats.
type Collector struct {
	windowTicks     int
	windowStartTick int

	window Totals
	run    Totals
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// Record adds one tick report to the current window and the run totals.
func (c *Collector) Record(rep sim.Report) {
	for _, t := range []*Totals{&c.window, &c.run} {
		t.Spawns += len(rep.Spawned)
		t.Waits += len(rep.Waiting)
		t.Conflicts += len(rep.Conflicts)
		t.Holds += len(rep.Held)
		t.Moves += rep.Moved
		t.Flips += len(rep.Flipped)
		t.Arrivals += len(rep.Arrived)
		t.Derails += len(rep.Derailed)
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and starts the next window.
func (c *Collector) Flush(currentTick int, counts systems.Counts) WindowStats {
	w := c.window
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Pending:         counts.Pending,
		Active:          counts.Active,
		Finished:        counts.Finished,
		Spawns:          w.Spawns,
		Waits:           w.Waits,
		Conflicts:       w.Conflicts,
		Holds:           w.Holds,
		Moves:           w.Moves,
		Flips:           w.Flips,
		Arrivals:        w.Arrivals,
		Derails:         w.Derails,
	}
	// Moves per active train per tick, against the end-of-window fleet.
	if ticks := currentTick - c.windowStartTick; ticks > 0 && counts.Active > 0 {
		stats.Throughput = float64(w.Moves) / float64(ticks*counts.Active)
	}

	c.windowStartTick = currentTick
	c.window = Totals{}
	return stats
}

// Totals returns the run-wide counts so far.
func (c *Collector) Totals() Totals {
	return c.run
}

// Reset clears everything, for a simulation reset.
func (c *Collector) Reset() {
	c.windowStartTick = 0
	c.window = Totals{}
	c.run = Totals{}
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
