package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/rails/systems"
)

// stepClock advances by a fixed amount each time it is read.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestCollector(window int, clock *stepClock) *PerfCollector {
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc
}

// runTick times one tick with the given phases. Each clock read costs
// clock.step, so a phase lasts exactly one step.
func runTick(pc *PerfCollector, phases ...string) {
	pc.StartTick()
	for _, p := range phases {
		pc.StartPhase(p)
	}
	pc.EndTick()
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	clock := &stepClock{step: 100 * time.Microsecond}
	pc := newTestCollector(10, clock)

	for i := 0; i < 5; i++ {
		runTick(pc, systems.PhaseRoute, systems.PhaseCommit)
	}
	stats := pc.Stats()

	if stats.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", stats.Ticks)
	}
	// StartPhase, StartPhase, EndTick: three reads after StartTick.
	if stats.AvgTickDuration != 300*time.Microsecond {
		t.Errorf("avg tick = %v, want 300µs", stats.AvgTickDuration)
	}
	for _, phase := range []string{systems.PhaseRoute, systems.PhaseCommit} {
		if got := stats.PhaseAvg[phase]; got != 100*time.Microsecond {
			t.Errorf("%s avg = %v, want 100µs", phase, got)
		}
	}
	if stats.TicksPerSecond < 3333 || stats.TicksPerSecond > 3334 {
		t.Errorf("ticks/sec = %v, want ~3333", stats.TicksPerSecond)
	}
}

func TestPerfCollector_AverageFollowsRecentTicks(t *testing.T) {
	clock := &stepClock{step: time.Millisecond}
	pc := newTestCollector(4, clock)

	for i := 0; i < 5; i++ {
		runTick(pc, systems.PhaseRoute)
	}
	slow := pc.Stats()

	clock.step = 10 * time.Microsecond
	for i := 0; i < 40; i++ {
		runTick(pc, systems.PhaseRoute)
	}
	fast := pc.Stats()

	if fast.AvgTickDuration >= slow.AvgTickDuration/10 {
		t.Errorf("avg did not follow faster ticks: %v then %v", slow.AvgTickDuration, fast.AvgTickDuration)
	}
	if fast.PeakTickDuration != 2*time.Millisecond {
		t.Errorf("peak = %v, want 2ms", fast.PeakTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	clock := &stepClock{step: 50 * time.Microsecond}
	pc := newTestCollector(10, clock)

	for i := 0; i < 5; i++ {
		// commit spans two phase starts, so it takes twice as long as route.
		runTick(pc, systems.PhaseRoute, systems.PhaseCommit, systems.PhaseCommit)
	}
	stats := pc.Stats()

	route := stats.PhasePct[systems.PhaseRoute]
	commit := stats.PhasePct[systems.PhaseCommit]
	if route < 24.9 || route > 25.1 {
		t.Errorf("route = %v%%, want 25%%", route)
	}
	if commit < 49.9 || commit > 50.1 {
		t.Errorf("commit = %v%%, want 50%%", commit)
	}
}

func TestPerfCollector_UnusedPhaseDecays(t *testing.T) {
	clock := &stepClock{step: time.Millisecond}
	pc := newTestCollector(2, clock)

	runTick(pc, systems.PhaseRoute, systems.PhaseArbitrate)
	for i := 0; i < 20; i++ {
		runTick(pc, systems.PhaseRoute)
	}
	if got := pc.Stats().PhaseAvg[systems.PhaseArbitrate]; got > time.Microsecond {
		t.Errorf("arbitrate avg = %v, want decayed to ~0", got)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}
