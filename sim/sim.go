// Package sim runs the tick pipeline over one loaded level.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/level"
	"github.com/pthm-cable/rails/systems"
)

// ErrDeadlock is returned by Run when a tick changed nothing and no train is
// still scheduled, so every later tick would be identical.
var ErrDeadlock = errors.New("simulation deadlocked")

// PhaseTimer receives phase boundaries. *telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

type nopTimer struct{}

func (nopTimer) StartTick()        {}
func (nopTimer) StartPhase(string) {}
func (nopTimer) EndTick()          {}

// Options configures a Simulation. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	Timer  PhaseTimer
	OnTick func(s *Simulation, rep Report) // called after every tick
}

// Simulation bundles the grid, switches, trains and tick counter of a run.
// It is single-threaded: callers must not mutate it while Step is running.
type Simulation struct {
	name     string
	grid     *grid.Grid
	initial  *grid.Grid
	switches *systems.SwitchBank
	world    *ecs.World
	trains   *systems.TrainRegistry
	tick     int
	stalled  bool

	log    *slog.Logger
	timer  PhaseTimer
	onTick func(*Simulation, Report)

	// scratch buffers reused every tick
	claims    []systems.Claim
	occupants []systems.Occupant
}

// New builds a simulation from a validated level.
func New(lvl *level.Level, opts Options) (*Simulation, error) {
	if lvl == nil || lvl.Grid == nil {
		return nil, fmt.Errorf("new simulation: %w", level.ErrInvalidLevel)
	}
	bank, err := systems.NewSwitchBank(lvl.Switches)
	if err != nil {
		return nil, fmt.Errorf("new simulation: %v: %w", err, level.ErrInvalidLevel)
	}

	world := ecs.NewWorld()
	trains := systems.NewTrainRegistry(world)
	for _, spec := range lvl.Trains {
		trains.Add(spec)
	}

	s := &Simulation{
		name:     lvl.Name,
		grid:     lvl.Grid.Clone(),
		initial:  lvl.Grid.Clone(),
		switches: bank,
		world:    world,
		trains:   trains,
		log:      opts.Logger,
		timer:    opts.Timer,
		onTick:   opts.OnTick,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.timer == nil {
		s.timer = nopTimer{}
	}
	return s, nil
}

// Name returns the level name.
func (s *Simulation) Name() string { return s.name }

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// Grid returns the live grid.
func (s *Simulation) Grid() *grid.Grid { return s.grid }

// Switches returns the live switch bank.
func (s *Simulation) Switches() *systems.SwitchBank { return s.switches }

// Trains returns the live train registry.
func (s *Simulation) Trains() *systems.TrainRegistry { return s.trains }

// Complete reports whether every train has finished. A Pending train that is
// not yet due keeps the run open, unlike a predicate that only counts due trains.
func (s *Simulation) Complete() bool {
	c := s.trains.Counts()
	return c.Active == 0 && c.Pending == 0
}

// Stalled reports whether the last tick was a fixed point with work left.
func (s *Simulation) Stalled() bool { return s.stalled }

// Step advances the clock by one and runs every phase in order.
func (s *Simulation) Step() Report {
	s.tick++
	rep := Report{Tick: s.tick}

	s.timer.StartTick()

	s.timer.StartPhase(systems.PhaseSpawn)
	s.spawn(&rep)

	s.timer.StartPhase(systems.PhaseRoute)
	s.route()

	s.timer.StartPhase(systems.PhaseCounters)
	rep.Decrement = s.updateCounters()

	s.timer.StartPhase(systems.PhaseQueueFlips)
	rep.Queued = s.switches.QueueFlips()

	s.timer.StartPhase(systems.PhaseArbitrate)
	s.arbitrate(&rep)

	s.timer.StartPhase(systems.PhaseCommit)
	s.commit(&rep)

	s.timer.StartPhase(systems.PhaseApplyFlips)
	rep.Flipped = s.switches.ApplyDeferredFlips()

	s.timer.StartPhase(systems.PhaseArrivals)
	s.checkArrivals(&rep)

	s.timer.EndTick()

	s.stalled = !rep.Changed() && !s.Complete() && !s.scheduledAfter(s.tick)
	s.logTick(rep)
	if s.onTick != nil {
		s.onTick(s, rep)
	}
	return rep
}

// Run steps until every train has finished, maxTicks ticks have run in total
// (0 = no limit), the simulation deadlocks or ctx is cancelled.
func (s *Simulation) Run(ctx context.Context, maxTicks int) error {
	for !s.Complete() {
		if maxTicks > 0 && s.tick >= maxTicks {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
		if s.stalled {
			return fmt.Errorf("tick %d: %w", s.tick, ErrDeadlock)
		}
	}
	return nil
}

// ToggleSafetyTile flips a straight tile to or from its safety variant.
// Only valid between ticks.
func (s *Simulation) ToggleSafetyTile(x, y int) bool {
	ok := s.grid.ToggleSafety(x, y)
	if ok {
		s.log.Debug("safety toggled", "tick", s.tick, "x", x, "y", y)
	}
	return ok
}

// ToggleSwitch flips a switch immediately. Only valid between ticks.
func (s *Simulation) ToggleSwitch(letter byte) bool {
	ok := s.switches.Toggle(letter)
	if ok {
		s.log.Debug("switch toggled", "tick", s.tick, "switch", string(letter))
	}
	return ok
}

// Reset restores the level's initial state and rewinds the clock.
func (s *Simulation) Reset() {
	s.grid = s.initial.Clone()
	s.switches.Reset()
	s.trains.Reset()
	s.tick = 0
	s.stalled = false
	s.log.Info("simulation reset", "level", s.name)
}

// spawn activates due Pending trains whose spawn tile is free. Blocked trains
// stay Pending and are retried next tick.
func (s *Simulation) spawn(rep *Report) {
	s.trains.Each(func(t systems.Train) {
		if t.Life.State != components.StatePending || t.Sched.SpawnTick > s.tick {
			return
		}
		if s.trains.Occupied(t.Sched.Spawn) {
			t.Life.WaitTicks++
			rep.Waiting = append(rep.Waiting, t.ID)
			return
		}
		t.Life.Activate(s.tick)
		*t.Motion = components.Motion{
			Pos:       t.Sched.Spawn,
			Prev:      t.Sched.Spawn,
			Heading:   t.Sched.Heading,
			Next:      t.Sched.Heading,
			Candidate: t.Sched.Spawn,
		}
		rep.Spawned = append(rep.Spawned, t.ID)
	})
}

func (s *Simulation) route() {
	for _, t := range s.trains.Active() {
		systems.Route(s.grid, s.switches, t.Motion)
	}
}

// updateCounters charges each switch occupant against the direction it was
// routed in this tick, so a diverging switch counts the deflected direction.
func (s *Simulation) updateCounters() int {
	s.occupants = s.occupants[:0]
	for _, t := range s.trains.Active() {
		s.occupants = append(s.occupants, systems.Occupant{Pos: t.Motion.Pos, Direction: t.Motion.Next})
	}
	return s.switches.UpdateCounters(s.occupants)
}

// arbitrate resolves contested cells, then holds any mover still headed for
// an occupied cell. Results are written back to each train's candidate.
func (s *Simulation) arbitrate(rep *Report) {
	active := s.trains.Active()
	s.claims = s.claims[:0]
	for _, t := range active {
		s.claims = append(s.claims, systems.Claim{
			ID:          t.ID,
			Current:     t.Motion.Pos,
			Candidate:   t.Motion.Candidate,
			Destination: t.Route.Destination,
		})
	}
	rep.Conflicts = systems.Arbitrate(s.claims)
	rep.Held = systems.Settle(s.claims)
	for i, t := range active {
		t.Motion.Candidate = s.claims[i].Candidate
	}
}

// commit moves every Active train to its candidate. A candidate off the grid
// or off the track removes the train; landing on a destination tile finishes it.
func (s *Simulation) commit(rep *Report) {
	for _, t := range s.trains.Active() {
		m := t.Motion
		if m.Holding() {
			continue
		}
		if !s.grid.IsTrack(m.Candidate.X, m.Candidate.Y) {
			t.Life.Finish(s.tick, components.OutcomeDerailed)
			rep.Derailed = append(rep.Derailed, Removal{Train: t.ID, Pos: m.Candidate})
			continue
		}
		m.Prev = m.Pos
		m.Pos = m.Candidate
		m.Heading = m.Next
		rep.Moved++
		if s.grid.IsDestination(m.Pos.X, m.Pos.Y) {
			t.Life.Finish(s.tick, components.OutcomeArrived)
			rep.Arrived = append(rep.Arrived, Removal{Train: t.ID, Pos: m.Pos})
		}
	}
}

// checkArrivals finishes any Active train standing on its own destination.
func (s *Simulation) checkArrivals(rep *Report) {
	for _, t := range s.trains.Active() {
		if t.Motion.Pos != t.Route.Destination {
			continue
		}
		if t.Life.Finish(s.tick, components.OutcomeArrived) {
			rep.Arrived = append(rep.Arrived, Removal{Train: t.ID, Pos: t.Motion.Pos})
		}
	}
}

// scheduledAfter reports whether a Pending train becomes due after tick.
func (s *Simulation) scheduledAfter(tick int) bool {
	found := false
	s.trains.Each(func(t systems.Train) {
		if t.Life.State == components.StatePending && t.Sched.SpawnTick > tick {
			found = true
		}
	})
	return found
}

func (s *Simulation) logTick(rep Report) {
	for _, c := range rep.Conflicts {
		s.log.Debug("conflict",
			"tick", rep.Tick,
			"kind", c.Kind.String(),
			"winner", c.Winner,
			"loser", c.Loser,
			"cell", c.Cell.String(),
		)
	}
	for _, r := range rep.Derailed {
		s.log.Info("train derailed", "tick", rep.Tick, "train", r.Train, "cell", r.Pos.String())
	}
	for _, letter := range rep.Flipped {
		sw, err := s.switches.Get(letter)
		if err != nil {
			continue
		}
		s.log.Debug("switch flipped", "tick", rep.Tick, "switch", string(letter), "state", sw.State.String())
	}
	s.log.Debug("tick", "report", rep)
}
