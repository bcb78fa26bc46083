package sim

import (
	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

// TrainView is a read-only copy of one train.
type TrainView struct {
	ID          int
	Color       int
	State       components.State
	Outcome     components.Outcome
	Pos         grid.Point
	Heading     grid.Direction
	Candidate   grid.Point
	Destination grid.Point
	Spawn       grid.Point
	SpawnTick   int
	SpawnedTick int
	FinishTick  int
	WaitTicks   int
}

// SwitchView is a read-only copy of one switch.
type SwitchView struct {
	Letter      byte
	Pos         grid.Point
	State       systems.SwitchState
	K           [grid.NumDirections]int
	Counter     [grid.NumDirections]int
	FlipPending bool
}

// Snapshot is the externally visible state between ticks.
type Snapshot struct {
	Tick     int
	Trains   []TrainView // by id
	Switches []SwitchView
	Counts   systems.Counts
	Complete bool
}

// Snapshot copies the current state for renderers and loggers.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     s.tick,
		Trains:   make([]TrainView, 0, s.trains.Len()),
		Switches: make([]SwitchView, 0, s.switches.Len()),
		Counts:   s.trains.Counts(),
	}
	s.trains.Each(func(t systems.Train) {
		snap.Trains = append(snap.Trains, TrainView{
			ID:          t.ID,
			Color:       t.Ident.Color,
			State:       t.Life.State,
			Outcome:     t.Life.Outcome,
			Pos:         t.Motion.Pos,
			Heading:     t.Motion.Heading,
			Candidate:   t.Motion.Candidate,
			Destination: t.Route.Destination,
			Spawn:       t.Sched.Spawn,
			SpawnTick:   t.Sched.SpawnTick,
			SpawnedTick: t.Life.SpawnedTick,
			FinishTick:  t.Life.FinishTick,
			WaitTicks:   t.Life.WaitTicks,
		})
	})
	for _, sw := range s.switches.All() {
		snap.Switches = append(snap.Switches, SwitchView{
			Letter:      sw.Letter,
			Pos:         sw.Pos,
			State:       sw.State,
			K:           sw.K,
			Counter:     sw.Counter,
			FlipPending: sw.FlipPending,
		})
	}
	snap.Complete = snap.Counts.Active == 0 && snap.Counts.Pending == 0
	return snap
}
