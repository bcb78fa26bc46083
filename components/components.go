// Package components defines ECS components for trains.
package components

import "github.com/pthm-cable/rails/grid"

// State is a train's lifecycle state: Pending → Active → Finished.
// Finished is terminal.
type State uint8

const (
	StatePending  State = iota // Scheduled, not yet on the grid
	StateActive                // On the grid and moving
	StateFinished              // Arrived or removed from play
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// MarshalText lets CSV and YAML writers emit the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome records how a Finished train left play.
type Outcome uint8

const (
	OutcomeNone     Outcome = iota
	OutcomeArrived          // Reached a destination
	OutcomeDerailed         // Ran off the grid or onto a non-track tile
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArrived:
		return "arrived"
	case OutcomeDerailed:
		return "derailed"
	}
	return "none"
}

// MarshalText lets CSV and YAML writers emit the outcome name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Identity holds the stable train id and its cosmetic color index.
type Identity struct {
	ID    int
	Color int
}

// Schedule describes when and where a train enters the grid.
type Schedule struct {
	SpawnTick int
	Spawn     grid.Point
	Heading   grid.Direction
}

// Route holds the train's assigned destination.
type Route struct {
	Destination grid.Point
}

// Motion is the train's position and intended move for the current tick.
// Pos and Heading are only valid while the train is Active.
type Motion struct {
	Pos       grid.Point
	Prev      grid.Point     // position before the last committed move
	Heading   grid.Direction // direction the train entered Pos with
	Next      grid.Direction // routed direction for this tick
	Candidate grid.Point     // proposed next cell, rewritten by arbitration
}

// Holding reports whether the train is not moving this tick.
func (m *Motion) Holding() bool {
	return m.Candidate == m.Pos
}

// Lifecycle tracks the train's state machine.
type Lifecycle struct {
	State       State
	Outcome     Outcome
	SpawnedTick int // tick the train became Active, -1 while Pending
	FinishTick  int // tick the train became Finished, -1 otherwise
	WaitTicks   int // ticks spent blocked at an occupied spawn tile
}

// NewLifecycle returns the initial Pending lifecycle.
func NewLifecycle() Lifecycle {
	return Lifecycle{State: StatePending, SpawnedTick: -1, FinishTick: -1}
}

// Activate moves a Pending train onto the grid. Returns false for any other state.
func (l *Lifecycle) Activate(tick int) bool {
	if l.State != StatePending {
		return false
	}
	l.State = StateActive
	l.SpawnedTick = tick
	return true
}

// Finish moves an Active train to the terminal state. Returns false if the
// train was not Active, so repeated calls never double-transition.
func (l *Lifecycle) Finish(tick int, outcome Outcome) bool {
	if l.State != StateActive {
		return false
	}
	l.State = StateFinished
	l.Outcome = outcome
	l.FinishTick = tick
	return true
}
