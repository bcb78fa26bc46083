package systems

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pthm-cable/rails/grid"
)

// ErrUnknownSwitch is returned when no switch is registered at a position or
// letter. Routing treats it as "not a switch".
var ErrUnknownSwitch = errors.New("unknown switch")

// SwitchState is the binary position of a switch.
type SwitchState uint8

const (
	SwitchStraight  SwitchState = 0
	SwitchDiverging SwitchState = 1
)

func (s SwitchState) String() string {
	if s == SwitchDiverging {
		return "diverging"
	}
	return "straight"
}

// Flip returns the other state.
func (s SwitchState) Flip() SwitchState {
	return 1 - s
}

// SwitchSpec is the loader-facing description of a switch.
type SwitchSpec struct {
	Letter byte
	Pos    grid.Point
	State  SwitchState
	K      [grid.NumDirections]int // trigger count per routed direction
}

// Switch is the runtime record of one switch.
// Invariant: 0 <= Counter[d] <= K[d].
type Switch struct {
	Letter      byte
	Pos         grid.Point
	State       SwitchState
	K           [grid.NumDirections]int
	Counter     [grid.NumDirections]int
	FlipPending bool

	initial SwitchState
}

// Deflect maps an approach heading through a diverging switch.
func Deflect(d grid.Direction) grid.Direction {
	switch d {
	case grid.Right:
		return grid.Down
	case grid.Down:
		return grid.Right
	case grid.Left:
		return grid.Up
	case grid.Up:
		return grid.Left
	}
	return d
}

// Occupant is an Active train standing on some tile, as seen by the switch
// counters. Direction is the one the router chose for this tick.
type Occupant struct {
	Pos       grid.Point
	Direction grid.Direction
}

// SwitchBank owns every switch of a level and runs the counter / deferred
// flip state machine.
type SwitchBank struct {
	switches []*Switch // sorted by letter
	byLetter map[byte]*Switch
	byPos    map[grid.Point]*Switch
}

// NewSwitchBank builds the bank. Letters and positions must be unique.
func NewSwitchBank(specs []SwitchSpec) (*SwitchBank, error) {
	b := &SwitchBank{
		switches: make([]*Switch, 0, len(specs)),
		byLetter: make(map[byte]*Switch, len(specs)),
		byPos:    make(map[grid.Point]*Switch, len(specs)),
	}
	for _, spec := range specs {
		if spec.Letter < 'A' || spec.Letter > 'Z' {
			return nil, fmt.Errorf("switch letter %q outside A-Z", spec.Letter)
		}
		if _, dup := b.byLetter[spec.Letter]; dup {
			return nil, fmt.Errorf("switch %c defined twice", spec.Letter)
		}
		if other, dup := b.byPos[spec.Pos]; dup {
			return nil, fmt.Errorf("switches %c and %c share %v", other.Letter, spec.Letter, spec.Pos)
		}
		for d, k := range spec.K {
			if k < 0 {
				return nil, fmt.Errorf("switch %c: negative trigger count for %v", spec.Letter, grid.Direction(d))
			}
		}
		sw := &Switch{
			Letter:  spec.Letter,
			Pos:     spec.Pos,
			State:   spec.State,
			K:       spec.K,
			Counter: spec.K,
			initial: spec.State,
		}
		b.switches = append(b.switches, sw)
		b.byLetter[sw.Letter] = sw
		b.byPos[sw.Pos] = sw
	}
	sort.Slice(b.switches, func(i, j int) bool {
		return b.switches[i].Letter < b.switches[j].Letter
	})
	return b, nil
}

// Len returns the number of switches.
func (b *SwitchBank) Len() int {
	return len(b.switches)
}

// All returns the switches ordered by letter.
func (b *SwitchBank) All() []*Switch {
	return b.switches
}

// At returns the switch at p, or ErrUnknownSwitch.
func (b *SwitchBank) At(p grid.Point) (*Switch, error) {
	if sw, ok := b.byPos[p]; ok {
		return sw, nil
	}
	return nil, fmt.Errorf("switch at %v: %w", p, ErrUnknownSwitch)
}

// Get returns the switch with the given letter, or ErrUnknownSwitch.
func (b *SwitchBank) Get(letter byte) (*Switch, error) {
	if sw, ok := b.byLetter[letter]; ok {
		return sw, nil
	}
	return nil, fmt.Errorf("switch %q: %w", letter, ErrUnknownSwitch)
}

// UpdateCounters decrements Counter[dir] of every switch that has an occupant
// standing on it, where dir is the occupant's routed direction. Counters floor
// at 0. Returns the number of decrements.
func (b *SwitchBank) UpdateCounters(occupants []Occupant) int {
	n := 0
	for _, o := range occupants {
		sw, ok := b.byPos[o.Pos]
		if !ok || !o.Direction.Valid() {
			continue
		}
		if sw.Counter[o.Direction] > 0 {
			sw.Counter[o.Direction]--
			n++
		}
	}
	return n
}

// QueueFlips marks every switch with an exhausted counter for a deferred flip
// and reloads that counter. A zero trigger count is exhausted on every tick.
// Returns the letters newly queued.
func (b *SwitchBank) QueueFlips() []byte {
	var queued []byte
	for _, sw := range b.switches {
		for d := range sw.Counter {
			if sw.Counter[d] > 0 {
				continue
			}
			if !sw.FlipPending {
				queued = append(queued, sw.Letter)
			}
			sw.FlipPending = true
			sw.Counter[d] = sw.K[d]
		}
	}
	return queued
}

// ApplyDeferredFlips toggles every pending switch and clears the flag.
// Must run after movement has been committed for the tick.
func (b *SwitchBank) ApplyDeferredFlips() []byte {
	var flipped []byte
	for _, sw := range b.switches {
		if !sw.FlipPending {
			continue
		}
		sw.State = sw.State.Flip()
		sw.FlipPending = false
		flipped = append(flipped, sw.Letter)
	}
	return flipped
}

// Toggle flips a switch immediately. Only valid between ticks.
func (b *SwitchBank) Toggle(letter byte) bool {
	sw, ok := b.byLetter[letter]
	if !ok {
		return false
	}
	sw.State = sw.State.Flip()
	return true
}

// Reset restores initial states and counters.
func (b *SwitchBank) Reset() {
	for _, sw := range b.switches {
		sw.State = sw.initial
		sw.Counter = sw.K
		sw.FlipPending = false
	}
}
