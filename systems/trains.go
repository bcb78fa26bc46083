package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rails/components"
	"github.com/pthm-cable/rails/grid"
)

// TrainSpec is the loader-facing description of a train.
type TrainSpec struct {
	SpawnTick   int
	Spawn       grid.Point
	Heading     grid.Direction
	Destination grid.Point
	Color       int
}

// Train is a mutable view of one train's components. Pointers stay valid
// until another train is added to the registry.
type Train struct {
	ID     int
	Ident  *components.Identity
	Sched  *components.Schedule
	Route  *components.Route
	Motion *components.Motion
	Life   *components.Lifecycle
}

// Counts is the number of trains in each lifecycle state.
type Counts struct {
	Pending  int
	Active   int
	Finished int
}

// TrainRegistry stores trains as ECS entities addressed by a stable id: the
// 0-based order in which they were added.
type TrainRegistry struct {
	world    *ecs.World
	mapper   *ecs.Map5[components.Identity, components.Schedule, components.Route, components.Motion, components.Lifecycle]
	lifeView *ecs.Filter1[components.Lifecycle]
	entities []ecs.Entity
}

// NewTrainRegistry creates a registry backed by w.
func NewTrainRegistry(w *ecs.World) *TrainRegistry {
	return &TrainRegistry{
		world:    w,
		mapper:   ecs.NewMap5[components.Identity, components.Schedule, components.Route, components.Motion, components.Lifecycle](w),
		lifeView: ecs.NewFilter1[components.Lifecycle](w),
	}
}

// Add registers a Pending train and returns its id.
func (r *TrainRegistry) Add(spec TrainSpec) int {
	id := len(r.entities)
	ident := components.Identity{ID: id, Color: spec.Color}
	sched := components.Schedule{SpawnTick: spec.SpawnTick, Spawn: spec.Spawn, Heading: spec.Heading}
	route := components.Route{Destination: spec.Destination}
	motion := components.Motion{Heading: spec.Heading, Next: spec.Heading}
	life := components.NewLifecycle()

	e := r.mapper.NewEntity(&ident, &sched, &route, &motion, &life)
	r.entities = append(r.entities, e)
	return id
}

// Len returns the number of registered trains.
func (r *TrainRegistry) Len() int {
	return len(r.entities)
}

// Get returns the view for train id. id must be in [0, Len()).
func (r *TrainRegistry) Get(id int) Train {
	ident, sched, route, motion, life := r.mapper.Get(r.entities[id])
	return Train{ID: id, Ident: ident, Sched: sched, Route: route, Motion: motion, Life: life}
}

// Each visits every train in id order.
func (r *TrainRegistry) Each(fn func(t Train)) {
	for id := range r.entities {
		fn(r.Get(id))
	}
}

// Active returns the Active trains in id order.
func (r *TrainRegistry) Active() []Train {
	var out []Train
	for id := range r.entities {
		t := r.Get(id)
		if t.Life.State == components.StateActive {
			out = append(out, t)
		}
	}
	return out
}

// Occupied reports whether an Active train stands on p.
func (r *TrainRegistry) Occupied(p grid.Point) bool {
	for id := range r.entities {
		t := r.Get(id)
		if t.Life.State == components.StateActive && t.Motion.Pos == p {
			return true
		}
	}
	return false
}

// Counts tallies lifecycle states.
func (r *TrainRegistry) Counts() Counts {
	var c Counts
	query := r.lifeView.Query()
	for query.Next() {
		switch query.Get().State {
		case components.StatePending:
			c.Pending++
		case components.StateActive:
			c.Active++
		case components.StateFinished:
			c.Finished++
		}
	}
	return c
}

// Reset returns every train to Pending.
func (r *TrainRegistry) Reset() {
	r.Each(func(t Train) {
		*t.Life = components.NewLifecycle()
		*t.Motion = components.Motion{Heading: t.Sched.Heading, Next: t.Sched.Heading}
	})
}
