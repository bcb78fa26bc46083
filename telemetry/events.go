// Package telemetry records per-tick traces, run statistics and timing.
package telemetry

import (
	"strconv"

	"github.com/pthm-cable/rails/sim"
)

// EventType identifies telemetry events.
type EventType string

const (
	EventSpawn    EventType = "spawn"
	EventWait     EventType = "wait"
	EventQueue    EventType = "flip_queued"
	EventConflict EventType = "conflict"
	EventHold     EventType = "hold"
	EventDerail   EventType = "derail"
	EventFlip     EventType = "flip"
	EventArrive   EventType = "arrive"
)

// Event is one row of events.csv. Train is -1 and Switch empty when the
// event does not involve one.
type Event struct {
	Tick   int       `csv:"tick"`
	Type   EventType `csv:"type"`
	Train  int       `csv:"train"`
	Switch string    `csv:"switch"`
	X      int       `csv:"x"`
	Y      int       `csv:"y"`
	Detail string    `csv:"detail"`
}

// EventsFromReport flattens a tick report into event rows in phase order.
// snap must be taken right after the tick; it supplies positions.
func EventsFromReport(rep sim.Report, snap sim.Snapshot) []Event {
	var events []Event
	at := func(typ EventType, id int, detail string) {
		ev := Event{Tick: rep.Tick, Type: typ, Train: id, Detail: detail}
		if id >= 0 && id < len(snap.Trains) {
			ev.X, ev.Y = snap.Trains[id].Pos.X, snap.Trains[id].Pos.Y
		}
		events = append(events, ev)
	}
	sw := func(typ EventType, letter byte) {
		ev := Event{Tick: rep.Tick, Type: typ, Train: -1, Switch: string(letter)}
		for _, v := range snap.Switches {
			if v.Letter == letter {
				ev.X, ev.Y = v.Pos.X, v.Pos.Y
				ev.Detail = v.State.String()
				break
			}
		}
		events = append(events, ev)
	}

	for _, id := range rep.Spawned {
		at(EventSpawn, id, "")
	}
	for _, id := range rep.Waiting {
		at(EventWait, id, "")
	}
	for _, letter := range rep.Queued {
		sw(EventQueue, letter)
	}
	for _, c := range rep.Conflicts {
		events = append(events, Event{
			Tick:   rep.Tick,
			Type:   EventConflict,
			Train:  c.Winner,
			X:      c.Cell.X,
			Y:      c.Cell.Y,
			Detail: c.Kind.String() + " loser=" + strconv.Itoa(c.Loser),
		})
	}
	for _, id := range rep.Held {
		at(EventHold, id, "")
	}
	for _, r := range rep.Derailed {
		events = append(events, Event{Tick: rep.Tick, Type: EventDerail, Train: r.Train, X: r.Pos.X, Y: r.Pos.Y})
	}
	for _, letter := range rep.Flipped {
		sw(EventFlip, letter)
	}
	for _, r := range rep.Arrived {
		events = append(events, Event{Tick: rep.Tick, Type: EventArrive, Train: r.Train, X: r.Pos.X, Y: r.Pos.Y})
	}
	return events
}
