package sim

import (
	"log/slog"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

// Removal records a train leaving play during commit or the arrival check.
type Removal struct {
	Train int
	Pos   grid.Point // where the train was removed; off-grid for derailments
}

// Report is everything that happened during one tick.
type Report struct {
	Tick      int
	Spawned   []int // trains placed on the grid
	Waiting   []int // due trains blocked at an occupied spawn tile
	Conflicts []systems.Conflict
	Held      []int // movers held by the occupancy guard
	Moved     int   // trains that changed cell
	Decrement int   // switch counters decremented
	Queued    []byte
	Flipped   []byte
	Arrived   []Removal
	Derailed  []Removal
}

// Changed reports whether the tick altered any state a later tick depends on.
// Waiting trains only bump a statistic.
func (r *Report) Changed() bool {
	return len(r.Spawned) > 0 ||
		r.Moved > 0 ||
		r.Decrement > 0 ||
		len(r.Flipped) > 0 ||
		len(r.Arrived) > 0 ||
		len(r.Derailed) > 0
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("tick", r.Tick),
		slog.Int("moved", r.Moved),
	}
	if len(r.Spawned) > 0 {
		attrs = append(attrs, slog.Any("spawned", r.Spawned))
	}
	if len(r.Waiting) > 0 {
		attrs = append(attrs, slog.Any("waiting", r.Waiting))
	}
	if len(r.Conflicts) > 0 {
		attrs = append(attrs, slog.Int("conflicts", len(r.Conflicts)))
	}
	if len(r.Held) > 0 {
		attrs = append(attrs, slog.Any("held", r.Held))
	}
	if len(r.Flipped) > 0 {
		attrs = append(attrs, slog.String("flipped", string(r.Flipped)))
	}
	if len(r.Arrived) > 0 {
		attrs = append(attrs, slog.Int("arrived", len(r.Arrived)))
	}
	if len(r.Derailed) > 0 {
		attrs = append(attrs, slog.Int("derailed", len(r.Derailed)))
	}
	return slog.GroupValue(attrs...)
}
